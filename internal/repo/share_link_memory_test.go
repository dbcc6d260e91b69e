package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/draftshare/internal/model"
	appErr "github.com/xxxsen/draftshare/internal/pkg/errors"
)

func TestMemoryShareLinkStoreReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryShareLinkStore()

	_, err := s.Get(ctx, 1)
	require.True(t, appErr.IsNotFound(err))

	require.NoError(t, s.Put(ctx, &model.ShareLink{DocumentID: 1, Token: "a"}))
	require.NoError(t, s.Put(ctx, &model.ShareLink{DocumentID: 1, Token: "b", ExpiresAt: 9}))
	link, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "b", link.Token)
	require.Equal(t, int64(9), link.ExpiresAt)

	// mutating the returned copy must not leak into the store
	link.Token = "mutated"
	again, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "b", again.Token)

	require.NoError(t, s.Delete(ctx, 1))
	require.NoError(t, s.Delete(ctx, 1))
	_, err = s.Get(ctx, 1)
	require.True(t, appErr.IsNotFound(err))
}

func TestMemoryShareLinkStoreDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryShareLinkStore()
	require.NoError(t, s.Put(ctx, &model.ShareLink{DocumentID: 1, Token: "a"}))
	require.NoError(t, s.Put(ctx, &model.ShareLink{DocumentID: 2, Token: "b"}))
	n, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	_, err = s.Get(ctx, 2)
	require.True(t, appErr.IsNotFound(err))
}
