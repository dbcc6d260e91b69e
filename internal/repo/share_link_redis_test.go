package repo

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/draftshare/internal/config"
	"github.com/xxxsen/draftshare/internal/model"
	appErr "github.com/xxxsen/draftshare/internal/pkg/errors"
	"github.com/xxxsen/draftshare/internal/pkg/token"
)

func TestRedisShareLinkStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis test")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	prefix, err := token.Generate(8)
	require.NoError(t, err)
	s := NewRedisShareLinkStore(client, "test:"+prefix+":")
	defer s.Close()

	_, err = s.Get(ctx, 42)
	require.True(t, appErr.IsNotFound(err))

	require.NoError(t, s.Put(ctx, &model.ShareLink{DocumentID: 42, Token: "a", ExpiresAt: 1}))
	require.NoError(t, s.Put(ctx, &model.ShareLink{DocumentID: 42, Token: "b"}))
	link, err := s.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "b", link.Token)
	require.Equal(t, int64(0), link.ExpiresAt)

	require.NoError(t, s.Put(ctx, &model.ShareLink{DocumentID: 43, Token: "c"}))
	n, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.NoError(t, s.Delete(ctx, 42))
}
