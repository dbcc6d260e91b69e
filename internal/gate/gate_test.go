package gate

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/draftshare/internal/model"
	appErr "github.com/xxxsen/draftshare/internal/pkg/errors"
	"github.com/xxxsen/draftshare/internal/repo"
	"github.com/xxxsen/draftshare/internal/service"
)

type docTable map[int64]*model.Document

func (d docTable) GetByID(ctx context.Context, docID int64) (*model.Document, error) {
	doc, ok := d[docID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return doc, nil
}

type brokenStore struct {
	repo.ShareLinkStore
}

func (brokenStore) Get(ctx context.Context, docID int64) (*model.ShareLink, error) {
	return nil, appErr.ErrInternal
}

type env struct {
	now    time.Time
	docs   docTable
	links  *repo.MemoryShareLinkStore
	shares *service.ShareService
	gate   *Gate
}

func newEnv() *env {
	e := &env{
		now:   time.Unix(1700000000, 0),
		docs:  docTable{42: {ID: 42, UserID: "u1", Type: "post", Status: model.DocumentStatusDraft, Mtime: 1}},
		links: repo.NewMemoryShareLinkStore(),
	}
	clock := func() time.Time { return e.now }
	e.shares = service.NewShareService(e.docs, e.links, nil, "", service.WithClock(clock))
	e.gate = New(e.docs, e.links, clock)
	return e
}

func (e *env) classify(target string) Decision {
	return e.gate.Classify(context.Background(), httptest.NewRequest("GET", target, nil))
}

func TestClassifyNotApplicable(t *testing.T) {
	e := newEnv()
	for _, p := range []string{"/", "/api/v1/documents/42", "/pdsx/42/abc", "/pds", "/pds/", "/pds/42", "/pds/42/", "/pds/abc"} {
		require.Equal(t, NotApplicable, e.classify(p).Kind, p)
	}
}

func TestClassifyMalformed(t *testing.T) {
	e := newEnv()
	for _, p := range []string{"/pds/0/abc", "/pds/-1/abc", "/pds/x/abc", "/pds/42/ab.c", "/pds/42/abc/extra", "/pds/42/a%20b"} {
		require.Equal(t, Invalid, e.classify(p).Kind, p)
	}
}

func TestClassifyScenario(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	res, err := e.shares.Issue(ctx, 42, 7)
	require.NoError(t, err)

	d := e.classify("/pds/42/" + res.Token + "?v=1")
	require.Equal(t, Granted, d.Kind)
	require.Equal(t, int64(42), d.Grant.DocumentID)
	require.Equal(t, Granted, e.classify("/pds/42/"+res.Token+"/").Kind)
	require.Equal(t, Granted, e.classify("/pds/42/"+res.Token+"?v=garbage").Kind)

	e.now = e.now.Add(8 * 24 * time.Hour)
	require.Equal(t, Expired, e.classify("/pds/42/"+res.Token).Kind)

	require.NoError(t, e.shares.Revoke(ctx, 42))
	require.Equal(t, Invalid, e.classify("/pds/42/"+res.Token).Kind)
	u, err := e.shares.CurrentURL(ctx, 42)
	require.NoError(t, err)
	require.Empty(t, u)
}

func TestClassifyOneDayBoundary(t *testing.T) {
	e := newEnv()
	start := e.now
	res, err := e.shares.Issue(context.Background(), 42, 1)
	require.NoError(t, err)

	e.now = start.Add(23 * time.Hour)
	require.Equal(t, Granted, e.classify("/pds/42/"+res.Token).Kind)
	e.now = start.Add(25 * time.Hour)
	require.Equal(t, Expired, e.classify("/pds/42/"+res.Token).Kind)
}

func TestClassifyRotationInvalidatesOldToken(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	first, err := e.shares.Issue(ctx, 42, 7)
	require.NoError(t, err)
	second, err := e.shares.Issue(ctx, 42, 7)
	require.NoError(t, err)

	require.Equal(t, Invalid, e.classify("/pds/42/"+first.Token).Kind)
	require.Equal(t, Granted, e.classify("/pds/42/"+second.Token).Kind)
}

func TestClassifyWrongTokenNeverExpired(t *testing.T) {
	e := newEnv()
	_, err := e.shares.Issue(context.Background(), 42, 1)
	require.NoError(t, err)
	e.now = e.now.Add(48 * time.Hour)
	require.Equal(t, Invalid, e.classify("/pds/42/wrongtoken").Kind)
}

func TestClassifyUnknownDocument(t *testing.T) {
	e := newEnv()
	require.NoError(t, e.links.Put(context.Background(), &model.ShareLink{DocumentID: 7, Token: "tok"}))
	require.Equal(t, Invalid, e.classify("/pds/7/tok").Kind)
}

func TestClassifyStoreFailure(t *testing.T) {
	e := newEnv()
	g := New(e.docs, brokenStore{}, nil)
	d := g.Classify(context.Background(), httptest.NewRequest("GET", "/pds/42/tok", nil))
	require.Equal(t, Invalid, d.Kind)
	require.True(t, d.Rejected())
}

func TestClassifyNeverExpires(t *testing.T) {
	e := newEnv()
	res, err := e.shares.Issue(context.Background(), 42, 0)
	require.NoError(t, err)
	e.now = e.now.Add(50 * 365 * 24 * time.Hour)
	require.Equal(t, Granted, e.classify("/pds/42/"+res.Token).Kind)
}
