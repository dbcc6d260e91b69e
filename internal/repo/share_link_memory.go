package repo

import (
	"context"
	"sync"

	"github.com/xxxsen/draftshare/internal/model"
	appErr "github.com/xxxsen/draftshare/internal/pkg/errors"
)

// MemoryShareLinkStore is a process-local store for single-node setups and tests.
type MemoryShareLinkStore struct {
	mu    sync.RWMutex
	links map[int64]model.ShareLink
}

func NewMemoryShareLinkStore() *MemoryShareLinkStore {
	return &MemoryShareLinkStore{links: make(map[int64]model.ShareLink)}
}

func (s *MemoryShareLinkStore) Get(ctx context.Context, docID int64) (*model.ShareLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[docID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &link, nil
}

func (s *MemoryShareLinkStore) Put(ctx context.Context, link *model.ShareLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[link.DocumentID] = *link
	return nil
}

func (s *MemoryShareLinkStore) Delete(ctx context.Context, docID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links, docID)
	return nil
}

func (s *MemoryShareLinkStore) DeleteAll(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.links))
	s.links = make(map[int64]model.ShareLink)
	return n, nil
}
