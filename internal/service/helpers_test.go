package service

import (
	"context"
	"sync"
	"time"

	"github.com/xxxsen/draftshare/internal/model"
	appErr "github.com/xxxsen/draftshare/internal/pkg/errors"
	"github.com/xxxsen/draftshare/internal/repo"
)

type memDocs struct {
	mu   sync.Mutex
	next int64
	docs map[int64]model.Document
}

func newMemDocs(docs ...model.Document) *memDocs {
	m := &memDocs{docs: make(map[int64]model.Document)}
	for _, d := range docs {
		m.docs[d.ID] = d
		if d.ID > m.next {
			m.next = d.ID
		}
	}
	return m
}

func (m *memDocs) Create(ctx context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	doc.ID = m.next
	m.docs[doc.ID] = *doc
	return nil
}

func (m *memDocs) Update(ctx context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[doc.ID]
	if !ok || cur.UserID != doc.UserID {
		return appErr.ErrNotFound
	}
	cur.Title, cur.Content, cur.Mtime = doc.Title, doc.Content, doc.Mtime
	if doc.Type != "" {
		cur.Type = doc.Type
	}
	m.docs[doc.ID] = cur
	return nil
}

func (m *memDocs) UpdateStatus(ctx context.Context, docID int64, status string, mtime int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[docID]
	if !ok {
		return appErr.ErrNotFound
	}
	cur.Status, cur.Mtime = status, mtime
	m.docs[docID] = cur
	return nil
}

func (m *memDocs) GetByID(ctx context.Context, docID int64) (*model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[docID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &cur, nil
}

type recordingPurger struct {
	mu   sync.Mutex
	urls []string
}

func (p *recordingPurger) Purge(ctx context.Context, rawURL string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.urls = append(p.urls, rawURL)
}

func (p *recordingPurger) Purged() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.urls...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	docs   *memDocs
	links  *repo.MemoryShareLinkStore
	purger *recordingPurger
	clock  *fakeClock
	pages  *recordingEvicter
	shares *ShareService
}

const testBaseURL = "https://blog.example.com"

func newFixture(docs ...model.Document) *fixture {
	f := &fixture{
		docs:   newMemDocs(docs...),
		links:  repo.NewMemoryShareLinkStore(),
		purger: &recordingPurger{},
		clock:  &fakeClock{now: time.Unix(1700000000, 0)},
		pages:  &recordingEvicter{},
	}
	f.shares = NewShareService(f.docs, f.links, f.purger, testBaseURL, WithClock(f.clock.Now))
	return f
}

func draft(id int64) model.Document {
	return model.Document{ID: id, UserID: "u1", Type: "post", Status: model.DocumentStatusDraft, Title: "t", Mtime: 1699990000}
}
