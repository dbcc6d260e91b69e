package render

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xxxsen/draftshare/internal/model"
)

const PageCacheName = "pagecache"

// PageCache holds rendered share pages keyed by document id, so every token
// and ?v= variant of a document's link maps to one entry.
type PageCache struct {
	cache *expirable.LRU[int64, []byte]
}

func NewPageCache(size int, ttl time.Duration) *PageCache {
	if size <= 0 || ttl <= 0 {
		return nil
	}
	return &PageCache{cache: expirable.NewLRU[int64, []byte](size, nil, ttl)}
}

func (c *PageCache) Get(docID int64) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.Get(docID)
}

func (c *PageCache) Add(docID int64, page []byte) {
	if c == nil {
		return
	}
	c.cache.Add(docID, page)
}

// EvictDocument implements service.PageEvicter.
func (c *PageCache) EvictDocument(docID int64) {
	if c == nil {
		return
	}
	c.cache.Remove(docID)
}

func (c *PageCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

func (c *PageCache) Name() string {
	return PageCacheName
}

// Purge implements purge.Purger. The share prefix may sit below a base
// path, e.g. https://host/blog/pds/3/tok.
func (c *PageCache) Purge(ctx context.Context, rawURL string) error {
	if c == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if docID, ok := sharedDocumentID(u.Path); ok {
		c.cache.Remove(docID)
	}
	return nil
}

func sharedDocumentID(p string) (int64, bool) {
	idx := strings.LastIndex(p, model.SharePathPrefix)
	if idx < 0 {
		return 0, false
	}
	seg, _, _ := strings.Cut(p[idx+len(model.SharePathPrefix):], "/")
	docID, err := strconv.ParseInt(seg, 10, 64)
	if err != nil || docID <= 0 {
		return 0, false
	}
	return docID, true
}
