package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xxxsen/draftshare/internal/config"
	"github.com/xxxsen/draftshare/internal/model"
)

// ShareLinkStore keeps at most one share link per document. It holds no
// validation logic; Get returns errors.ErrNotFound when the document has no
// link and Delete succeeds when there is nothing to delete.
type ShareLinkStore interface {
	Get(ctx context.Context, docID int64) (*model.ShareLink, error)
	Put(ctx context.Context, link *model.ShareLink) error
	Delete(ctx context.Context, docID int64) error
	DeleteAll(ctx context.Context) (int64, error)
}

var (
	_ ShareLinkStore = (*ShareLinkRepo)(nil)
	_ ShareLinkStore = (*RedisShareLinkStore)(nil)
	_ ShareLinkStore = (*MemoryShareLinkStore)(nil)
)

func NewShareLinkStore(ctx context.Context, cfg config.LinkStoreConfig, db *sql.DB) (ShareLinkStore, error) {
	switch cfg.Type {
	case "", config.LinkStorePostgres:
		return NewShareLinkRepo(db), nil
	case config.LinkStoreRedis:
		client, err := NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisShareLinkStore(client, cfg.Redis.Prefix), nil
	case config.LinkStoreMemory:
		return NewMemoryShareLinkStore(), nil
	default:
		return nil, fmt.Errorf("unsupported link store type: %s", cfg.Type)
	}
}
