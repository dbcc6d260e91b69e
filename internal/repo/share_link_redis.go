package repo

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xxxsen/draftshare/internal/config"
	"github.com/xxxsen/draftshare/internal/model"
	appErr "github.com/xxxsen/draftshare/internal/pkg/errors"
)

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// RedisShareLinkStore keeps one JSON record per document. Keys carry no TTL:
// an expired link must still be found so the gate can tell it apart.
type RedisShareLinkStore struct {
	client *redis.Client
	prefix string
}

func NewRedisShareLinkStore(client *redis.Client, prefix string) *RedisShareLinkStore {
	return &RedisShareLinkStore{client: client, prefix: prefix}
}

func (s *RedisShareLinkStore) key(docID int64) string {
	return s.prefix + "doc:" + strconv.FormatInt(docID, 10)
}

func (s *RedisShareLinkStore) Get(ctx context.Context, docID int64) (*model.ShareLink, error) {
	data, err := s.client.Get(ctx, s.key(docID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, appErr.ErrNotFound
		}
		return nil, err
	}
	var link model.ShareLink
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *RedisShareLinkStore) Put(ctx context.Context, link *model.ShareLink) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(link.DocumentID), data, 0).Err()
}

func (s *RedisShareLinkStore) Delete(ctx context.Context, docID int64) error {
	return s.client.Del(ctx, s.key(docID)).Err()
}

func (s *RedisShareLinkStore) DeleteAll(ctx context.Context) (int64, error) {
	var removed int64
	iter := s.client.Scan(ctx, 0, s.prefix+"doc:*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := s.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, iter.Err()
}

func (s *RedisShareLinkStore) Close() error {
	return s.client.Close()
}
