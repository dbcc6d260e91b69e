package purge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xxxsen/draftshare/internal/config"
)

// Purger invalidates externally cached copies of one URL.
type Purger interface {
	Name() string
	Purge(ctx context.Context, rawURL string) error
}

type Factory func(args interface{}) (Purger, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(cfg config.PurgeBackendConfig) (Purger, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("purge backend type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported purge backend: %s", cfg.Type)
	}
	return factory(cfg.Data)
}

func NewAll(cfgs []config.PurgeBackendConfig) ([]Purger, error) {
	out := make([]Purger, 0, len(cfgs))
	for i, cfg := range cfgs {
		p, err := New(cfg)
		if err != nil {
			return nil, fmt.Errorf("purge backend %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("purge backend config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode purge config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode purge config: %w", err)
	}
	return nil
}
