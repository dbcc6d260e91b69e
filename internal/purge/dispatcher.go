package purge

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const defaultTimeout = 3 * time.Second

// Dispatcher fans a purge out to every backend. It never reports failure:
// each backend call is bounded by the timeout and errors are only logged.
type Dispatcher struct {
	mu       sync.RWMutex
	backends []Purger
	timeout  time.Duration
}

func NewDispatcher(timeout time.Duration, backends ...Purger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{backends: backends, timeout: timeout}
}

func (d *Dispatcher) Add(p Purger) {
	if d == nil || p == nil {
		return
	}
	d.mu.Lock()
	d.backends = append(d.backends, p)
	d.mu.Unlock()
}

func (d *Dispatcher) Purge(ctx context.Context, rawURL string) {
	if d == nil || rawURL == "" {
		return
	}
	d.mu.RLock()
	backends := append([]Purger(nil), d.backends...)
	d.mu.RUnlock()
	if len(backends) == 0 {
		return
	}
	// the purge outlives a cancelled request but keeps its log fields
	ctx = context.WithoutCancel(ctx)
	urls := Variants(rawURL)
	var wg sync.WaitGroup
	for _, backend := range backends {
		wg.Add(1)
		go func(p Purger) {
			defer wg.Done()
			d.purgeOne(ctx, p, urls)
		}(backend)
	}
	wg.Wait()
}

func (d *Dispatcher) purgeOne(ctx context.Context, p Purger, urls []string) {
	logger := logutil.GetLogger(ctx).With(zap.String("backend", p.Name()))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("purge backend panic", zap.Any("panic", r))
		}
	}()
	for _, u := range urls {
		callCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := p.Purge(callCtx, u)
		cancel()
		if err != nil {
			logger.Warn("purge url failed", zap.String("url", u), zap.Error(err))
			continue
		}
		logger.Debug("purge url", zap.String("url", u))
	}
}

// Variants returns the URL itself plus its query-less form, since some
// caches key on the bare path.
func Variants(rawURL string) []string {
	out := []string{rawURL}
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return out
	}
	u.RawQuery = ""
	u.Fragment = ""
	if bare := u.String(); bare != rawURL {
		out = append(out, bare)
	}
	return out
}
