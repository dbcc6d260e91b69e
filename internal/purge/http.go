package purge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

type httpConfig struct {
	Endpoints []string          `json:"endpoints"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
}

// httpPurger sends a PURGE-style request per URL to reverse proxies such as
// varnish or nginx, keeping the original Host so the proxy finds its entry.
type httpPurger struct {
	endpoints []*url.URL
	method    string
	headers   map[string]string
	client    *http.Client
}

func init() {
	Register("http", createHTTPPurger)
}

func createHTTPPurger(args interface{}) (Purger, error) {
	cfg := &httpConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("http purge endpoints are required")
	}
	endpoints := make([]*url.URL, 0, len(cfg.Endpoints))
	for _, raw := range cfg.Endpoints {
		u, err := url.Parse(strings.TrimSuffix(raw, "/"))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid http purge endpoint: %s", raw)
		}
		endpoints = append(endpoints, u)
	}
	method := strings.ToUpper(strings.TrimSpace(cfg.Method))
	if method == "" {
		method = "PURGE"
	}
	return &httpPurger{endpoints: endpoints, method: method, headers: cfg.Headers, client: &http.Client{}}, nil
}

func (p *httpPurger) Name() string {
	return "http"
}

func (p *httpPurger) Purge(ctx context.Context, rawURL string) error {
	target, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	var errs []error
	for _, endpoint := range p.endpoints {
		if err := p.send(ctx, endpoint, target); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", endpoint.Host, err))
		}
	}
	return errors.Join(errs...)
}

func (p *httpPurger) send(ctx context.Context, endpoint, target *url.URL) error {
	u := *endpoint
	u.Path = endpoint.Path + target.Path
	u.RawPath = ""
	u.RawQuery = target.RawQuery
	req, err := http.NewRequestWithContext(ctx, p.method, u.String(), nil)
	if err != nil {
		return err
	}
	if target.Host != "" {
		req.Host = target.Host
	}
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// a miss is reported as 404 by most proxies; nothing was cached
	if resp.StatusCode/100 == 2 || resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
