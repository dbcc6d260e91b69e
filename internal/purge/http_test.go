package purge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/draftshare/internal/config"
)

func TestHTTPPurgerSendsPurgeWithOriginalHost(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotHost, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHost = r.Host
		gotHeader = r.Header.Get("X-Purge-Key")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p, err := New(config.PurgeBackendConfig{Type: "http", Data: map[string]interface{}{
		"endpoints": []string{srv.URL},
		"headers":   map[string]string{"X-Purge-Key": "secret"},
	}})
	require.NoError(t, err)
	require.Equal(t, "http", p.Name())

	require.NoError(t, p.Purge(context.Background(), "https://blog.example.com/pds/42/tok?v=7"))
	require.Equal(t, "PURGE", gotMethod)
	require.Equal(t, "/pds/42/tok", gotPath)
	require.Equal(t, "v=7", gotQuery)
	require.Equal(t, "blog.example.com", gotHost)
	require.Equal(t, "secret", gotHeader)
}

func TestHTTPPurgerStatusHandling(t *testing.T) {
	status := http.StatusNotFound
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	p, err := createHTTPPurger(map[string]interface{}{"endpoints": []string{srv.URL}, "method": "ban"})
	require.NoError(t, err)
	require.NoError(t, p.Purge(context.Background(), "https://x.test/pds/1/t"))

	status = http.StatusForbidden
	require.Error(t, p.Purge(context.Background(), "https://x.test/pds/1/t"))
}

func TestHTTPPurgerTriesEveryEndpoint(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()
	var hits atomic.Int32
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	p, err := createHTTPPurger(map[string]interface{}{"endpoints": []string{failing.URL, healthy.URL}})
	require.NoError(t, err)
	err = p.Purge(context.Background(), "https://x.test/pds/1/t")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status 502")
	require.Equal(t, int32(1), hits.Load())
}

func TestHTTPPurgerConfig(t *testing.T) {
	_, err := createHTTPPurger(map[string]interface{}{})
	require.Error(t, err)
	_, err = createHTTPPurger(map[string]interface{}{"endpoints": []string{"not a url"}})
	require.Error(t, err)
}
