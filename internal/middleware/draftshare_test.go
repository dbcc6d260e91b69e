package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/draftshare/internal/gate"
)

type fixedClassifier gate.Decision

func (f fixedClassifier) Classify(ctx context.Context, r *http.Request) gate.Decision {
	return gate.Decision(f)
}

func newShareEngine(d gate.Decision, cfg ShaperConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(DraftShare(fixedClassifier(d), NewShaper(cfg)))
	r.GET("/pds/*path", func(c *gin.Context) {
		grant, ok := GrantFromContext(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no grant")
			return
		}
		c.JSON(http.StatusOK, gin.H{"doc": grant.DocumentID})
	})
	r.GET("/hello", func(c *gin.Context) {
		c.String(http.StatusOK, "hi")
	})
	return r
}

func serve(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
	return w
}

func requireShareHeaders(t *testing.T, h http.Header) {
	t.Helper()
	require.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", h.Get("Cache-Control"))
	require.Equal(t, "no-cache", h.Get("Pragma"))
	require.Equal(t, "0", h.Get("Expires"))
	require.Equal(t, "noindex, nofollow", h.Get("X-Robots-Tag"))
	require.Equal(t, "DENY", h.Get("X-Frame-Options"))
	require.Equal(t, "no-referrer", h.Get("Referrer-Policy"))
	require.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
}

func TestDraftShareGranted(t *testing.T) {
	r := newShareEngine(gate.Decision{Kind: gate.Granted, Grant: gate.Grant{DocumentID: 42}}, ShaperConfig{})
	w := serve(r, "/pds/42/tok")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"doc":42}`, w.Body.String())
	requireShareHeaders(t, w.Header())
	require.Equal(t, "frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
}

func TestDraftShareInvalid(t *testing.T) {
	r := newShareEngine(gate.Decision{Kind: gate.Invalid}, ShaperConfig{})
	w := serve(r, "/pds/42/tok")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Invalid or expired link.")
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	requireShareHeaders(t, w.Header())
}

func TestDraftShareExpiredStatus(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ShaperConfig
		status int
	}{
		{name: "default", cfg: ShaperConfig{}, status: http.StatusGone},
		{name: "gone", cfg: ShaperConfig{ExpiredStatus: http.StatusGone}, status: http.StatusGone},
		{name: "not found", cfg: ShaperConfig{ExpiredStatus: http.StatusNotFound}, status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newShareEngine(gate.Decision{Kind: gate.Expired}, tt.cfg)
			w := serve(r, "/pds/42/tok")
			require.Equal(t, tt.status, w.Code)
			require.Contains(t, w.Body.String(), "This link has expired.")
			require.Contains(t, w.Body.String(), "Ask the author for a new link.")
			requireShareHeaders(t, w.Header())
		})
	}
}

func TestDraftShareNotApplicable(t *testing.T) {
	r := newShareEngine(gate.Decision{Kind: gate.NotApplicable}, ShaperConfig{})
	w := serve(r, "/hello")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "hi", w.Body.String())
	require.Empty(t, w.Header().Get("Cache-Control"))
	require.Empty(t, w.Header().Get("X-Robots-Tag"))
}

func TestDraftShareStrictCSP(t *testing.T) {
	r := newShareEngine(gate.Decision{Kind: gate.Granted, Grant: gate.Grant{DocumentID: 1}}, ShaperConfig{StrictCSP: true})
	w := serve(r, "/pds/1/tok")
	require.Equal(t, "default-src 'self'; frame-ancestors 'none'; script-src 'none'; base-uri 'self'", w.Header().Get("Content-Security-Policy"))
}
