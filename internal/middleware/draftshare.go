package middleware

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/draftshare/internal/gate"
)

const ContextGrantKey = "draftshare_grant"

const (
	defaultCSP = "frame-ancestors 'none'"
	strictCSP  = "default-src 'self'; frame-ancestors 'none'; script-src 'none'; base-uri 'self'"

	invalidMessage = "Invalid or expired link."
	expiredMessage = "This link has expired."
	rejectHint     = "Ask the author for a new link."
)

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex, nofollow">
<title>{{.Message}}</title>
</head>
<body>
<main>
<h1>{{.Message}}</h1>
<p>{{.Hint}}</p>
</main>
</body>
</html>
`))

type Classifier interface {
	Classify(ctx context.Context, r *http.Request) gate.Decision
}

type ShaperConfig struct {
	ExpiredStatus int
	StrictCSP     bool
}

// Shaper turns gate decisions into HTTP responses. Every share response,
// granted or not, is marked uncacheable, unindexable and unframeable.
type Shaper struct {
	expiredStatus int
	csp           string
}

func NewShaper(cfg ShaperConfig) *Shaper {
	s := &Shaper{expiredStatus: cfg.ExpiredStatus, csp: defaultCSP}
	if s.expiredStatus != http.StatusNotFound {
		s.expiredStatus = http.StatusGone
	}
	if cfg.StrictCSP {
		s.csp = strictCSP
	}
	return s
}

func (s *Shaper) ApplyHeaders(h http.Header) {
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	h.Set("Surrogate-Control", "no-store")
	h.Set("X-Accel-Expires", "0")
	h.Set("X-Robots-Tag", "noindex, nofollow")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Content-Security-Policy", s.csp)
	h.Set("X-Content-Type-Options", "nosniff")
}

func (s *Shaper) Status(kind gate.Kind) int {
	if kind == gate.Expired {
		return s.expiredStatus
	}
	return http.StatusNotFound
}

func (s *Shaper) Reject(c *gin.Context, kind gate.Kind) {
	msg := invalidMessage
	if kind == gate.Expired {
		msg = expiredMessage
	}
	var buf bytes.Buffer
	if err := errorPage.Execute(&buf, struct{ Message, Hint string }{msg, rejectHint}); err != nil {
		logutil.GetLogger(c.Request.Context()).Error("render share error page failed", zap.Error(err))
		buf.Reset()
		buf.WriteString(msg)
	}
	s.ApplyHeaders(c.Writer.Header())
	c.Data(s.Status(kind), "text/html; charset=utf-8", buf.Bytes())
	c.Abort()
}

// DraftShare classifies every request before routing. Paths outside the
// share scheme pass through untouched.
func DraftShare(g Classifier, s *Shaper) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := g.Classify(c.Request.Context(), c.Request)
		switch d.Kind {
		case gate.NotApplicable:
			c.Next()
		case gate.Granted:
			s.ApplyHeaders(c.Writer.Header())
			c.Set(ContextGrantKey, d.Grant)
			c.Next()
		default:
			logutil.GetLogger(c.Request.Context()).Info("share link rejected",
				zap.String("kind", d.Kind.String()),
				zap.String("ip", c.ClientIP()),
			)
			s.Reject(c, d.Kind)
		}
	}
}

func GrantFromContext(c *gin.Context) (gate.Grant, bool) {
	v, ok := c.Get(ContextGrantKey)
	if !ok {
		return gate.Grant{}, false
	}
	grant, ok := v.(gate.Grant)
	return grant, ok
}
