package gate

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/draftshare/internal/model"
	appErr "github.com/xxxsen/draftshare/internal/pkg/errors"
	"github.com/xxxsen/draftshare/internal/pkg/timeutil"
	"github.com/xxxsen/draftshare/internal/pkg/token"
	"github.com/xxxsen/draftshare/internal/repo"
)

type Kind int

const (
	NotApplicable Kind = iota
	Granted
	Invalid
	Expired
)

func (k Kind) String() string {
	switch k {
	case NotApplicable:
		return "not_applicable"
	case Granted:
		return "granted"
	case Invalid:
		return "invalid"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// Grant authorizes reading one document for the lifetime of one request.
type Grant struct {
	DocumentID int64
}

type Decision struct {
	Kind  Kind
	Grant Grant
}

func (d Decision) Rejected() bool {
	return d.Kind == Invalid || d.Kind == Expired
}

type DocumentGetter interface {
	GetByID(ctx context.Context, docID int64) (*model.Document, error)
}

type Gate struct {
	docs  DocumentGetter
	links repo.ShareLinkStore
	now   timeutil.Clock
}

func New(docs DocumentGetter, links repo.ShareLinkStore, now timeutil.Clock) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{docs: docs, links: links, now: now}
}

// Classify inspects the request path only; the query string never
// influences the decision.
func (g *Gate) Classify(ctx context.Context, r *http.Request) Decision {
	return g.ClassifyPath(ctx, r.URL.Path)
}

func (g *Gate) ClassifyPath(ctx context.Context, p string) Decision {
	docID, tok, kind := parsePath(p)
	if kind != Granted {
		return Decision{Kind: kind}
	}
	return g.validate(ctx, docID, tok)
}

// parsePath returns Granted when the path is structurally a share URL and
// still needs validation.
func parsePath(p string) (int64, string, Kind) {
	if !strings.HasPrefix(p, model.SharePathPrefix) {
		return 0, "", NotApplicable
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(p, model.SharePathPrefix), "/")
	segs := strings.Split(rest, "/")
	if len(segs) < 2 {
		return 0, "", NotApplicable
	}
	if len(segs) > 2 {
		return 0, "", Invalid
	}
	docID, err := strconv.ParseInt(segs[0], 10, 64)
	if err != nil || docID <= 0 {
		return 0, "", Invalid
	}
	if !token.Valid(segs[1]) {
		return 0, "", Invalid
	}
	return docID, segs[1], Granted
}

func (g *Gate) validate(ctx context.Context, docID int64, tok string) Decision {
	logger := logutil.GetLogger(ctx).With(zap.Int64("document_id", docID))
	if _, err := g.docs.GetByID(ctx, docID); err != nil {
		if !appErr.IsNotFound(err) {
			logger.Error("load document for share link failed", zap.Error(err))
		}
		return Decision{Kind: Invalid}
	}
	link, err := g.links.Get(ctx, docID)
	if err != nil {
		if !appErr.IsNotFound(err) {
			logger.Error("load share link failed", zap.Error(err))
		}
		return Decision{Kind: Invalid}
	}
	if link.Token == "" || subtle.ConstantTimeCompare([]byte(link.Token), []byte(tok)) != 1 {
		return Decision{Kind: Invalid}
	}
	if link.Expired(g.now().Unix()) {
		return Decision{Kind: Expired}
	}
	return Decision{Kind: Granted, Grant: Grant{DocumentID: docID}}
}
