package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/draftshare/internal/model"
	appErr "github.com/xxxsen/draftshare/internal/pkg/errors"
	"github.com/xxxsen/draftshare/internal/pkg/timeutil"
	"github.com/xxxsen/draftshare/internal/pkg/token"
	"github.com/xxxsen/draftshare/internal/repo"
)

// DefaultShareableTypes are the document types links can be issued for
// when no other set is configured.
var DefaultShareableTypes = []string{"post", "page"}

type DocumentGetter interface {
	GetByID(ctx context.Context, docID int64) (*model.Document, error)
}

type URLPurger interface {
	Purge(ctx context.Context, rawURL string)
}

// TTL is a share link lifetime in days; 0 means the link never expires.
type TTL int

const DefaultTTL TTL = 7

// TTLChoices is the fixed set an owner can pick from.
var TTLChoices = []TTL{1, 3, 7, 14, 30, 0}

// ParseTTL coerces anything outside TTLChoices to DefaultTTL.
func ParseTTL(days int) TTL {
	for _, choice := range TTLChoices {
		if int(choice) == days {
			return choice
		}
	}
	return DefaultTTL
}

func (t TTL) ExpiresAt(now time.Time) int64 {
	if t == 0 {
		return 0
	}
	return now.Add(time.Duration(t) * 24 * time.Hour).Unix()
}

type IssueResult struct {
	URL       string `json:"url"`
	Token     string `json:"-"`
	ExpiresAt *int64 `json:"expires_at"`
	ExpiresH  string `json:"expires_h"`
}

type ShareStatus struct {
	DocumentID int64  `json:"document_id"`
	Enabled    bool   `json:"enabled"`
	Published  bool   `json:"published"`
	URL        string `json:"url,omitempty"`
	ExpiresAt  *int64 `json:"expires_at"`
	ExpiresH   string `json:"expires_h,omitempty"`
}

type ShareService struct {
	docs     DocumentGetter
	links    repo.ShareLinkStore
	purger   URLPurger
	baseURL  string
	now      timeutil.Clock
	newToken func(int) (string, error)
	types    map[string]struct{}
}

type ShareOption func(*ShareService)

func WithClock(now timeutil.Clock) ShareOption {
	return func(s *ShareService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithTokenSource(fn func(int) (string, error)) ShareOption {
	return func(s *ShareService) {
		if fn != nil {
			s.newToken = fn
		}
	}
}

// WithShareableTypes restricts issuance to the given document types.
func WithShareableTypes(types []string) ShareOption {
	return func(s *ShareService) {
		if len(types) > 0 {
			s.types = typeSet(types)
		}
	}
}

func typeSet(types []string) map[string]struct{} {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

func NewShareService(docs DocumentGetter, links repo.ShareLinkStore, purger URLPurger, baseURL string, opts ...ShareOption) *ShareService {
	s := &ShareService{
		docs:     docs,
		links:    links,
		purger:   purger,
		baseURL:  baseURL,
		now:      time.Now,
		newToken: token.Generate,
		types:    typeSet(DefaultShareableTypes),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ShareService) Now() time.Time {
	return s.now()
}

// Shareable reports whether links may be issued for the document's type.
func (s *ShareService) Shareable(doc *model.Document) bool {
	if doc == nil {
		return false
	}
	_, ok := s.types[doc.Type]
	return ok
}

// Issue creates or rotates the document's link. The previous token stops
// matching once the store write lands; its URL is purged afterwards.
func (s *ShareService) Issue(ctx context.Context, docID int64, ttl TTL) (*IssueResult, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Published() {
		return nil, appErr.ErrPublished
	}
	if !s.Shareable(doc) {
		return nil, appErr.ErrUnsupportedType
	}
	old, err := s.getLink(ctx, docID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	oldURL := s.urlFor(doc, old, now)

	tok, err := s.newToken(token.DefaultLength)
	if err != nil {
		logutil.GetLogger(ctx).Error("generate share token failed", zap.Int64("document_id", docID), zap.Error(err))
		return nil, err
	}
	link := &model.ShareLink{
		DocumentID: docID,
		Token:      tok,
		ExpiresAt:  ParseTTL(int(ttl)).ExpiresAt(now),
		Ctime:      now.Unix(),
		Mtime:      now.Unix(),
	}
	if err := s.links.Put(ctx, link); err != nil {
		return nil, fmt.Errorf("store share link: %w", err)
	}
	logutil.GetLogger(ctx).Info("share link issued",
		zap.Int64("document_id", docID),
		zap.Int64("expires_at", link.ExpiresAt),
		zap.Bool("rotated", old != nil),
	)
	s.purge(ctx, oldURL)
	return &IssueResult{
		URL:       s.buildURL(doc, tok),
		Token:     tok,
		ExpiresAt: optionalUnix(link.ExpiresAt),
		ExpiresH:  timeutil.FormatUnix(link.ExpiresAt),
	}, nil
}

// CurrentURL returns "" when the document has no live link.
func (s *ShareService) CurrentURL(ctx context.Context, docID int64) (string, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return "", err
	}
	return s.CurrentURLFor(ctx, doc)
}

func (s *ShareService) CurrentURLFor(ctx context.Context, doc *model.Document) (string, error) {
	link, err := s.getLink(ctx, doc.ID)
	if err != nil {
		return "", err
	}
	return s.urlFor(doc, link, s.now()), nil
}

// Revoke removes the link unconditionally; revoking a document without a
// link is not an error.
func (s *ShareService) Revoke(ctx context.Context, docID int64) error {
	var oldURL string
	doc, err := s.docs.GetByID(ctx, docID)
	switch {
	case err == nil:
		link, err := s.getLink(ctx, docID)
		if err != nil {
			return err
		}
		oldURL = s.urlFor(doc, link, s.now())
	case appErr.IsNotFound(err):
	default:
		return err
	}
	if err := s.links.Delete(ctx, docID); err != nil {
		return fmt.Errorf("delete share link: %w", err)
	}
	logutil.GetLogger(ctx).Info("share link revoked", zap.Int64("document_id", docID))
	s.purge(ctx, oldURL)
	return nil
}

// RevokeAll drops every stored link. Used when the service is retired.
func (s *ShareService) RevokeAll(ctx context.Context) (int64, error) {
	n, err := s.links.DeleteAll(ctx)
	if err != nil {
		return n, fmt.Errorf("delete share links: %w", err)
	}
	logutil.GetLogger(ctx).Info("all share links revoked", zap.Int64("count", n))
	return n, nil
}

func (s *ShareService) Status(ctx context.Context, docID int64) (*ShareStatus, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	link, err := s.getLink(ctx, docID)
	if err != nil {
		return nil, err
	}
	status := &ShareStatus{DocumentID: docID, Published: doc.Published()}
	if u := s.urlFor(doc, link, s.now()); u != "" {
		status.Enabled = true
		status.URL = u
		status.ExpiresAt = optionalUnix(link.ExpiresAt)
		status.ExpiresH = timeutil.FormatUnix(link.ExpiresAt)
	}
	return status, nil
}

// HasLink reports whether a token is stored, live or not.
func (s *ShareService) HasLink(ctx context.Context, docID int64) (bool, error) {
	link, err := s.getLink(ctx, docID)
	if err != nil {
		return false, err
	}
	return link != nil && link.Token != "", nil
}

func (s *ShareService) PurgeURL(ctx context.Context, rawURL string) {
	s.purge(ctx, rawURL)
}

func (s *ShareService) getLink(ctx context.Context, docID int64) (*model.ShareLink, error) {
	link, err := s.links.Get(ctx, docID)
	if appErr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load share link: %w", err)
	}
	return link, nil
}

func (s *ShareService) urlFor(doc *model.Document, link *model.ShareLink, now time.Time) string {
	if !link.Live(now.Unix()) {
		return ""
	}
	return s.buildURL(doc, link.Token)
}

// buildURL appends the modification time as v=; it only busts caches and
// plays no part in validation.
func (s *ShareService) buildURL(doc *model.Document, tok string) string {
	u := s.baseURL + model.SharePath(doc.ID, tok)
	if doc.Mtime > 0 {
		u += "?" + url.Values{"v": []string{strconv.FormatInt(doc.Mtime, 10)}}.Encode()
	}
	return u
}

func (s *ShareService) purge(ctx context.Context, rawURL string) {
	if s.purger == nil || rawURL == "" {
		return
	}
	s.purger.Purge(ctx, rawURL)
}

func optionalUnix(ts int64) *int64 {
	if ts == 0 {
		return nil
	}
	return &ts
}
