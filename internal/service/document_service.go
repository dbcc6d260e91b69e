package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/draftshare/internal/model"
	appErr "github.com/xxxsen/draftshare/internal/pkg/errors"
	"github.com/xxxsen/draftshare/internal/pkg/timeutil"
)

const defaultDocumentType = "post"

type DocumentStore interface {
	Create(ctx context.Context, doc *model.Document) error
	Update(ctx context.Context, doc *model.Document) error
	UpdateStatus(ctx context.Context, docID int64, status string, mtime int64) error
	GetByID(ctx context.Context, docID int64) (*model.Document, error)
}

type DocumentService struct {
	docs  DocumentStore
	hooks *LifecycleHooks
	now   timeutil.Clock
}

type DocumentCreateInput struct {
	Type    string
	Title   string
	Content string
}

type DocumentUpdateInput struct {
	Type    string
	Title   string
	Content string
	Kind    SaveKind
}

func NewDocumentService(docs DocumentStore, hooks *LifecycleHooks) *DocumentService {
	return &DocumentService{docs: docs, hooks: hooks, now: time.Now}
}

func (s *DocumentService) SetClock(now timeutil.Clock) {
	if now != nil {
		s.now = now
	}
}

func (s *DocumentService) Create(ctx context.Context, userID string, input DocumentCreateInput) (*model.Document, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", appErr.ErrInvalid)
	}
	docType := strings.TrimSpace(input.Type)
	if docType == "" {
		docType = defaultDocumentType
	}
	now := s.now().Unix()
	doc := &model.Document{
		UserID:  userID,
		Type:    docType,
		Status:  model.DocumentStatusDraft,
		Title:   input.Title,
		Content: input.Content,
		Ctime:   now,
		Mtime:   now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Update(ctx context.Context, userID string, docID int64, input DocumentUpdateInput) (*model.Document, error) {
	doc, err := s.CheckOwner(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	doc.Title = input.Title
	doc.Content = input.Content
	if t := strings.TrimSpace(input.Type); t != "" {
		doc.Type = t
	}
	doc.Mtime = s.now().Unix()
	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, err
	}
	if s.hooks != nil {
		s.hooks.OnDocumentSaved(ctx, doc, input.Kind)
	}
	return doc, nil
}

// SetStatus moves a document between statuses and fires the publish hook
// on the transition into publish.
func (s *DocumentService) SetStatus(ctx context.Context, userID string, docID int64, status string) (*model.Document, error) {
	if !model.ValidDocumentStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", appErr.ErrInvalid, status)
	}
	doc, err := s.CheckOwner(ctx, userID, docID)
	if err != nil {
		return nil, err
	}
	previous := doc.Status
	doc.Status = status
	doc.Mtime = s.now().Unix()
	if err := s.docs.UpdateStatus(ctx, docID, status, doc.Mtime); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("document status changed",
		zap.Int64("document_id", docID),
		zap.String("from", previous),
		zap.String("to", status),
	)
	if s.hooks != nil {
		s.hooks.OnDocumentPublished(ctx, doc, previous)
		s.hooks.OnDocumentSaved(ctx, doc, SaveNormal)
	}
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, userID string, docID int64) (*model.Document, error) {
	return s.CheckOwner(ctx, userID, docID)
}

func (s *DocumentService) GetByID(ctx context.Context, docID int64) (*model.Document, error) {
	return s.docs.GetByID(ctx, docID)
}

func (s *DocumentService) CheckOwner(ctx context.Context, userID string, docID int64) (*model.Document, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, appErr.ErrForbidden
	}
	return doc, nil
}

// GetForViewer returns the document when it is published, owned by the
// viewer, or its id equals preAuthorized. Anything else reads as not found.
// preAuthorized comes from a share grant and is valid for one request.
func (s *DocumentService) GetForViewer(ctx context.Context, viewerID string, docID int64, preAuthorized int64) (*model.Document, error) {
	doc, err := s.docs.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	switch {
	case doc.Published():
	case viewerID != "" && doc.UserID == viewerID:
	case preAuthorized > 0 && preAuthorized == docID:
	default:
		return nil, appErr.ErrNotFound
	}
	return doc, nil
}
