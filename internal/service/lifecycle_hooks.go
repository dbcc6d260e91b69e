package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/draftshare/internal/model"
)

type SaveKind int

const (
	SaveNormal SaveKind = iota
	SaveAutosave
	SaveRevision
)

func (k SaveKind) Auxiliary() bool {
	return k == SaveAutosave || k == SaveRevision
}

// PageEvicter drops locally rendered pages of a document.
type PageEvicter interface {
	EvictDocument(docID int64)
}

type HooksConfig struct {
	AutoRevokeOnPublish bool
	Pages               PageEvicter
}

// LifecycleHooks keeps share links consistent with document edits and
// publication. Hooks never fail the mutation that triggered them.
type LifecycleHooks struct {
	shares     *ShareService
	autoRevoke bool
	pages      PageEvicter
}

func NewLifecycleHooks(shares *ShareService, cfg HooksConfig) *LifecycleHooks {
	return &LifecycleHooks{shares: shares, autoRevoke: cfg.AutoRevokeOnPublish, pages: cfg.Pages}
}

// OnDocumentSaved drops the locally rendered page on every write, then
// purges the current share URL from external caches. External purges are
// skipped for autosaves, revisions and types that cannot be shared.
func (h *LifecycleHooks) OnDocumentSaved(ctx context.Context, doc *model.Document, kind SaveKind) {
	if doc == nil {
		return
	}
	if h.pages != nil {
		h.pages.EvictDocument(doc.ID)
	}
	if kind.Auxiliary() || !h.shares.Shareable(doc) {
		return
	}
	u, err := h.shares.CurrentURLFor(ctx, doc)
	if err != nil {
		logutil.GetLogger(ctx).Warn("resolve share url on save failed", zap.Int64("document_id", doc.ID), zap.Error(err))
		return
	}
	h.shares.PurgeURL(ctx, u)
}

// OnDocumentPublished revokes the share link when a document moves into
// the published state. Republishing an already published document is a no-op.
func (h *LifecycleHooks) OnDocumentPublished(ctx context.Context, doc *model.Document, previousStatus string) {
	if doc == nil || !h.autoRevoke || !doc.Published() || previousStatus == model.DocumentStatusPublish {
		return
	}
	has, err := h.shares.HasLink(ctx, doc.ID)
	if err != nil {
		logutil.GetLogger(ctx).Warn("check share link on publish failed", zap.Int64("document_id", doc.ID), zap.Error(err))
		return
	}
	if !has {
		return
	}
	if err := h.shares.Revoke(ctx, doc.ID); err != nil {
		logutil.GetLogger(ctx).Error("revoke share link on publish failed", zap.Int64("document_id", doc.ID), zap.Error(err))
		return
	}
	logutil.GetLogger(ctx).Info("share link revoked on publish", zap.Int64("document_id", doc.ID), zap.String("previous_status", previousStatus))
}
