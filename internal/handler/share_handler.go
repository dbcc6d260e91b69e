package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/draftshare/internal/pkg/errcode"
	"github.com/xxxsen/draftshare/internal/pkg/response"
	"github.com/xxxsen/draftshare/internal/service"
)

// ShareHandler exposes the owner-facing link operations. Ownership is
// checked before the link service is called.
type ShareHandler struct {
	documents *service.DocumentService
	shares    *service.ShareService
}

func NewShareHandler(documents *service.DocumentService, shares *service.ShareService) *ShareHandler {
	return &ShareHandler{documents: documents, shares: shares}
}

type issueShareRequest struct {
	ExpiryDays *int `json:"expiry_days"`
}

func (h *ShareHandler) Issue(c *gin.Context) {
	docID, ok := getDocumentID(c)
	if !ok {
		return
	}
	var req issueShareRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, errcode.ErrInvalid, "invalid request")
			return
		}
	}
	ttl := service.DefaultTTL
	if req.ExpiryDays != nil {
		ttl = service.ParseTTL(*req.ExpiryDays)
	}
	if _, err := h.documents.CheckOwner(c.Request.Context(), getUserID(c), docID); err != nil {
		handleError(c, err)
		return
	}
	result, err := h.shares.Issue(c.Request.Context(), docID, ttl)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *ShareHandler) Disable(c *gin.Context) {
	docID, ok := getDocumentID(c)
	if !ok {
		return
	}
	if _, err := h.documents.CheckOwner(c.Request.Context(), getUserID(c), docID); err != nil {
		handleError(c, err)
		return
	}
	if err := h.shares.Revoke(c.Request.Context(), docID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *ShareHandler) Get(c *gin.Context) {
	docID, ok := getDocumentID(c)
	if !ok {
		return
	}
	if _, err := h.documents.CheckOwner(c.Request.Context(), getUserID(c), docID); err != nil {
		handleError(c, err)
		return
	}
	status, err := h.shares.Status(c.Request.Context(), docID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, status)
}
