package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/draftshare/internal/model"
	"github.com/xxxsen/draftshare/internal/pkg/errcode"
	"github.com/xxxsen/draftshare/internal/pkg/response"
	"github.com/xxxsen/draftshare/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
}

func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

type documentRequest struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
	// Autosave marks intermediate saves; they skip external share cache purges.
	Autosave bool `json:"autosave"`
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Title == "" {
		response.Error(c, errcode.ErrInvalid, "title required")
		return
	}
	doc, err := h.documents.Create(c.Request.Context(), getUserID(c), service.DocumentCreateInput{
		Type:    req.Type,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	docID, ok := getDocumentID(c)
	if !ok {
		return
	}
	doc, err := h.documents.Get(c.Request.Context(), getUserID(c), docID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	docID, ok := getDocumentID(c)
	if !ok {
		return
	}
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	kind := service.SaveNormal
	if req.Autosave {
		kind = service.SaveAutosave
	}
	doc, err := h.documents.Update(c.Request.Context(), getUserID(c), docID, service.DocumentUpdateInput{
		Type:    req.Type,
		Title:   req.Title,
		Content: req.Content,
		Kind:    kind,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}

func (h *DocumentHandler) Publish(c *gin.Context) {
	h.setStatus(c, model.DocumentStatusPublish)
}

func (h *DocumentHandler) Unpublish(c *gin.Context) {
	h.setStatus(c, model.DocumentStatusDraft)
}

func (h *DocumentHandler) setStatus(c *gin.Context, status string) {
	docID, ok := getDocumentID(c)
	if !ok {
		return
	}
	doc, err := h.documents.SetStatus(c.Request.Context(), getUserID(c), docID, status)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}
