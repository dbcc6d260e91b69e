package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/draftshare/internal/gate"
	"github.com/xxxsen/draftshare/internal/middleware"
	"github.com/xxxsen/draftshare/internal/render"
)

// PageHandler serves share pages. It only runs after the gate granted the
// request; anything else under /pds/ is answered with the invalid page.
type PageHandler struct {
	renderer *render.Renderer
	shaper   *middleware.Shaper
}

func NewPageHandler(renderer *render.Renderer, shaper *middleware.Shaper) *PageHandler {
	return &PageHandler{renderer: renderer, shaper: shaper}
}

func (h *PageHandler) Serve(c *gin.Context) {
	grant, ok := middleware.GrantFromContext(c)
	if !ok {
		h.shaper.Reject(c, gate.Invalid)
		return
	}
	page, err := h.renderer.RenderShared(c.Request.Context(), grant)
	if err != nil {
		logutil.GetLogger(c.Request.Context()).Error("render shared document failed",
			zap.Int64("document_id", grant.DocumentID),
			zap.Error(err),
		)
		h.shaper.Reject(c, gate.Invalid)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
