package handlers

import (
	"net/http"

	"foodgram/internal/store"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tags *store.Tags
}

func NewTagHandler(tags *store.Tags) *TagHandler {
	return &TagHandler{tags: tags}
}

// List GET /api/tags/ (not paginated)
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// Detail GET /api/tags/:id/
func (h *TagHandler) Detail(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	tag, err := h.tags.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}
