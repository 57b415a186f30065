package handlers

import (
	"net/http"

	"foodgram/internal/store"

	"github.com/gin-gonic/gin"
)

type IngredientHandler struct {
	ingredients *store.Ingredients
}

func NewIngredientHandler(ingredients *store.Ingredients) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients}
}

// List GET /api/ingredients/?name=<prefix>
func (h *IngredientHandler) List(c *gin.Context) {
	items, err := h.ingredients.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Detail GET /api/ingredients/:id/
func (h *IngredientHandler) Detail(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	item, err := h.ingredients.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
