package handlers

import (
	"context"
	"net/http"

	"foodgram/internal/services"
	"foodgram/internal/store"
	"foodgram/internal/utils"

	"github.com/gin-gonic/gin"
)

type RecipeHandler struct {
	recipes  *store.Recipes
	guard    *services.RelationGuard
	shopping *services.ShoppingService
	pageSize int
}

func NewRecipeHandler(recipes *store.Recipes, guard *services.RelationGuard, shopping *services.ShoppingService, pageSize int) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, guard: guard, shopping: shopping, pageSize: pageSize}
}

type ingredientAmountRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount" binding:"required,min=1,max=10000"`
}

type recipeRequest struct {
	Ingredients []ingredientAmountRequest `json:"ingredients" binding:"required,min=1,dive"`
	Tags        []uint                    `json:"tags" binding:"required,min=1"`
	Image       string                    `json:"image" binding:"max=2048"`
	Name        string                    `json:"name" binding:"required,max=200"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time" binding:"required,min=1,max=1440"`
}

func (r recipeRequest) input() store.RecipeInput {
	items := make([]store.IngredientAmount, len(r.Ingredients))
	for i, it := range r.Ingredients {
		items[i] = store.IngredientAmount{ID: it.ID, Amount: it.Amount}
	}
	return store.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		Ingredients: items,
		TagIDs:      r.Tags,
	}
}

// List GET /api/recipes/
// Query: author=<id>, tags=<slug> (repeatable, any match), is_favorited=1,
// is_in_shopping_cart=1, page, limit. The per-user filters are ignored for
// anonymous requests.
func (h *RecipeHandler) List(c *gin.Context) {
	page := pageFromQuery(c, h.pageSize)
	f := store.RecipeFilter{TagSlugs: c.QueryArray("tags")}
	if author, ok := utils.ParseID(c.Query("author")); ok {
		f.AuthorID = author
	}
	if viewer := currentUser(c); viewer != nil {
		f.ViewerID = viewer.ID
		f.IsFavorited = queryBool(c, "is_favorited")
		f.IsInShoppingCart = queryBool(c, "is_in_shopping_cart")
	}

	recipes, total, err := h.recipes.List(c.Request.Context(), f, page)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]recipeResponse, len(recipes))
	for i := range recipes {
		out[i] = newRecipeResponse(&recipes[i])
	}
	paginated(c, page, total, out)
}

// Detail GET /api/recipes/:id/
func (h *RecipeHandler) Detail(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var viewerID uint
	if viewer := currentUser(c); viewer != nil {
		viewerID = viewer.ID
	}
	recipe, err := h.recipes.ByID(c.Request.Context(), id, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(recipe))
}

// Create POST /api/recipes/
func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), currentUser(c).ID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeResponse(recipe))
}

// Update PATCH /api/recipes/:id/ with the full payload.
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req recipeRequest
	if !bindJSON(c, &req) {
		return
	}
	recipe, err := h.recipes.Update(c.Request.Context(), id, currentUser(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(recipe))
}

// Delete DELETE /api/recipes/:id/
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id, currentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFavorite POST /api/recipes/:id/favorite/
func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addRelation(c, func(ctx context.Context, userID, recipeID uint) error {
		_, err := h.guard.AddFavorite(ctx, userID, recipeID)
		return err
	})
}

// RemoveFavorite DELETE /api/recipes/:id/favorite/
func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeRelation(c, h.guard.RemoveFavorite)
}

// AddToCart POST /api/recipes/:id/shopping_cart/
func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.addRelation(c, func(ctx context.Context, userID, recipeID uint) error {
		_, err := h.guard.AddToCart(ctx, userID, recipeID)
		return err
	})
}

// RemoveFromCart DELETE /api/recipes/:id/shopping_cart/
func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.guard.RemoveFromCart)
}

func (h *RecipeHandler) addRelation(c *gin.Context, add func(ctx context.Context, userID, recipeID uint) error) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user := currentUser(c)
	if err := add(ctx, user.ID, id); err != nil {
		respondError(c, err)
		return
	}
	recipe, err := h.recipes.ByID(ctx, id, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newRecipeShort(recipe))
}

func (h *RecipeHandler) removeRelation(c *gin.Context, remove func(ctx context.Context, userID, recipeID uint) error) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), currentUser(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart GET /api/recipes/download_shopping_cart/[?format=html]
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	user := currentUser(c)
	items, err := h.shopping.ComputeShoppingList(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if c.Query("format") == "html" {
		c.HTML(http.StatusOK, ShoppingCartTemplate, gin.H{"User": user, "Items": items})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="shopping_cart.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(services.FormatShoppingList(items)))
}

func queryBool(c *gin.Context, key string) bool {
	switch c.Query(key) {
	case "1", "true", "True":
		return true
	}
	return false
}
