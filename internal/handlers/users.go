package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/services"
	"foodgram/internal/store"
	"foodgram/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users    *store.Users
	follows  *store.Follows
	recipes  *store.Recipes
	guard    *services.RelationGuard
	pageSize int
}

func NewUserHandler(users *store.Users, follows *store.Follows, recipes *store.Recipes, guard *services.RelationGuard, pageSize int) *UserHandler {
	return &UserHandler{users: users, follows: follows, recipes: recipes, guard: guard, pageSize: pageSize}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150,personname"`
	LastName  string `json:"last_name" binding:"required,max=150,personname"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
}

type setPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=128"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// Register POST /api/users/
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	user := models.User{
		Email:     strings.ToLower(req.Email),
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hash,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if store.IsUniqueViolation(err) {
			field := "username"
			if strings.Contains(constraintName(err), "email") {
				field = "email"
			}
			err = store.ValidationErrors{{Field: field, Message: "already taken"}}
		}
		respondError(c, err)
		return
	}
	resp := newUserResponse(&user)
	c.JSON(http.StatusCreated, gin.H{
		"id":         resp.ID,
		"email":      resp.Email,
		"username":   resp.Username,
		"first_name": resp.FirstName,
		"last_name":  resp.LastName,
	})
}

// List GET /api/users/
func (h *UserHandler) List(c *gin.Context) {
	page := pageFromQuery(c, h.pageSize)
	users, total, err := h.users.List(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	ptrs := make([]*models.User, len(users))
	for i := range users {
		ptrs[i] = &users[i]
	}
	if viewer := currentUser(c); viewer != nil {
		if err := h.users.MarkSubscribed(c.Request.Context(), viewer.ID, ptrs); err != nil {
			respondError(c, err)
			return
		}
	}
	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = newUserResponse(&users[i])
	}
	paginated(c, page, total, out)
}

// Me GET /api/users/me/
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, newUserResponse(currentUser(c)))
}

// Profile GET /api/users/:id/
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	user, err := h.users.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if viewer := currentUser(c); viewer != nil {
		if err := h.users.MarkSubscribed(c.Request.Context(), viewer.ID, []*models.User{user}); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// SetPassword POST /api/users/set_password/
func (h *UserHandler) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	user := currentUser(c)
	if !utils.CheckPasswordHash(req.CurrentPassword, user.Password) {
		respondError(c, store.ValidationErrors{{Field: "current_password", Message: "wrong password"}})
		return
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.users.SetPassword(c.Request.Context(), user.ID, hash); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions GET /api/users/subscriptions/?recipes_limit=
func (h *UserHandler) Subscriptions(c *gin.Context) {
	page := pageFromQuery(c, h.pageSize)
	authors, total, err := h.follows.Authors(c.Request.Context(), currentUser(c).ID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.withRecipes(c.Request.Context(), authors, queryInt(c, "recipes_limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	paginated(c, page, total, out)
}

// Subscribe POST /api/users/:id/subscribe/
func (h *UserHandler) Subscribe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.guard.Follow(ctx, currentUser(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	author, err := h.users.ByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	author.IsSubscribed = true
	out, err := h.withRecipes(ctx, []models.User{*author}, queryInt(c, "recipes_limit"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out[0])
}

// Unsubscribe DELETE /api/users/:id/subscribe/
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.guard.Unfollow(c.Request.Context(), currentUser(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) withRecipes(ctx context.Context, authors []models.User, limit int) ([]subscriptionResponse, error) {
	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	recipes, err := h.recipes.ByAuthors(ctx, ids, limit)
	if err != nil {
		return nil, err
	}
	counts, err := h.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]subscriptionResponse, len(authors))
	for i := range authors {
		short := make([]recipeShort, 0, len(recipes[authors[i].ID]))
		for j := range recipes[authors[i].ID] {
			short = append(short, newRecipeShort(&recipes[authors[i].ID][j]))
		}
		out[i] = subscriptionResponse{
			userResponse: newUserResponse(&authors[i]),
			Recipes:      short,
			RecipesCount: counts[authors[i].ID],
		}
	}
	return out, nil
}

func constraintName(err error) string {
	var ce *store.ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint
	}
	return ""
}
