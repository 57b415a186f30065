package handlers

import (
	"foodgram/internal/models"
	"foodgram/internal/utils"
)

type userResponse struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: u.IsSubscribed,
	}
}

// recipeShort is the compact form used by favorites, the cart and subscriptions.
type recipeShort struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func newRecipeShort(r *models.Recipe) recipeShort {
	return recipeShort{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

type subscriptionResponse struct {
	userResponse
	Recipes      []recipeShort `json:"recipes"`
	RecipesCount int           `json:"recipes_count"`
}

type ingredientLine struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type recipeResponse struct {
	ID               uint             `json:"id"`
	Tags             []models.Tag     `json:"tags"`
	Author           userResponse     `json:"author"`
	Ingredients      []ingredientLine `json:"ingredients"`
	IsFavorited      bool             `json:"is_favorited"`
	IsInShoppingCart bool             `json:"is_in_shopping_cart"`
	Name             string           `json:"name"`
	Image            string           `json:"image"`
	Text             string           `json:"text"`
	TextHTML         string           `json:"text_html"`
	CookingTime      int              `json:"cooking_time"`
}

func newRecipeResponse(r *models.Recipe) recipeResponse {
	lines := make([]ingredientLine, 0, len(r.Amounts))
	for _, a := range r.Amounts {
		lines = append(lines, ingredientLine{
			ID:              a.IngredientID,
			Name:            a.Ingredient.Name,
			MeasurementUnit: a.Ingredient.MeasurementUnit,
			Amount:          a.Quantity,
		})
	}
	tags := r.Tags
	if tags == nil {
		tags = []models.Tag{}
	}
	return recipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           newUserResponse(&r.Author),
		Ingredients:      lines,
		IsFavorited:      r.IsFavorited,
		IsInShoppingCart: r.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		TextHTML:         utils.RenderMarkdown(r.Text),
		CookingTime:      r.CookingTime,
	}
}
