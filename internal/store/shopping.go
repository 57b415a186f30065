package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// AmountRow is one Amount of one recipe in a user's shopping cart.
type AmountRow struct {
	RecipeID uint
	Name     string
	Unit     string
	Quantity int
}

type Cart struct{ db *gorm.DB }

func NewCart(db *gorm.DB) *Cart {
	return &Cart{db: db}
}

// CartAmounts returns every Amount row of every recipe userID has in the cart.
func (r *Cart) CartAmounts(ctx context.Context, userID uint) ([]AmountRow, error) {
	rows := []AmountRow{}
	err := r.db.WithContext(ctx).
		Table("shopping_cart_entries").
		Select("amounts.recipe_id, ingredients.name, ingredients.measurement_unit AS unit, amounts.quantity").
		Joins("JOIN amounts ON amounts.recipe_id = shopping_cart_entries.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = amounts.ingredient_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("cart amounts of user %d: %w", userID, Translate(err))
	}
	return rows, nil
}
