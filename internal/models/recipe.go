package models

import (
	"time"
)

type Recipe struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null;uniqueIndex:idx_recipe_name_author" json:"name"`
	AuthorID    uint      `gorm:"not null;index;uniqueIndex:idx_recipe_name_author" json:"-"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	Image       string    `json:"image"` // reference to externally stored image
	CookingTime int       `gorm:"not null;check:chk_recipe_cooking_time,cooking_time >= 1 AND cooking_time <= 1440" json:"cooking_time"`
	Tags        []Tag     `gorm:"many2many:recipe_tags;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tags"`
	Amounts     []Amount  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"-"`

	// Not stored; filled in for the current viewer.
	IsFavorited      bool `gorm:"-" json:"is_favorited"`
	IsInShoppingCart bool `gorm:"-" json:"is_in_shopping_cart"`
}

// Amount is the quantity of one ingredient required by one recipe.
type Amount struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	RecipeID     uint       `gorm:"not null;index;uniqueIndex:idx_amount_recipe_ingredient" json:"-"`
	IngredientID uint       `gorm:"not null;index;uniqueIndex:idx_amount_recipe_ingredient" json:"id"`
	Ingredient   Ingredient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Quantity     int        `gorm:"not null;check:chk_amount_quantity,quantity >= 1 AND quantity <= 10000" json:"amount"`
}
