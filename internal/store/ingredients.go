package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodgram/internal/models"
	"foodgram/internal/utils"

	"gorm.io/gorm"
)

type Ingredients struct {
	db    *gorm.DB
	cache *utils.GlobalCache
	ttl   time.Duration
}

func NewIngredients(db *gorm.DB, cache *utils.GlobalCache, ttl time.Duration) *Ingredients {
	return &Ingredients{db: db, cache: cache, ttl: ttl}
}

// Search returns ingredients whose name starts with prefix (case-insensitive), by name.
func (r *Ingredients) Search(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	cacheKey := "ingredients:search:" + prefix
	if cached, ok := r.cache.Get(cacheKey).([]models.Ingredient); ok {
		return append([]models.Ingredient{}, cached...), nil
	}

	q := r.db.WithContext(ctx).Order("name ASC, measurement_unit ASC")
	if prefix != "" {
		q = q.Where("LOWER(name) LIKE ?", escapeLike(prefix)+"%")
	}
	ingredients := []models.Ingredient{}
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, Translate(err)
	}
	r.cache.Set(cacheKey, append([]models.Ingredient{}, ingredients...), r.ttl)
	return ingredients, nil
}

func (r *Ingredients) ByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := r.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		return nil, fmt.Errorf("ingredient %d: %w", id, Translate(err))
	}
	return &ing, nil
}

func (r *Ingredients) Create(ctx context.Context, ing *models.Ingredient) error {
	if strings.TrimSpace(ing.Name) == "" || strings.TrimSpace(ing.MeasurementUnit) == "" {
		return ValidationErrors{{Field: "name", Message: "name and measurement_unit are required"}}
	}
	if err := r.db.WithContext(ctx).Create(ing).Error; err != nil {
		return fmt.Errorf("create ingredient: %w", Translate(err))
	}
	r.cache.DeletePrefix("ingredients:")
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
