package store

import (
	"context"
	"fmt"
	"time"

	"foodgram/internal/models"
	"foodgram/internal/utils"
	"foodgram/internal/validate"

	"gorm.io/gorm"
)

const tagsCacheKey = "tags:all"

// Tags is read-mostly reference data; the full list is cached.
type Tags struct {
	db    *gorm.DB
	cache *utils.GlobalCache
	ttl   time.Duration
}

func NewTags(db *gorm.DB, cache *utils.GlobalCache, ttl time.Duration) *Tags {
	return &Tags{db: db, cache: cache, ttl: ttl}
}

// List returns every tag by name. Callers get their own copy of the cached slice.
func (r *Tags) List(ctx context.Context) ([]models.Tag, error) {
	if cached, ok := r.cache.Get(tagsCacheKey).([]models.Tag); ok {
		return append([]models.Tag(nil), cached...), nil
	}
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, Translate(err)
	}
	r.cache.Set(tagsCacheKey, append([]models.Tag(nil), tags...), r.ttl)
	return tags, nil
}

func (r *Tags) ByID(ctx context.Context, id uint) (*models.Tag, error) {
	tags, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tags {
		if tags[i].ID == id {
			t := tags[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("tag %d: %w", id, ErrNotFound)
}

// Create inserts a tag and drops the cached list.
func (r *Tags) Create(ctx context.Context, t *models.Tag) error {
	if err := ValidateTag(t); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create tag: %w", Translate(err))
	}
	r.cache.Delete(tagsCacheKey)
	return nil
}

func ValidateTag(t *models.Tag) error {
	var errs ValidationErrors
	if t.Name == "" {
		errs = append(errs, &ValidationError{"name", "required"})
	}
	if msg := validate.HexColor(t.Color); msg != "" {
		errs = append(errs, &ValidationError{"color", msg})
	}
	if msg := validate.Slug(t.Slug); msg != "" {
		errs = append(errs, &ValidationError{"slug", msg})
	}
	return errs.Err()
}
