package store

import (
	"context"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

type Follows struct{ db *gorm.DB }

func NewFollows(db *gorm.DB) *Follows {
	return &Follows{db: db}
}

// Authors returns one page of the authors followerID follows, most recent follow first.
func (r *Follows) Authors(ctx context.Context, followerID uint, page Page) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Count(&total).Error; err != nil {
		return nil, 0, Translate(err)
	}

	var follows []models.Follow
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("follower_id = ?", followerID).
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&follows).Error; err != nil {
		return nil, 0, Translate(err)
	}

	authors := make([]models.User, 0, len(follows))
	for _, f := range follows {
		a := f.Author
		a.IsSubscribed = true
		authors = append(authors, a)
	}
	return authors, total, nil
}
