package store

import (
	"context"
	"fmt"

	"foodgram/internal/models"
	"foodgram/internal/validate"

	"gorm.io/gorm"
)

type Users struct{ db *gorm.DB }

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// ValidateUser checks the field rules of a user before it is written.
func ValidateUser(u *models.User) error {
	var errs ValidationErrors
	if u.Email == "" {
		errs = append(errs, &ValidationError{"email", "required"})
	}
	if msg := validate.Username(u.Username); msg != "" {
		errs = append(errs, &ValidationError{"username", msg})
	}
	if msg := validate.PersonName(u.FirstName); msg != "" {
		errs = append(errs, &ValidationError{"first_name", msg})
	}
	if msg := validate.PersonName(u.LastName); msg != "" {
		errs = append(errs, &ValidationError{"last_name", msg})
	}
	return errs.Err()
}

// Create inserts u. A taken email or username surfaces as ErrConstraintViolation.
func (r *Users) Create(ctx context.Context, u *models.User) error {
	if err := ValidateUser(u); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create user: %w", Translate(err))
	}
	return nil
}

func (r *Users) ByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, fmt.Errorf("user %d: %w", id, Translate(err))
	}
	return &u, nil
}

func (r *Users) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, fmt.Errorf("user %q: %w", email, Translate(err))
	}
	return &u, nil
}

// List returns a page of users ordered by username, and the total count.
func (r *Users) List(ctx context.Context, page Page) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, Translate(err)
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Order("username ASC").Limit(page.Limit).Offset(page.Offset()).Find(&users).Error; err != nil {
		return nil, 0, Translate(err)
	}
	return users, total, nil
}

func (r *Users) SetPassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the user; recipes, follows, favorites and cart entries go with it.
func (r *Users) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkSubscribed sets IsSubscribed on users followed by viewerID.
func (r *Users) MarkSubscribed(ctx context.Context, viewerID uint, users []*models.User) error {
	if viewerID == 0 || len(users) == 0 {
		return nil
	}
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	var followed []uint
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND author_id IN ?", viewerID, ids).
		Pluck("author_id", &followed).Error; err != nil {
		return Translate(err)
	}
	set := make(map[uint]bool, len(followed))
	for _, id := range followed {
		set[id] = true
	}
	for _, u := range users {
		u.IsSubscribed = set[u.ID]
	}
	return nil
}
