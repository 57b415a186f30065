package services

import (
	"context"
	"errors"
	"fmt"

	"foodgram/internal/models"
	"foodgram/internal/store"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RelationKind string

const (
	KindFavorite     RelationKind = "favorite"
	KindShoppingCart RelationKind = "shopping_cart"
	KindFollow       RelationKind = "follow"
)

// relation describes one join table: who is the subject, what is the object.
type relation struct {
	kind       RelationKind
	row        func() interface{}
	subjectCol string
	objectCol  string
	target     func() interface{}
}

var relations = map[RelationKind]relation{
	KindFavorite: {
		kind:       KindFavorite,
		row:        func() interface{} { return &models.Favorite{} },
		subjectCol: "user_id",
		objectCol:  "recipe_id",
		target:     func() interface{} { return &models.Recipe{} },
	},
	KindShoppingCart: {
		kind:       KindShoppingCart,
		row:        func() interface{} { return &models.ShoppingCartEntry{} },
		subjectCol: "user_id",
		objectCol:  "recipe_id",
		target:     func() interface{} { return &models.Recipe{} },
	},
	KindFollow: {
		kind:       KindFollow,
		row:        func() interface{} { return &models.Follow{} },
		subjectCol: "follower_id",
		objectCol:  "author_id",
		target:     func() interface{} { return &models.User{} },
	},
}

// RelationGuard adds and removes Favorite, ShoppingCartEntry and Follow rows.
// A second add of the same pair is an error, not a no-op.
type RelationGuard struct {
	db *gorm.DB
}

func NewRelationGuard(db *gorm.DB) *RelationGuard {
	return &RelationGuard{db: db}
}

func (g *RelationGuard) AddFavorite(ctx context.Context, userID, recipeID uint) (*models.Favorite, error) {
	row := &models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := g.add(ctx, relations[KindFavorite], userID, recipeID, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (g *RelationGuard) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return g.remove(ctx, relations[KindFavorite], userID, recipeID)
}

func (g *RelationGuard) AddToCart(ctx context.Context, userID, recipeID uint) (*models.ShoppingCartEntry, error) {
	row := &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
	if err := g.add(ctx, relations[KindShoppingCart], userID, recipeID, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (g *RelationGuard) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return g.remove(ctx, relations[KindShoppingCart], userID, recipeID)
}

func (g *RelationGuard) Follow(ctx context.Context, followerID, authorID uint) (*models.Follow, error) {
	row := &models.Follow{FollowerID: followerID, AuthorID: authorID}
	if err := g.add(ctx, relations[KindFollow], followerID, authorID, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (g *RelationGuard) Unfollow(ctx context.Context, followerID, authorID uint) error {
	return g.remove(ctx, relations[KindFollow], followerID, authorID)
}

// add checks and inserts in one transaction. The subject's user row is locked
// FOR NO KEY UPDATE so concurrent adds by the same subject serialize; the lock
// does not block the KEY SHARE taken by foreign-key checks, so A following B
// while B follows A cannot deadlock. A unique violation that still slips
// through is reported as ErrAlreadyExists.
func (g *RelationGuard) add(ctx context.Context, rel relation, subject, object uint, row interface{}) error {
	if rel.kind == KindFollow && subject == object {
		return fmt.Errorf("%s %d -> %d: %w", rel.kind, subject, object, store.ErrSelfReference)
	}

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := g.lockSubject(tx, subject); err != nil {
			return err
		}
		if err := g.checkObject(tx, rel, object); err != nil {
			return err
		}

		var n int64
		if err := tx.Model(rel.row()).
			Where(rel.subjectCol+" = ? AND "+rel.objectCol+" = ?", subject, object).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return store.ErrAlreadyExists
		}
		return tx.Omit(clause.Associations).Create(row).Error
	})
	if err != nil {
		err = store.Translate(err)
		if store.IsUniqueViolation(err) {
			err = store.ErrAlreadyExists
		}
		return fmt.Errorf("add %s %d -> %d: %w", rel.kind, subject, object, err)
	}
	return nil
}

func (g *RelationGuard) remove(ctx context.Context, rel relation, subject, object uint) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := g.lockSubject(tx, subject); err != nil {
			return err
		}
		if err := g.checkObject(tx, rel, object); err != nil {
			return err
		}

		res := tx.Where(rel.subjectCol+" = ? AND "+rel.objectCol+" = ?", subject, object).Delete(rel.row())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove %s %d -> %d: %w", rel.kind, subject, object, store.Translate(err))
	}
	return nil
}

func (g *RelationGuard) lockSubject(tx *gorm.DB, subject uint) error {
	var u models.User
	err := tx.Clauses(clause.Locking{Strength: "NO KEY UPDATE"}).Select("id").First(&u, subject).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

func (g *RelationGuard) checkObject(tx *gorm.DB, rel relation, object uint) error {
	var n int64
	if err := tx.Model(rel.target()).Where("id = ?", object).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
