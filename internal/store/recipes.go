package store

import (
	"context"
	"fmt"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/validate"

	"gorm.io/gorm"
)

// IngredientAmount is one line of a recipe's ingredient list as submitted.
type IngredientAmount struct {
	ID     uint
	Amount int
}

// RecipeInput is everything needed to create or fully update a recipe.
type RecipeInput struct {
	Name        string
	Text        string
	Image       string
	CookingTime int
	Ingredients []IngredientAmount
	TagIDs      []uint
}

// RecipeFilter narrows List. Zero values mean "no filter".
type RecipeFilter struct {
	AuthorID         uint
	TagSlugs         []string
	ViewerID         uint
	IsFavorited      bool
	IsInShoppingCart bool
}

type Recipes struct{ db *gorm.DB }

func NewRecipes(db *gorm.DB) *Recipes {
	return &Recipes{db: db}
}

// ValidateRecipe checks field ranges and that ingredient and tag lists are
// non-empty and free of duplicates.
func ValidateRecipe(in RecipeInput) error {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, &ValidationError{"name", "required"})
	} else if len([]rune(in.Name)) > 200 {
		errs = append(errs, &ValidationError{"name", "at most 200 characters"})
	}
	if strings.TrimSpace(in.Text) == "" {
		errs = append(errs, &ValidationError{"text", "required"})
	}
	if msg := validate.CookingTime(in.CookingTime); msg != "" {
		errs = append(errs, &ValidationError{"cooking_time", msg})
	}

	if len(in.Ingredients) == 0 {
		errs = append(errs, &ValidationError{"ingredients", "at least one ingredient is required"})
	}
	seen := make(map[uint]bool, len(in.Ingredients))
	for _, ia := range in.Ingredients {
		if seen[ia.ID] {
			errs = append(errs, &ValidationError{"ingredients", fmt.Sprintf("ingredient %d is listed twice", ia.ID)})
		}
		seen[ia.ID] = true
		if msg := validate.Amount(ia.Amount); msg != "" {
			errs = append(errs, &ValidationError{"ingredients", fmt.Sprintf("amount of ingredient %d %s", ia.ID, msg)})
		}
	}

	if len(in.TagIDs) == 0 {
		errs = append(errs, &ValidationError{"tags", "at least one tag is required"})
	}
	seenTag := make(map[uint]bool, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if seenTag[id] {
			errs = append(errs, &ValidationError{"tags", fmt.Sprintf("tag %d is listed twice", id)})
		}
		seenTag[id] = true
	}
	return errs.Err()
}

// Create stores a new recipe of authorID with its amounts and tags in one transaction.
func (r *Recipes) Create(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error) {
	if err := ValidateRecipe(in); err != nil {
		return nil, err
	}
	recipe := models.Recipe{
		Name:        in.Name,
		AuthorID:    authorID,
		Text:        in.Text,
		Image:       in.Image,
		CookingTime: in.CookingTime,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Recipe{}).Where("author_id = ? AND name = ?", authorID, in.Name).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ValidationErrors{{Field: "name", Message: "you already have a recipe with this name"}}
		}
		tags, err := loadTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, in.Ingredients); err != nil {
			return err
		}
		if err := tx.Omit("Tags", "Amounts", "Author").Create(&recipe).Error; err != nil {
			return err
		}
		if err := writeAmounts(tx, recipe.ID, in.Ingredients); err != nil {
			return err
		}
		return tx.Model(&recipe).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", Translate(err))
	}
	return r.ByID(ctx, recipe.ID, authorID)
}

// Update replaces every field, the ingredient list and the tags of recipe id.
// Only the author or an admin may update.
func (r *Recipes) Update(ctx context.Context, id uint, actor *models.User, in RecipeInput) (*models.Recipe, error) {
	if err := ValidateRecipe(in); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, id).Error; err != nil {
			return err
		}
		if !canModify(actor, &recipe) {
			return ErrForbidden
		}
		var taken int64
		if err := tx.Model(&models.Recipe{}).
			Where("author_id = ? AND name = ? AND id <> ?", recipe.AuthorID, in.Name, id).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ValidationErrors{{Field: "name", Message: "you already have a recipe with this name"}}
		}
		tags, err := loadTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		if err := checkIngredients(tx, in.Ingredients); err != nil {
			return err
		}
		if err := tx.Model(&recipe).Updates(map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"image":        in.Image,
			"cooking_time": in.CookingTime,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Amount{}).Error; err != nil {
			return err
		}
		if err := writeAmounts(tx, id, in.Ingredients); err != nil {
			return err
		}
		return tx.Model(&recipe).Association("Tags").Replace(tags)
	})
	if err != nil {
		return nil, fmt.Errorf("update recipe %d: %w", id, Translate(err))
	}
	return r.ByID(ctx, id, actor.ID)
}

// Delete removes recipe id. Amounts, favorites, cart entries and tag links
// are removed by ON DELETE CASCADE.
func (r *Recipes) Delete(ctx context.Context, id uint, actor *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, id).Error; err != nil {
			return err
		}
		if !canModify(actor, &recipe) {
			return ErrForbidden
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return fmt.Errorf("delete recipe %d: %w", id, Translate(err))
	}
	return nil
}

// ByID loads one recipe with author, tags and ingredients, annotated for viewerID.
func (r *Recipes) ByID(ctx context.Context, id, viewerID uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.preload(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		return nil, fmt.Errorf("recipe %d: %w", id, Translate(err))
	}
	if err := r.annotate(ctx, viewerID, []*models.Recipe{&recipe}); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// List returns one page of recipes, newest first, and the total matching count.
func (r *Recipes) List(ctx context.Context, f RecipeFilter, page Page) ([]models.Recipe, int64, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Model(&models.Recipe{})
		if f.AuthorID != 0 {
			q = q.Where("recipes.author_id = ?", f.AuthorID)
		}
		if len(f.TagSlugs) > 0 {
			q = q.Where("recipes.id IN (?)", r.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.TagSlugs))
		}
		if f.IsFavorited {
			q = q.Where("recipes.id IN (?)", r.db.Model(&models.Favorite{}).Select("recipe_id").Where("user_id = ?", f.ViewerID))
		}
		if f.IsInShoppingCart {
			q = q.Where("recipes.id IN (?)", r.db.Model(&models.ShoppingCartEntry{}).Select("recipe_id").Where("user_id = ?", f.ViewerID))
		}
		return q
	}

	var total int64
	if err := r.db.WithContext(ctx).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, Translate(err)
	}

	recipes := []models.Recipe{}
	err := r.preload(r.db.WithContext(ctx)).Scopes(scope).
		Order("recipes.created_at DESC, recipes.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, Translate(err)
	}

	ptrs := make([]*models.Recipe, len(recipes))
	for i := range recipes {
		ptrs[i] = &recipes[i]
	}
	if err := r.annotate(ctx, f.ViewerID, ptrs); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ByAuthors returns up to limit newest recipes per author (limit <= 0: all).
// The per-author limit is applied in SQL with ROW_NUMBER.
func (r *Recipes) ByAuthors(ctx context.Context, authorIDs []uint, limit int) (map[uint][]models.Recipe, error) {
	out := make(map[uint][]models.Recipe, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}
	q := r.db.WithContext(ctx)
	if limit > 0 {
		ranked := r.db.Model(&models.Recipe{}).
			Select("recipes.*, ROW_NUMBER() OVER (PARTITION BY author_id ORDER BY created_at DESC, id DESC) AS rn").
			Where("author_id IN ?", authorIDs)
		q = q.Table("(?) AS recipes", ranked).Where("rn <= ?", limit)
	} else {
		q = q.Where("author_id IN ?", authorIDs)
	}

	var recipes []models.Recipe
	if err := q.Order("created_at DESC, id DESC").Find(&recipes).Error; err != nil {
		return nil, Translate(err)
	}
	for _, rc := range recipes {
		out[rc.AuthorID] = append(out[rc.AuthorID], rc)
	}
	return out, nil
}

// CountByAuthors counts recipes per author in one query.
func (r *Recipes) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}
	type countResult struct {
		AuthorID uint
		Count    int
	}
	var results []countResult
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) as count").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&results).Error; err != nil {
		return nil, Translate(err)
	}
	for _, res := range results {
		counts[res.AuthorID] = res.Count
	}
	return counts, nil
}

func (r *Recipes) preload(q *gorm.DB) *gorm.DB {
	return q.Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Amounts", func(db *gorm.DB) *gorm.DB { return db.Order("amounts.id ASC") }).
		Preload("Amounts.Ingredient")
}

// annotate fills IsFavorited, IsInShoppingCart and Author.IsSubscribed for viewerID.
func (r *Recipes) annotate(ctx context.Context, viewerID uint, recipes []*models.Recipe) error {
	if viewerID == 0 || len(recipes) == 0 {
		return nil
	}
	ids := make([]uint, len(recipes))
	authors := make([]*models.User, len(recipes))
	for i, rc := range recipes {
		ids[i] = rc.ID
		authors[i] = &rc.Author
	}

	var favorited, carted []uint
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, ids).
		Pluck("recipe_id", &favorited).Error; err != nil {
		return Translate(err)
	}
	if err := db.Model(&models.ShoppingCartEntry{}).
		Where("user_id = ? AND recipe_id IN ?", viewerID, ids).
		Pluck("recipe_id", &carted).Error; err != nil {
		return Translate(err)
	}
	fav := toSet(favorited)
	cart := toSet(carted)
	for _, rc := range recipes {
		rc.IsFavorited = fav[rc.ID]
		rc.IsInShoppingCart = cart[rc.ID]
	}
	return NewUsers(r.db).MarkSubscribed(ctx, viewerID, authors)
}

func canModify(actor *models.User, recipe *models.Recipe) bool {
	return actor != nil && (actor.IsAdmin || actor.ID == recipe.AuthorID)
}

func loadTags(tx *gorm.DB, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, ValidationErrors{{Field: "tags", Message: "unknown tag"}}
	}
	return tags, nil
}

func checkIngredients(tx *gorm.DB, items []IngredientAmount) error {
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	var n int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return err
	}
	if int(n) != len(ids) {
		return ValidationErrors{{Field: "ingredients", Message: "unknown ingredient"}}
	}
	return nil
}

func writeAmounts(tx *gorm.DB, recipeID uint, items []IngredientAmount) error {
	amounts := make([]models.Amount, len(items))
	for i, it := range items {
		amounts[i] = models.Amount{RecipeID: recipeID, IngredientID: it.ID, Quantity: it.Amount}
	}
	return tx.Omit("Ingredient").Create(&amounts).Error
}

func toSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

