package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodgram/internal/db/testenv"
	"foodgram/internal/models"
	"foodgram/internal/store"
	"foodgram/internal/utils"

	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	users       *store.Users
	recipes     *store.Recipes
	tags        *store.Tags
	ingredients *store.Ingredients

	author, viewer *models.User
	breakfast      models.Tag
	dinner         models.Tag
	flour, egg     models.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testenv.DB(t)
	cache := utils.NewCache(50)
	f := &fixture{
		db:          gdb,
		users:       store.NewUsers(gdb),
		recipes:     store.NewRecipes(gdb),
		tags:        store.NewTags(gdb, cache, time.Minute),
		ingredients: store.NewIngredients(gdb, cache, time.Minute),
	}
	ctx := context.Background()

	f.author = &models.User{Email: "author@example.com", Username: "author", FirstName: "Ann", LastName: "Cook", Password: "x"}
	f.viewer = &models.User{Email: "viewer@example.com", Username: "viewer", FirstName: "Bob", LastName: "Eater", Password: "x"}
	for _, u := range []*models.User{f.author, f.viewer} {
		if err := f.users.Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	f.breakfast = models.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}
	f.dinner = models.Tag{Name: "Dinner", Color: "#8775D2", Slug: "dinner"}
	for _, tag := range []*models.Tag{&f.breakfast, &f.dinner} {
		if err := f.tags.Create(ctx, tag); err != nil {
			t.Fatalf("create tag: %v", err)
		}
	}
	f.flour = models.Ingredient{Name: "flour", MeasurementUnit: "g"}
	f.egg = models.Ingredient{Name: "egg", MeasurementUnit: "pcs"}
	for _, ing := range []*models.Ingredient{&f.flour, &f.egg} {
		if err := f.ingredients.Create(ctx, ing); err != nil {
			t.Fatalf("create ingredient: %v", err)
		}
	}
	return f
}

func (f *fixture) pancakes() store.RecipeInput {
	return store.RecipeInput{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 20,
		Ingredients: []store.IngredientAmount{{ID: f.flour.ID, Amount: 200}, {ID: f.egg.ID, Amount: 2}},
		TagIDs:      []uint{f.breakfast.ID},
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	dup := &models.User{Email: "author@example.com", Username: "other", FirstName: "Ann", LastName: "Cook", Password: "x"}
	err := f.users.Create(context.Background(), dup)
	if !errors.Is(err, store.ErrConstraintViolation) || !store.IsUniqueViolation(err) {
		t.Errorf("Expected unique violation, got %v", err)
	}
}

func TestCreateAndLoadRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	recipe, err := f.recipes.Create(ctx, f.author.ID, f.pancakes())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if recipe.Author.ID != f.author.ID {
		t.Errorf("Expected author %d, got %d", f.author.ID, recipe.Author.ID)
	}
	if len(recipe.Amounts) != 2 || recipe.Amounts[0].Ingredient.Name != "flour" || recipe.Amounts[0].Quantity != 200 {
		t.Errorf("Unexpected amounts %+v", recipe.Amounts)
	}
	if len(recipe.Tags) != 1 || recipe.Tags[0].Slug != "breakfast" {
		t.Errorf("Unexpected tags %+v", recipe.Tags)
	}
}

func TestRecipeNameUniquePerAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.recipes.Create(ctx, f.author.ID, f.pancakes()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := f.recipes.Create(ctx, f.author.ID, f.pancakes())
	var verrs store.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Expected a validation error for a duplicate name, got %v", err)
	}

	// Another author may reuse the name.
	if _, err := f.recipes.Create(ctx, f.viewer.ID, f.pancakes()); err != nil {
		t.Errorf("Create by another author failed: %v", err)
	}
}

func TestRecipeRejectsUnknownReferences(t *testing.T) {
	f := newFixture(t)
	in := f.pancakes()
	in.Ingredients = append(in.Ingredients, store.IngredientAmount{ID: 999, Amount: 1})

	_, err := f.recipes.Create(context.Background(), f.author.ID, in)
	var verrs store.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Errorf("Expected validation error for unknown ingredient, got %v", err)
	}
}

func TestUpdateRecipeOnlyByAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipe, err := f.recipes.Create(ctx, f.author.ID, f.pancakes())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	in := f.pancakes()
	in.Name = "Crepes"
	in.Ingredients = []store.IngredientAmount{{ID: f.egg.ID, Amount: 3}}
	in.TagIDs = []uint{f.breakfast.ID, f.dinner.ID}

	if _, err := f.recipes.Update(ctx, recipe.ID, f.viewer, in); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("Expected ErrForbidden for a foreign recipe, got %v", err)
	}

	updated, err := f.recipes.Update(ctx, recipe.ID, f.author, in)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Crepes" || len(updated.Amounts) != 1 || updated.Amounts[0].Quantity != 3 || len(updated.Tags) != 2 {
		t.Errorf("Update not applied: %+v", updated)
	}
}

func TestDeleteRecipeCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipe, err := f.recipes.Create(ctx, f.author.ID, f.pancakes())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.db.Create(&models.Favorite{UserID: f.viewer.ID, RecipeID: recipe.ID})
	f.db.Create(&models.ShoppingCartEntry{UserID: f.viewer.ID, RecipeID: recipe.ID})

	if err := f.recipes.Delete(ctx, recipe.ID, f.viewer); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
	if err := f.recipes.Delete(ctx, recipe.ID, f.author); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	for _, model := range []interface{}{&models.Amount{}, &models.Favorite{}, &models.ShoppingCartEntry{}} {
		var n int64
		f.db.Model(model).Count(&n)
		if n != 0 {
			t.Errorf("Expected %T rows to be deleted, %d left", model, n)
		}
	}
	rows, err := store.NewCart(f.db).CartAmounts(ctx, f.viewer.ID)
	if err != nil || len(rows) != 0 {
		t.Errorf("Expected an empty cart, got %v (%v)", rows, err)
	}
	if _, err := f.recipes.ByID(ctx, recipe.ID, 0); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListRecipesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pancakes, err := f.recipes.Create(ctx, f.author.ID, f.pancakes())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	stew := f.pancakes()
	stew.Name = "Stew"
	stew.TagIDs = []uint{f.dinner.ID}
	if _, err := f.recipes.Create(ctx, f.viewer.ID, stew); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.db.Create(&models.Favorite{UserID: f.viewer.ID, RecipeID: pancakes.ID})

	page := store.NewPage(1, 10, 6)
	cases := []struct {
		name   string
		filter store.RecipeFilter
		want   []string
	}{
		{"all, newest first", store.RecipeFilter{}, []string{"Stew", "Pancakes"}},
		{"by author", store.RecipeFilter{AuthorID: f.author.ID}, []string{"Pancakes"}},
		{"by tag", store.RecipeFilter{TagSlugs: []string{"dinner"}}, []string{"Stew"}},
		{"any of tags", store.RecipeFilter{TagSlugs: []string{"dinner", "breakfast"}}, []string{"Stew", "Pancakes"}},
		{"favorited", store.RecipeFilter{ViewerID: f.viewer.ID, IsFavorited: true}, []string{"Pancakes"}},
		{"in cart", store.RecipeFilter{ViewerID: f.viewer.ID, IsInShoppingCart: true}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recipes, total, err := f.recipes.List(ctx, tc.filter, page)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if int(total) != len(tc.want) || len(recipes) != len(tc.want) {
				t.Fatalf("Expected %d recipes, got %d (total %d)", len(tc.want), len(recipes), total)
			}
			for i, name := range tc.want {
				if recipes[i].Name != name {
					t.Errorf("Position %d: expected %s, got %s", i, name, recipes[i].Name)
				}
			}
		})
	}

	recipes, _, err := f.recipes.List(ctx, store.RecipeFilter{ViewerID: f.viewer.ID, AuthorID: f.author.ID}, page)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !recipes[0].IsFavorited || recipes[0].IsInShoppingCart {
		t.Errorf("Expected favorited and not in cart, got %+v", recipes[0])
	}
}

func TestRecipesByAuthorsLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var newest []uint
	for _, name := range []string{"Porridge", "Omelette", "Toast"} {
		in := f.pancakes()
		in.Name = name
		rc, err := f.recipes.Create(ctx, f.author.ID, in)
		if err != nil {
			t.Fatalf("Create %s failed: %v", name, err)
		}
		newest = append([]uint{rc.ID}, newest...)
	}
	if _, err := f.recipes.Create(ctx, f.viewer.ID, f.pancakes()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ids := []uint{f.author.ID, f.viewer.ID}
	got, err := f.recipes.ByAuthors(ctx, ids, 2)
	if err != nil {
		t.Fatalf("ByAuthors failed: %v", err)
	}
	mine := got[f.author.ID]
	if len(mine) != 2 || mine[0].ID != newest[0] || mine[1].ID != newest[1] {
		t.Errorf("Expected the 2 newest recipes %v, got %+v", newest[:2], mine)
	}
	if len(got[f.viewer.ID]) != 1 {
		t.Errorf("Expected 1 recipe for viewer, got %d", len(got[f.viewer.ID]))
	}

	all, err := f.recipes.ByAuthors(ctx, ids, 0)
	if err != nil {
		t.Fatalf("ByAuthors failed: %v", err)
	}
	if len(all[f.author.ID]) != 3 {
		t.Errorf("Expected all 3 recipes without a limit, got %d", len(all[f.author.ID]))
	}
}

func TestIngredientSearchByPrefix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got, err := f.ingredients.Search(ctx, "FL")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "flour" {
		t.Errorf("Expected only flour, got %+v", got)
	}

	// A new ingredient invalidates cached searches.
	if err := f.ingredients.Create(ctx, &models.Ingredient{Name: "flaxseed", MeasurementUnit: "g"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, _ = f.ingredients.Search(ctx, "fl")
	if len(got) != 2 || got[0].Name != "flaxseed" {
		t.Errorf("Expected flaxseed and flour, got %+v", got)
	}

	if got, _ := f.ingredients.Search(ctx, "%"); len(got) != 0 {
		t.Errorf("Expected wildcard to be escaped, got %+v", got)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	recipe, err := f.recipes.Create(ctx, f.author.ID, f.pancakes())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.db.Create(&models.Favorite{UserID: f.viewer.ID, RecipeID: recipe.ID})
	f.db.Create(&models.Follow{FollowerID: f.viewer.ID, AuthorID: f.author.ID})

	if err := f.users.Delete(ctx, f.author.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	for _, model := range []interface{}{&models.Recipe{}, &models.Amount{}, &models.Favorite{}, &models.Follow{}} {
		var n int64
		f.db.Model(model).Count(&n)
		if n != 0 {
			t.Errorf("Expected %T rows to be deleted, %d left", model, n)
		}
	}
	if err := f.users.Delete(ctx, f.author.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a second delete, got %v", err)
	}
}

func TestFollowCheckConstraint(t *testing.T) {
	f := newFixture(t)
	err := store.Translate(f.db.Create(&models.Follow{FollowerID: f.author.ID, AuthorID: f.author.ID}).Error)
	var ce *store.ConstraintError
	if !errors.As(err, &ce) || ce.Constraint != "chk_follow_not_self" {
		t.Errorf("Expected chk_follow_not_self violation, got %v", err)
	}
}
