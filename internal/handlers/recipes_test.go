package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/services"
	"foodgram/internal/store"

	"github.com/gin-gonic/gin"
)

type fakeCart map[uint][]store.AmountRow

func (f fakeCart) CartAmounts(_ context.Context, userID uint) ([]store.AmountRow, error) {
	return f[userID], nil
}

type failingCart struct{}

func (failingCart) CartAmounts(context.Context, uint) ([]store.AmountRow, error) {
	return nil, errors.New("database is down")
}

func newDownloadEngine(cart services.CartSource, user *models.User) *gin.Engine {
	h := NewRecipeHandler(nil, nil, services.NewShoppingService(cart), 6)
	r := gin.New()
	r.HTMLRender = Templates()
	r.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.CheckUserKey, user)
		}
	})
	r.GET("/download", middleware.AuthRequired(), h.DownloadShoppingCart)
	return r
}

var cookCart = fakeCart{
	1: {
		{RecipeID: 1, Name: "flour", Unit: "g", Quantity: 200},
		{RecipeID: 1, Name: "egg", Unit: "pcs", Quantity: 2},
		{RecipeID: 2, Name: "flour", Unit: "g", Quantity: 300},
		{RecipeID: 2, Name: "sugar", Unit: "g", Quantity: 100},
	},
}

func TestDownloadShoppingCartText(t *testing.T) {
	r := newDownloadEngine(cookCart, &models.User{ID: 1, Username: "cook"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "shopping_cart.txt") {
		t.Errorf("Unexpected Content-Disposition %q", got)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Errorf("Unexpected Content-Type %q", got)
	}
	want := "egg (pcs) — 2\nflour (g) — 500\nsugar (g) — 100"
	if w.Body.String() != want {
		t.Errorf("Expected body %q, got %q", want, w.Body.String())
	}
}

func TestDownloadShoppingCartHTML(t *testing.T) {
	r := newDownloadEngine(cookCart, &models.User{ID: 1, Username: "cook"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download?format=html", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Shopping list for cook", "<li>flour (g) — 500</li>", "<li>egg (pcs) — 2</li>"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %q in %s", want, body)
		}
	}
}

func TestDownloadShoppingCartEmpty(t *testing.T) {
	r := newDownloadEngine(cookCart, &models.User{ID: 2, Username: "newbie"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Expected empty list, got %q", w.Body.String())
	}
}

func TestDownloadShoppingCartRequiresAuth(t *testing.T) {
	r := newDownloadEngine(cookCart, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestDownloadShoppingCartStoreFailure(t *testing.T) {
	r := newDownloadEngine(failingCart{}, &models.User{ID: 1})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}

func TestRecipeRequestValidation(t *testing.T) {
	h := NewRecipeHandler(nil, nil, nil, 6)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(middleware.CheckUserKey, &models.User{ID: 1}) })
	r.POST("/api/recipes/", h.Create)

	cases := []struct{ field, body string }{
		{"ingredients", `{"ingredients":[],"tags":[1],"name":"Soup","text":"Boil","cooking_time":10}`},
		{"cooking_time", `{"ingredients":[{"id":1,"amount":5}],"tags":[1],"name":"Soup","text":"Boil","cooking_time":0}`},
		{"tags", `{"ingredients":[{"id":1,"amount":5}],"name":"Soup","text":"Boil","cooking_time":10}`},
		{"ingredients[0].amount", `{"ingredients":[{"id":1,"amount":10001}],"tags":[1],"name":"Soup","text":"Boil","cooking_time":10}`},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/recipes/", strings.NewReader(tc.body)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.field, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), `"`+tc.field+`"`) {
			t.Errorf("%s: expected error keyed by field, got %s", tc.field, w.Body.String())
		}
	}
}
