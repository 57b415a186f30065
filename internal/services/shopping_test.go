package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"foodgram/internal/store"
)

type fakeCart map[uint][]store.AmountRow

func (f fakeCart) CartAmounts(_ context.Context, userID uint) ([]store.AmountRow, error) {
	return f[userID], nil
}

type failingCart struct{ err error }

func (f failingCart) CartAmounts(context.Context, uint) ([]store.AmountRow, error) {
	return nil, f.err
}

func TestComputeShoppingListEmptyCart(t *testing.T) {
	s := NewShoppingService(fakeCart{})
	items, err := s.ComputeShoppingList(context.Background(), 1)
	if err != nil {
		t.Fatalf("ComputeShoppingList failed: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("Expected empty non-nil list, got %#v", items)
	}
}

func TestComputeShoppingListSumsAcrossRecipes(t *testing.T) {
	cart := fakeCart{
		1: {
			{RecipeID: 1, Name: "flour", Unit: "g", Quantity: 200},
			{RecipeID: 1, Name: "sugar", Unit: "g", Quantity: 50},
			{RecipeID: 2, Name: "flour", Unit: "g", Quantity: 300},
			{RecipeID: 2, Name: "egg", Unit: "pcs", Quantity: 2},
		},
	}
	items, err := NewShoppingService(cart).ComputeShoppingList(context.Background(), 1)
	if err != nil {
		t.Fatalf("ComputeShoppingList failed: %v", err)
	}
	want := []ShoppingItem{
		{Name: "egg", Unit: "pcs", Total: 2},
		{Name: "flour", Unit: "g", Total: 500},
		{Name: "sugar", Unit: "g", Total: 50},
	}
	if !reflect.DeepEqual(items, want) {
		t.Errorf("Expected %v, got %v", want, items)
	}
}

func TestAggregateDoesNotDeduplicateEqualQuantities(t *testing.T) {
	rows := []store.AmountRow{
		{RecipeID: 1, Name: "milk", Unit: "ml", Quantity: 250},
		{RecipeID: 2, Name: "milk", Unit: "ml", Quantity: 250},
	}
	items := Aggregate(rows)
	if len(items) != 1 || items[0].Total != 500 {
		t.Errorf("Expected one milk line of 500, got %v", items)
	}
}

func TestAggregateKeepsUnitsApart(t *testing.T) {
	rows := []store.AmountRow{
		{RecipeID: 1, Name: "salt", Unit: "g", Quantity: 5},
		{RecipeID: 2, Name: "salt", Unit: "pinch", Quantity: 1},
		{RecipeID: 3, Name: "salt", Unit: "g", Quantity: 10},
	}
	want := []ShoppingItem{
		{Name: "salt", Unit: "g", Total: 15},
		{Name: "salt", Unit: "pinch", Total: 1},
	}
	if got := Aggregate(rows); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestComputeShoppingListPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewShoppingService(failingCart{boom}).ComputeShoppingList(context.Background(), 1)
	if !errors.Is(err, boom) {
		t.Errorf("Expected db error, got %v", err)
	}
}

func TestFormatShoppingList(t *testing.T) {
	items := []ShoppingItem{
		{Name: "egg", Unit: "pcs", Total: 2},
		{Name: "flour", Unit: "g", Total: 500},
	}
	want := "egg (pcs) — 2\nflour (g) — 500"
	if got := FormatShoppingList(items); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if got := FormatShoppingList(nil); got != "" {
		t.Errorf("Expected empty text for empty list, got %q", got)
	}
}
