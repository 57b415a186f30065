package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"foodgram/internal/store"
)

// ShoppingItem is one line of a shopping list.
type ShoppingItem struct {
	Name  string `json:"name"`
	Unit  string `json:"measurement_unit"`
	Total int    `json:"amount"`
}

// CartSource yields the Amount rows of the recipes in a user's cart.
type CartSource interface {
	CartAmounts(ctx context.Context, userID uint) ([]store.AmountRow, error)
}

type ShoppingService struct {
	cart CartSource
}

func NewShoppingService(cart CartSource) *ShoppingService {
	return &ShoppingService{cart: cart}
}

// ComputeShoppingList sums the ingredients of every recipe in the user's cart.
func (s *ShoppingService) ComputeShoppingList(ctx context.Context, userID uint) ([]ShoppingItem, error) {
	rows, err := s.cart.CartAmounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Aggregate(rows), nil
}

// Aggregate groups rows by (name, unit) and sums their quantities, sorted by
// name then unit. Equal quantities from different recipes are added, not merged.
func Aggregate(rows []store.AmountRow) []ShoppingItem {
	type key struct{ name, unit string }
	totals := make(map[key]int, len(rows))
	for _, r := range rows {
		totals[key{r.Name, r.Unit}] += r.Quantity
	}

	items := make([]ShoppingItem, 0, len(totals))
	for k, total := range totals {
		items = append(items, ShoppingItem{Name: k.name, Unit: k.unit, Total: total})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].Unit < items[j].Unit
	})
	return items
}

// FormatShoppingList renders one "name (unit) — total" line per item.
func FormatShoppingList(items []ShoppingItem) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = fmt.Sprintf("%s (%s) — %d", it.Name, it.Unit, it.Total)
	}
	return strings.Join(lines, "\n")
}
