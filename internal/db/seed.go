package db

import (
	"foodgram/internal/logger"
	"foodgram/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var defaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

var defaultIngredients = []models.Ingredient{
	{Name: "butter", MeasurementUnit: "g"},
	{Name: "egg", MeasurementUnit: "pcs"},
	{Name: "flour", MeasurementUnit: "g"},
	{Name: "milk", MeasurementUnit: "ml"},
	{Name: "salt", MeasurementUnit: "g"},
	{Name: "sugar", MeasurementUnit: "g"},
}

// Seed fills tags and ingredients when their tables are empty.
func Seed(db *gorm.DB) {
	seedTable(db, &models.Tag{}, defaultTags, "tags")
	seedTable(db, &models.Ingredient{}, defaultIngredients, "ingredients")
}

func seedTable[T any](db *gorm.DB, model interface{}, rows []T, name string) {
	var count int64
	db.Model(model).Count(&count)
	if count > 0 {
		logger.Info("Already seeded, skipping", zap.String("table", name))
		return
	}
	// copy so the package-level defaults keep zero IDs
	batch := append([]T(nil), rows...)
	if err := db.Create(&batch).Error; err != nil {
		logger.Error("Failed to seed", zap.String("table", name), zap.Error(err))
		return
	}
	logger.Info("Initial rows created", zap.String("table", name), zap.Int("count", len(batch)))
}
