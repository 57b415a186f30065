package models

// Tag is a recipe label with a #RRGGBB color.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:200;not null;unique" json:"name"`
	Color string `gorm:"size:7;not null;unique" json:"color"`
	Slug  string `gorm:"size:128;not null;unique" json:"slug"`
}
