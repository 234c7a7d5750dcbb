package models

// Category groups products in the storefront navigation.
// Position orders categories in menus; ties fall back to the code.
type Category struct {
	ID       uint   `gorm:"primaryKey"`
	Code     string `gorm:"uniqueIndex;not null"`
	Name     string `gorm:"not null"`
	Position int    `gorm:"not null;default:0"`
}

func (c *Category) TableName() string {
	return "categories"
}
