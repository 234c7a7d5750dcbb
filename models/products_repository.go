package models

import (
	"errors"

	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

type ProductFilters struct {
	CategoryCode  string
	PriceLessThan *float64
	Tag           string
	FeaturedOnly  bool
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// withCatalogTree preloads everything a product card needs to resolve variants.
func withCatalogTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_options.position").Order("product_options.id")
		}).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_variants.id")
		})
}

func (r *ProductsRepository) GetFilteredProducts(offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.Model(&Product{}).
		Joins("LEFT JOIN categories ON categories.id = products.category_id")

	// Filter
	if filters.CategoryCode != "" {
		query = query.Where("categories.code = ?", filters.CategoryCode)
	}
	if filters.PriceLessThan != nil {
		query = query.Where("products.price < ?", *filters.PriceLessThan)
	}
	if filters.Tag != "" {
		query = query.Where("? = ANY(products.tags)", filters.Tag)
	}
	if filters.FeaturedOnly {
		query = query.Where("products.featured = ?", true)
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if err := query.Scopes(withCatalogTree).
		Order("products.id").
		Offset(offset).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductsRepository) GetByCode(code string) (*Product, error) {
	var product Product
	if err := r.db.
		Scopes(withCatalogTree).
		Where("code = ?", code).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}
