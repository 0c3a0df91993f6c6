package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/pairsell/pairsell/app/models"
)

// shopRepository implements the ShopRepository interface
type shopRepository struct {
	db *gorm.DB
}

// NewShopRepository creates a new shop repository instance
func NewShopRepository(db *gorm.DB) ShopRepository {
	return &shopRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle
func (r *shopRepository) WithTx(tx *gorm.DB) ShopRepository {
	return &shopRepository{db: tx}
}

// Create creates a new shop in the database
func (r *shopRepository) Create(shop *models.Shop) error {
	return r.db.Create(shop).Error
}

// GetByID retrieves a shop by its ID
func (r *shopRepository) GetByID(id uint) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.First(&shop, id).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetByDomain retrieves a shop by its unique domain
func (r *shopRepository) GetByDomain(domain string) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.Where("domain = ?", strings.TrimSpace(domain)).First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetByAPIKeyHash resolves an API key hash to its shop.
func (r *shopRepository) GetByAPIKeyHash(hash string) (*models.Shop, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var shop models.Shop
	err := r.db.Where("api_key_hash = ? AND api_key_hash <> ''", trimmed).First(&shop).Error
	if err != nil {
		return nil, err
	}
	return &shop, nil
}

// Update updates an existing shop in the database
func (r *shopRepository) Update(shop *models.Shop) error {
	return r.db.Save(shop).Error
}

// Delete soft deletes a shop; products and edges cascade at the database level
func (r *shopRepository) Delete(id uint) error {
	return r.db.Delete(&models.Shop{}, id).Error
}

// Count returns the total number of shops
func (r *shopRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Shop{}).Count(&count).Error
	return count, err
}
