package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pairsell/pairsell/app/models"
)

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle
func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

// Upsert inserts the product or, when (shop_id, external_id) already exists,
// updates its display attributes in place. Re-submitting the same payload is
// idempotent and never creates a duplicate row. The model's ID is populated
// with the surviving row's key either way.
func (r *productRepository) Upsert(product *models.Product) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"handle", "title", "description", "product_type",
			"vendor", "price", "image_url", "tags", "updated_at",
		}),
	}).Create(product).Error
	if err != nil {
		return err
	}
	// MySQL does not report the surviving primary key on conflict updates.
	if product.ID == 0 {
		var existing models.Product
		if err := r.db.Select("id").
			Where("shop_id = ? AND external_id = ?", product.ShopID, product.ExternalID).
			First(&existing).Error; err != nil {
			return err
		}
		product.ID = existing.ID
	}
	return nil
}

// GetByID retrieves a product by its internal ID
func (r *productRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByExternalID retrieves a product by its natural key within a shop
func (r *productRepository) GetByExternalID(shopID uint, externalID string) (*models.Product, error) {
	var product models.Product
	err := r.db.Where("shop_id = ? AND external_id = ?", shopID, externalID).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByShop returns all products of a shop
func (r *productRepository) ListByShop(shopID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("shop_id = ?", shopID).Order("id ASC").Find(&products).Error
	return products, err
}

// CountByShop returns the number of products stored for a shop
func (r *productRepository) CountByShop(shopID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("shop_id = ?", shopID).Count(&count).Error
	return count, err
}

// Delete removes a product; its recommendation edges cascade
func (r *productRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}
