package repository

import (
	"gorm.io/gorm"

	"github.com/pairsell/pairsell/app/models"
)

// ShopRepository defines the interface for shop-related database operations
type ShopRepository interface {
	Create(shop *models.Shop) error
	GetByID(id uint) (*models.Shop, error)
	GetByDomain(domain string) (*models.Shop, error)
	GetByAPIKeyHash(hash string) (*models.Shop, error)
	Update(shop *models.Shop) error
	Delete(id uint) error
	Count() (int64, error)
	WithTx(tx *gorm.DB) ShopRepository
}

// ProductRepository defines the interface for product-related database operations
type ProductRepository interface {
	Upsert(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetByExternalID(shopID uint, externalID string) (*models.Product, error)
	ListByShop(shopID uint) ([]models.Product, error)
	CountByShop(shopID uint) (int64, error)
	Delete(id uint) error
	WithTx(tx *gorm.DB) ProductRepository
}

// RecommendationRepository defines the interface for recommendation edge operations
type RecommendationRepository interface {
	Upsert(rec *models.Recommendation) (bool, error)
	ListBySource(shopID uint, productID uint, limit int) ([]models.Recommendation, error)
	SourceIDsWithEdges(shopID uint) (map[uint]bool, error)
	CountByShop(shopID uint) (int64, error)
	DeleteByShop(shopID uint) error
	WithTx(tx *gorm.DB) RecommendationRepository
}

// SyncRunRepository defines the interface for sync audit records
type SyncRunRepository interface {
	Create(run *models.SyncRun) error
	Update(run *models.SyncRun) error
	GetByUUID(uuid string) (*models.SyncRun, error)
	ListByShop(shopID uint, limit int) ([]models.SyncRun, error)
}

// Repositories bundles all repository instances
type Repositories struct {
	Shop           ShopRepository
	Product        ProductRepository
	Recommendation RecommendationRepository
	SyncRun        SyncRunRepository
}

// NewRepositories creates all repositories backed by the given database handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Shop:           NewShopRepository(db),
		Product:        NewProductRepository(db),
		Recommendation: NewRecommendationRepository(db),
		SyncRun:        NewSyncRunRepository(db),
	}
}
