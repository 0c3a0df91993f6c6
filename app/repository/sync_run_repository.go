package repository

import (
	"gorm.io/gorm"

	"github.com/pairsell/pairsell/app/models"
)

// syncRunRepository implements the SyncRunRepository interface
type syncRunRepository struct {
	db *gorm.DB
}

// NewSyncRunRepository creates a new sync run repository instance
func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepository{db: db}
}

// Create persists a freshly opened audit record
func (r *syncRunRepository) Create(run *models.SyncRun) error {
	return r.db.Create(run).Error
}

// Update writes the finalized state of a run
func (r *syncRunRepository) Update(run *models.SyncRun) error {
	return r.db.Save(run).Error
}

// GetByUUID retrieves a run by its public identifier
func (r *syncRunRepository) GetByUUID(uuid string) (*models.SyncRun, error) {
	var run models.SyncRun
	err := r.db.Where("uuid = ?", uuid).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListByShop returns the most recent runs of a shop, newest first
func (r *syncRunRepository) ListByShop(shopID uint, limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	query := r.db.Where("shop_id = ?", shopID).Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&runs).Error
	return runs, err
}
