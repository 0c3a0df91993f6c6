package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pairsell/pairsell/app/models"
)

// recommendationRepository implements the RecommendationRepository interface
type recommendationRepository struct {
	db *gorm.DB
}

// NewRecommendationRepository creates a new recommendation repository instance
func NewRecommendationRepository(db *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle
func (r *recommendationRepository) WithTx(tx *gorm.DB) RecommendationRepository {
	return &recommendationRepository{db: tx}
}

// Upsert inserts the edge or, when (shop_id, product_id,
// recommended_product_id) already exists, refreshes its reason in place.
// Only the reason is assigned on conflict, so impression and click counters
// of existing edges are preserved. The boolean reports whether a new edge row
// was created.
func (r *recommendationRepository) Upsert(rec *models.Recommendation) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "shop_id"}, {Name: "product_id"}, {Name: "recommended_product_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "updated_at"}),
	}).Create(rec)
	if result.Error != nil {
		return false, result.Error
	}
	// MySQL reports one affected row for an insert and two for a conflict
	// update, so exactly one row means a new edge.
	return result.RowsAffected == 1, nil
}

// ListBySource returns the outgoing edges of a source product with the target
// product preloaded, oldest first so the ordering is stable across calls.
func (r *recommendationRepository) ListBySource(shopID uint, productID uint, limit int) ([]models.Recommendation, error) {
	var recs []models.Recommendation
	query := r.db.Preload("RecommendedProduct").
		Where("shop_id = ? AND product_id = ?", shopID, productID).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&recs).Error
	return recs, err
}

// SourceIDsWithEdges returns the set of product IDs that currently have at
// least one outgoing edge. The incremental sync diff is computed against it.
func (r *recommendationRepository) SourceIDsWithEdges(shopID uint) (map[uint]bool, error) {
	var ids []uint
	err := r.db.Model(&models.Recommendation{}).
		Where("shop_id = ?", shopID).
		Distinct().
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CountByShop returns the total number of edges stored for a shop
func (r *recommendationRepository) CountByShop(shopID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Recommendation{}).Where("shop_id = ?", shopID).Count(&count).Error
	return count, err
}

// DeleteByShop removes every edge of a shop, used by refresh mode and tenant reset
func (r *recommendationRepository) DeleteByShop(shopID uint) error {
	return r.db.Where("shop_id = ?", shopID).Delete(&models.Recommendation{}).Error
}
