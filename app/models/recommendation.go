package models

import (
	"time"
)

// Recommendation is a directed edge from a source product to a recommended
// target product, unique per (shop, source, target). Impression and click
// counters belong to the tracking side; the sync pipeline never touches them.
type Recommendation struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	ShopID               uint      `gorm:"uniqueIndex:idx_shop_source_target;not null" json:"shop_id"`
	ProductID            uint      `gorm:"uniqueIndex:idx_shop_source_target;not null" json:"product_id"`
	RecommendedProductID uint      `gorm:"uniqueIndex:idx_shop_source_target;not null" json:"recommended_product_id"`
	Reason               string    `gorm:"type:text" json:"reason"`
	Impressions          int64     `gorm:"default:0" json:"impressions"`
	Clicks               int64     `gorm:"default:0" json:"clicks"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Shop               Shop    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Product            Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	RecommendedProduct Product `gorm:"foreignKey:RecommendedProductID;constraint:OnDelete:CASCADE" json:"recommended_product"`
}
