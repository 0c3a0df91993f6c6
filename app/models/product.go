package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Product is one catalog item of a shop, unique per (shop, external id).
// Display attributes feed the recommendation heuristics only; the sync
// pipeline itself never interprets them.
type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	ShopID      uint    `gorm:"uniqueIndex:idx_shop_external;not null" json:"shop_id"`
	ExternalID  string  `gorm:"uniqueIndex:idx_shop_external;type:varchar(100);not null" json:"external_id" validate:"required,max=100"`
	Handle      string  `gorm:"type:varchar(255)" json:"handle" validate:"max=255"`
	Title       string  `gorm:"type:varchar(255)" json:"title" validate:"required,max=255"`
	Description string  `gorm:"type:text" json:"description"`
	ProductType string  `gorm:"type:varchar(150)" json:"product_type" validate:"max=150"`
	Vendor      string  `gorm:"type:varchar(150)" json:"vendor" validate:"max=150"`
	Price       float64 `gorm:"default:0" json:"price" validate:"gte=0"`
	ImageURL    string  `gorm:"type:varchar(500)" json:"image_url" validate:"max=500"`
	Tags        string  `gorm:"type:text" json:"tags"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Shop Shop `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Product) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// TagList splits the stored comma separated tags into trimmed entries.
func (p *Product) TagList() []string {
	if strings.TrimSpace(p.Tags) == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags normalizes a tag slice into the stored comma separated form.
func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ",")
}

// BeforeSave trims identifying fields so upserts match regardless of payload
// whitespace.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.ExternalID = strings.TrimSpace(p.ExternalID)
	p.Handle = strings.TrimSpace(p.Handle)
	return nil
}
