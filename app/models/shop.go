package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	PLAN_FREE = "free"
	PLAN_PRO  = "pro"
	PLAN_MAX  = "max"
)

// DefaultDailyTokenBudget seeds DailyTokenBudget for newly registered shops.
// Operators can raise it per shop without touching the global budget.
const DefaultDailyTokenBudget int64 = 50000

// Shop is a tenant of the recommendation service. The refresh counter is only
// meaningful together with RefreshCycleKey, and the daily token counter only
// together with TokensDate; both pairs are always read and written together.
type Shop struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Domain             string     `gorm:"uniqueIndex;type:varchar(255)" json:"domain" validate:"required,min=4,max=255"`
	APIKeyHash         string     `gorm:"type:varchar(64);index" json:"-"`
	Plan               string     `gorm:"type:varchar(20);default:'free'" json:"plan" validate:"oneof=free pro max"`
	SubscriptionAnchor *time.Time `gorm:"type:timestamp;default:null" json:"subscription_anchor"`
	InitialSyncDone    bool       `gorm:"default:false" json:"initial_sync_done"`
	LastRefreshAt      *time.Time `gorm:"type:timestamp;default:null" json:"last_refresh_at"`
	RefreshCount       int        `gorm:"default:0" json:"refresh_count"`
	RefreshCycleKey    string     `gorm:"type:varchar(10)" json:"-"`
	TokensUsedToday    int64      `gorm:"default:0" json:"tokens_used_today"`
	TokensDate         string     `gorm:"type:varchar(10)" json:"-"`
	DailyTokenBudget   int64      `gorm:"default:50000" json:"daily_token_budget"`
	SyncEnabled        bool       `gorm:"default:true" json:"sync_enabled"`
	DevelopmentStore   bool       `gorm:"default:false" json:"development_store"`
	Whitelisted        bool       `gorm:"default:false" json:"whitelisted"`
	ProductCount       int        `gorm:"default:0" json:"product_count"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Products []Product `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Shop) Validate() error {
	v := validator.New()

	return v.Struct(s)
}

// CreateShop builds a new shop on the free plan and returns it together with
// the plaintext API key. The key is only available at creation time; the
// database stores its SHA-256 hash.
func CreateShop(name string, domain string, plan string) (*Shop, string, error) {
	apiKey, err := GenerateAPIKey()
	if err != nil {
		return nil, "", err
	}

	if plan == "" {
		plan = PLAN_FREE
	}

	s := &Shop{
		Name:             name,
		Domain:           domain,
		Plan:             plan,
		APIKeyHash:       HashAPIKey(apiKey),
		DailyTokenBudget: DefaultDailyTokenBudget,
		SyncEnabled:      true,
	}

	if err := s.Validate(); err != nil {
		return nil, "", err
	}

	return s, apiKey, nil
}

// GenerateAPIKey returns a 64 character hex API key.
func GenerateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashAPIKey returns the hex encoded SHA-256 hash stored for an API key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
