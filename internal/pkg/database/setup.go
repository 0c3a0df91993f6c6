package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/pairsell/pairsell/app/models"
	"github.com/pairsell/pairsell/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

var DB *gorm.DB

func SetupDatabase() {
	var err error
	// "user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local"
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)

	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,   // data source name
			DefaultStringSize:         256,   // default size for string fields
			DisableDatetimePrecision:  true,  // disable datetime precision, which not supported before MySQL 5.6
			DontSupportRenameIndex:    true,  // drop & create when rename index, rename index not supported before MySQL 5.7, MariaDB
			DontSupportRenameColumn:   true,  // `change` when rename column, rename column not supported before MySQL 8, MariaDB
			SkipInitializeWithVersion: false, // auto configure based on currently MySQL version
		}), &gorm.Config{})
		if err == nil {
			DB.AutoMigrate(
				&models.Shop{},
				&models.Product{},
				&models.Recommendation{},
				&models.GlobalQuota{},
				&models.SyncRun{},
			)

			seedGlobalQuota()

			return
		}

		log.Printf("Failed to connect to database (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			log.Printf("Retry in %v...", retryDelay)
			time.Sleep(retryDelay)
		}
	}

	if err != nil {
		panic(err)
	}
}

// GetDB returns the global database handle
func GetDB() *gorm.DB {
	return DB
}

// seedGlobalQuota makes sure the singleton quota row exists so the ledger can
// lock it. The budget itself stays operator controlled after the first boot.
func seedGlobalQuota() {
	var count int64
	if err := DB.Model(&models.GlobalQuota{}).Count(&count).Error; err != nil {
		log.Printf("Failed to check global quota row: %v", err)
		return
	}
	if count > 0 {
		return
	}
	quota := models.GlobalQuota{
		ID:               1,
		DailyTokenBudget: models.DefaultGlobalDailyTokenBudget,
		TokensUsedToday:  0,
		ResetDate:        time.Now().UTC().Format("2006-01-02"),
	}
	if err := DB.Create(&quota).Error; err != nil {
		log.Printf("Failed to seed global quota row: %v", err)
	}
}
