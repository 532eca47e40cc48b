package database

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cryptobot/src/model"
)

// MainDB is the primary read/write database connection used by the
// application. Call InitMainDB once at startup before using it.
var MainDB *gorm.DB

// InitMainDB opens the database and runs migrations. A postgres:// URL
// gets the postgres driver; anything else is treated as a sqlite path so
// local runs need no server.
func InitMainDB() error {
	config := GetConfig()

	var dialector gorm.Dialector
	if strings.HasPrefix(config.DatabaseURL, "postgres://") || strings.HasPrefix(config.DatabaseURL, "postgresql://") {
		dialector = postgres.Open(config.DatabaseURL)
	} else {
		dialector = sqlite.Open(config.DatabaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	if err := db.AutoMigrate(
		&model.Bar{},
		&model.Strategy{},
		&model.Trade{},
		&model.ExchangeCredential{},
	); err != nil {
		return err
	}

	MainDB = db
	logrus.Info("[database] MainDB connection established")
	return nil
}
