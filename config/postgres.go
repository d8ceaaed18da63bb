package config

import (
	"errors"
	"time"

	"github.com/yoockh/wacrm/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var PostgresDB *gorm.DB

func InitPostgres(opts PostgresOptions) error {
	if opts.URI == "" {
		return errors.New("POSTGRES_URI environment variable is not set")
	}
	db, err := gorm.Open(postgres.Open(opts.URI), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// timestamptz keeps microseconds
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	PostgresDB = db
	return nil
}

// Migrate creates or updates every table the service reads or writes.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("postgres is not initialised; call InitPostgres() first")
	}
	return db.AutoMigrate(
		&models.Contact{},
		&models.Template{},
		&models.AIProfile{},
		&models.TrainingRecord{},
		&models.ChatSession{},
		&models.Message{},
		&models.ApiCredential{},
		&models.UserPreference{},
	)
}
