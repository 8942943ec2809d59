package database

import (
	"fmt"
	"log"
	"time"

	"github.com/avast/retry-go/v4"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

var DB *gorm.DB

// GetDB returns the shared connection. SetupDatabase must have run.
func GetDB() *gorm.DB {
	return DB
}

// DSN builds the MySQL data source name from the DB_* environment.
func DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		env.GetEnv("DB_USER", ""),
		env.GetEnv("DB_PASSWORD", ""),
		env.GetEnv("DB_HOST", "127.0.0.1"),
		env.GetEnv("DB_PORT", "3306"),
		env.GetEnv("DB_NAME", ""),
	)
}

func SetupDatabase() {
	dsn := DSN()

	err := retry.Do(
		func() error {
			db, err := gorm.Open(mysql.New(mysql.Config{
				DSN:                       dsn,
				DefaultStringSize:         256,
				DisableDatetimePrecision:  true,
				DontSupportRenameIndex:    true,
				DontSupportRenameColumn:   true,
				SkipInitializeWithVersion: false,
			}), &gorm.Config{TranslateError: true})
			if err != nil {
				return err
			}
			DB = db
			return nil
		},
		retry.Attempts(maxRetries),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("Failed to connect to database (try %d/%d): %v", n+1, maxRetries, err)
		}),
	)
	if err != nil {
		panic(err)
	}

	// schema changes ship as SQL migrations in production, see cmd/migrate
	if env.IsDev() {
		if err := AutoMigrate(DB); err != nil {
			panic(err)
		}
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.CurriculumBlock{},
		&models.Video{},
		&models.Quiz{},
		&models.Question{},
		&models.QuizResult{},
		&models.Event{},
		&models.SubTraining{},
		&models.Enrollment{},
		&models.Order{},
		&models.PaymentCallbackEvent{},
	)
}
