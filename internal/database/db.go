package database

import (
	"errors"
	"fmt"
	"time"

	"nok-landing/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("database: запись не найдена")

const (
	maxAttempts  = 10
	attemptDelay = 2 * time.Second
)

// Open подключается к Postgres с повторами: база в docker-compose поднимается дольше приложения.
func Open(dsn string, log *logrus.Entry) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	for i := 1; i <= maxAttempts; i++ {
		log.Infof("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			log.Info("connected to DB successfully")
			return db, nil
		}

		log.WithError(err).Warn("failed to connect to DB")
		time.Sleep(attemptDelay)
	}

	return nil, fmt.Errorf("database: failed to connect after %d attempts: %w", maxAttempts, err)
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.ApplicationSubmission{},
		&models.SubmissionEvent{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("database: failed to migrate: %w", err)
	}
	return nil
}

// SeedAdmin создаёт администратора из конфига, если админа ещё нет.
// Пустой пароль: админка без пользователей, создавать некого.
func SeedAdmin(db *gorm.DB, username, password string, log *logrus.Entry) error {
	if password == "" {
		log.Warn("ADMIN_PASSWORD is not set, admin user is not created")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("database: failed to check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("database: failed to hash admin password: %w", err)
	}

	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("database: failed to create admin: %w", err)
	}

	log.WithField("username", username).Info("created default admin user")
	return nil
}
