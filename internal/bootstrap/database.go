package bootstrap

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"quizhub/internal/config"
	"quizhub/internal/models"
)

// MigrateAndSeed ensures required tables exist and inserts the administrator
// account if missing.
func MigrateAndSeed(db *gorm.DB, admin *config.AdminConfig) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	if err := seedAdmin(db, admin); err != nil {
		return fmt.Errorf("seed admin failed: %w", err)
	}
	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Subject{},
		&models.Chapter{},
		&models.Quiz{},
		&models.Question{},
		&models.Score{},
	}
}

// seedAdmin creates the administrator on first boot. An existing account with
// the configured email is left untouched, so password rotation goes through
// the database, not the environment.
func seedAdmin(db *gorm.DB, admin *config.AdminConfig) error {
	if admin.Email == "" || admin.Password == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", admin.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Email:        admin.Email,
		Name:         admin.Name,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
	}).Error
}
