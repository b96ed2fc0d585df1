package config

import (
	"errors"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"p4b.in/bodyshop/models"
)

// SeedAdminUser ensures at least one login exists. Credentials come from
// ADMIN_EMAIL and ADMIN_PASSWORD; when either is unset the seeding is
// skipped, which is the normal case once real accounts exist.
func SeedAdminUser(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("⚠️ Admin seeding skipped: %v", err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("❌ Admin seeding failed: %v", err)
		return
	}

	admin := models.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("❌ Admin seeding failed: %v", err)
		return
	}
	log.Printf("✅ Seeded admin user %s", email)
}
