// seed-admin creates or reactivates the back-office SUPER_ADMIN user.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// Username and password come from SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD;
// the password is required so no default credential ever ships.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"bitbucket.org/thehouseplantstore/shop_backend/config"
	"bitbucket.org/thehouseplantstore/shop_backend/models"
	"bitbucket.org/thehouseplantstore/shop_backend/utils"
	"gorm.io/gorm"
)

const defaultUsername = "storeAdmin"

func main() {
	ctx := context.Background()

	username := os.Getenv("SEED_ADMIN_USERNAME")
	if username == "" {
		username = defaultUsername
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "SEED_ADMIN_PASSWORD is required")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	if err := models.MigrateDatabase(); err != nil {
		fmt.Fprintf(os.Stderr, "auto-migrate failed: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}

		user, err := models.CreateUser(ctx, &models.NewUser{
			Username: username,
			Password: password,
			Name:     "Store Admin",
			Role:     models.UserRoleSuperAdmin,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created admin user %q (id=%d)\n", username, user.ID)
		return
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	active := true
	updates := map[string]interface{}{
		"password":  hashed,
		"role":      models.UserRoleSuperAdmin,
		"is_active": &active,
	}
	if err := db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("updated admin user %q (id=%d)\n", username, existing.ID)
}
