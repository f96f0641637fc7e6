package database

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sangkips/feedledger-api/internal/config"
	"github.com/sangkips/feedledger-api/internal/domain/entity"
	"github.com/sangkips/feedledger-api/pkg/utils"
	"gorm.io/gorm"
)

// SeedDefaultData seeds roles, permissions and the administrator account.
// It is safe to run repeatedly.
func SeedDefaultData(db *gorm.DB, admin config.AdminConfig) error {
	log.Println("Seeding default data...")

	permissions := map[string]entity.Permission{}
	for _, names := range entity.DefaultRolePermissions {
		for _, name := range names {
			if _, ok := permissions[name]; ok {
				continue
			}
			p := entity.Permission{Name: name}
			if err := db.Where(entity.Permission{Name: name}).FirstOrCreate(&p).Error; err != nil {
				return fmt.Errorf("seed permission %s: %w", name, err)
			}
			permissions[name] = p
		}
	}

	roles := map[string]entity.Role{}
	for roleName, names := range entity.DefaultRolePermissions {
		role := entity.Role{Name: roleName}
		if err := db.Where(entity.Role{Name: roleName}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", roleName, err)
		}

		perms := make([]entity.Permission, 0, len(names))
		for _, name := range names {
			perms = append(perms, permissions[name])
		}
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return fmt.Errorf("sync permissions for %s: %w", roleName, err)
		}
		roles[roleName] = role
	}

	if admin.Email == "" || admin.Password == "" {
		log.Println("Default data seeding completed (no admin configured)")
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(admin.Email))
	var existing entity.User
	err := db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		log.Printf("Admin user already exists: %s", email)
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, err := utils.HashPassword(admin.Password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		name := admin.Name
		if name == "" {
			name = "Administrator"
		}
		user := entity.User{
			Name:     name,
			Email:    email,
			Password: hashed,
			Roles:    []entity.Role{roles[entity.RoleAdmin]},
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		log.Printf("Admin user created: %s", email)
	default:
		return fmt.Errorf("look up admin user: %w", err)
	}

	log.Println("Default data seeding completed")
	return nil
}
