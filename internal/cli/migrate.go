package cli

import (
	"fmt"
	"log"

	"github.com/sangkips/feedledger-api/internal/config"
	"github.com/sangkips/feedledger-api/internal/infrastructure/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("no-seed", false, "Skip seeding roles and the admin user")
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed default data",
	RunE: func(cmd *cobra.Command, args []string) error {
		noSeed, _ := cmd.Flags().GetBool("no-seed")
		cfg := config.Load()

		db, err := database.NewDB(&cfg.Database, cfg.App.Debug)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if err := prepare(db, cfg, !noSeed); err != nil {
			return err
		}

		log.Printf("Migrations applied to %s database", cfg.Database.Driver)
		return nil
	},
}

// prepare migrates the schema and, when seed is set, creates the default
// roles and admin user.
func prepare(db *gorm.DB, cfg *config.Config, seed bool) error {
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if !seed {
		return nil
	}
	if err := database.SeedDefaultData(db, cfg.Admin); err != nil {
		return fmt.Errorf("seed default data: %w", err)
	}
	return nil
}
