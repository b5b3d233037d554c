package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/gamevault/storefront/config"
	"github.com/gamevault/storefront/database/seeders"
	"github.com/gamevault/storefront/pkg/database"
	"github.com/gamevault/storefront/pkg/migration"
)

// bootDB loads config and opens the database.
func bootDB() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.Connect(); err != nil {
		return nil, err
	}
	return database.DB, nil
}

func withDB(fn func(cmd *cobra.Command, db *gorm.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		defer database.Close(db)
		return fn(cmd, db)
	}
}

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: withDB(func(cmd *cobra.Command, db *gorm.DB) error {
		return migration.New(db).WithOutput(cmd.OutOrStdout()).Run(cmd.Context())
	}),
}

// storefront migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: withDB(func(cmd *cobra.Command, db *gorm.DB) error {
		return migration.New(db).WithOutput(cmd.OutOrStdout()).Rollback(cmd.Context())
	}),
}

// storefront migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: withDB(func(cmd *cobra.Command, db *gorm.DB) error {
		return migration.New(db).WithOutput(cmd.OutOrStdout()).Status(cmd.Context())
	}),
}

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed genres and the admin account",
	RunE: withDB(func(cmd *cobra.Command, db *gorm.DB) error {
		if err := seeders.RunAll(cmd.Context(), db, cmd.OutOrStdout()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Seeding complete.")
		return nil
	}),
}
