// Package migrations registers the storefront schema. Import it for side
// effects wherever migrations run.
package migrations

import (
	"gorm.io/gorm"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/pkg/migration"
)

func init() {
	migration.Register("20240101000000_create_genres_table", &CreateGenresTable{})
	migration.Register("20240101000001_create_products_table", &CreateProductsTable{})
	migration.Register("20240101000002_create_users_table", &CreateUsersTable{})
}

type CreateGenresTable struct{}

func (m *CreateGenresTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Genre{})
}

func (m *CreateGenresTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Genre{})
}

// CreateProductsTable also creates the product_genres join table.
type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("product_genres", &models.Product{})
}

type CreateUsersTable struct{}

func (m *CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (m *CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.User{})
}
