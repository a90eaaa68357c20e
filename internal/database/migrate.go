package database

import (
	"gorm.io/gorm"

	"github.com/nesterovv89/sharing-recipe-service/internal/models"
)

// RunMigrations brings the schema up to date. The composite unique indexes
// created here are hard guarantees, not application-level checks.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartEntry{},
	)
}
