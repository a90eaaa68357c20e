// Command loadtags seeds the fixed tag set. Safe to re-run.
package main

import (
	"log"

	"github.com/nesterovv89/sharing-recipe-service/config"
	"github.com/nesterovv89/sharing-recipe-service/internal/database"
	"github.com/nesterovv89/sharing-recipe-service/internal/models"
)

var defaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#e8eb34", Slug: "breakfast"},
	{Name: "Lunch", Color: "#34eba8", Slug: "lunch"},
	{Name: "Dinner", Color: "#eb3480", Slug: "dinner"},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	for _, tag := range defaultTags {
		if !models.ValidHexColor(tag.Color) {
			log.Fatalf("Invalid color %q for tag %q", tag.Color, tag.Name)
		}
		t := tag
		if err := db.Where("slug = ?", tag.Slug).FirstOrCreate(&t).Error; err != nil {
			log.Fatalf("Failed to load tag %q: %v", tag.Name, err)
		}
	}
	log.Println("Tags loaded")
}
