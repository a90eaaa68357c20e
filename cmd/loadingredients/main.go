// Command loadingredients populates the Ingredient reference data from a CSV
// file of "name,measurement_unit" rows. It is a one-shot loader, not part of
// the request path; rows already present are left untouched.
package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"

	"github.com/nesterovv89/sharing-recipe-service/config"
	"github.com/nesterovv89/sharing-recipe-service/internal/database"
	"github.com/nesterovv89/sharing-recipe-service/internal/models"
)

func main() {
	path := flag.String("file", "data/ingredients.csv", "path to the ingredients CSV file")
	flag.Parse()

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

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	loaded := 0
	for _, row := range records {
		if len(row) != 2 {
			log.Printf("Skipping malformed row: %v", row)
			continue
		}
		ingredient := models.Ingredient{Name: row[0], MeasurementUnit: row[1]}
		res := db.Where("name = ? AND measurement_unit = ?", row[0], row[1]).
			FirstOrCreate(&ingredient)
		if res.Error != nil {
			log.Fatalf("Failed to load ingredient %q: %v", row[0], res.Error)
		}
		loaded += int(res.RowsAffected)
	}

	log.Printf("Ingredients loaded: %d new, %d rows total in file", loaded, len(records))
}
