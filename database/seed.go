package database

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/lanehall/celebbackend/models"
)

// SeedRecords loads the initial roster from a JSON file into an empty
// database. The file holds an ordered array of records; their order in the
// file becomes the list order. Seeding is skipped when the table already
// has rows (a file-backed DSN that survived a previous run).
func SeedRecords(db *gorm.DB, path string) error {
	var count int64
	if err := db.Model(&models.Record{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count existing records: %w", err)
	}
	if count > 0 {
		log.Printf("Seed skipped: %d record(s) already present", count)
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: seed file %s not found, starting with an empty roster", path)
			return nil
		}
		return fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var records []models.Record
	if err := json.Unmarshal(content, &records); err != nil {
		return fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for i := range records {
		records[i].Position = i + 1
	}

	if len(records) > 0 {
		if err := db.Create(&records).Error; err != nil {
			return fmt.Errorf("failed to insert seed records: %w", err)
		}
	}

	log.Printf("Seeded %d record(s) from %s", len(records), path)
	return nil
}
