package repository

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/lanehall/celebbackend/models"
)

// RecordRepository handles database operations for Record entities
type RecordRepository struct {
	DB *gorm.DB
}

// NewRecordRepository creates a new instance of RecordRepository
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{DB: db}
}

// ListAll retrieves every record in seed order
func (r *RecordRepository) ListAll() ([]models.Record, error) {
	var records []models.Record
	err := r.DB.Order("position ASC").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// GetByID retrieves a record by its ID
func (r *RecordRepository) GetByID(id uint) (*models.Record, error) {
	var record models.Record
	err := r.DB.First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get record by ID %d: %w", id, err)
	}
	return &record, nil
}

// Replace merges the given editable field values into the record matching
// id and returns the updated row. Fields absent from the map are left
// unchanged; fields outside the editable set are ignored. Returns
// gorm.ErrRecordNotFound when no such id exists.
func (r *RecordRepository) Replace(id uint, fields map[string]string) (*models.Record, error) {
	updates := map[string]interface{}{}
	for field, value := range fields {
		if !models.IsEditable(field) {
			continue
		}
		updates[field] = value
	}

	if len(updates) > 0 {
		result := r.DB.Model(&models.Record{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update record ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}

	return r.GetByID(id)
}

// Remove deletes the record matching id. A missing id is not an error:
// the deletion workflow only ever targets ids taken from the current
// list, so absence degrades to a logged no-op.
func (r *RecordRepository) Remove(id uint) error {
	result := r.DB.Delete(&models.Record{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete record ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		log.Printf("Remove: record ID %d already absent, nothing to do", id)
	}
	return nil
}
