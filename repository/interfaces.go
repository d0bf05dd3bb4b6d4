package repository

import (
	"github.com/lanehall/celebbackend/models"
)

// RecordRepositoryInterface defines the methods for record data operations
type RecordRepositoryInterface interface {
	ListAll() ([]models.Record, error)
	GetByID(id uint) (*models.Record, error)
	Replace(id uint, fields map[string]string) (*models.Record, error)
	Remove(id uint) error
}
