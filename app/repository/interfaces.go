package repository

import (
	"github.com/AmeyBarve/CivicTrack/app/models"
	"gorm.io/gorm"
)

// ReportRepository defines the interface for report-related database operations.
// Every mutation must be fully persisted before the call returns; reads always
// reflect the most recent completed write.
type ReportRepository interface {
	Create(report *models.Report) error
	GetByID(id uint) (*models.Report, error)
	GetByUUID(uuid string) (*models.Report, error)
	List() ([]models.Report, error)
	// UpdateStatusGuard overwrites the status only when the stored status still
	// equals from, and returns the number of rows affected. Zero rows on an
	// existing report means the guard rejected a concurrent or invalid change.
	UpdateStatusGuard(id uint, from, to string) (int64, error)
	Delete(id uint) (int64, error)
	Count() (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Report ReportRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Report: NewReportRepository(db),
	}
}
