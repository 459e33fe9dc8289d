package repository

import (
	"github.com/AmeyBarve/CivicTrack/app/models"
	"gorm.io/gorm"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Create creates a new report in the database
func (r *reportRepository) Create(report *models.Report) error {
	return r.db.Create(report).Error
}

// GetByID retrieves a report by its ID
func (r *reportRepository) GetByID(id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetByUUID retrieves a report by its public UUID
func (r *reportRepository) GetByUUID(uuid string) (*models.Report, error) {
	var report models.Report
	err := r.db.Where("uuid = ?", uuid).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List retrieves all reports in storage order (id ascending). Presentation
// ordering such as newest-first is the caller's concern.
func (r *reportRepository) List() ([]models.Report, error) {
	var reports []models.Report
	err := r.db.Order("id ASC").Find(&reports).Error
	return reports, err
}

// UpdateStatusGuard atomically overwrites the status of a report, guarded by
// the expected current status.
func (r *reportRepository) UpdateStatusGuard(id uint, from, to string) (int64, error) {
	res := r.db.Model(&models.Report{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// Delete soft deletes a report by its ID
func (r *reportRepository) Delete(id uint) (int64, error) {
	res := r.db.Delete(&models.Report{}, id)
	return res.RowsAffected, res.Error
}

// Count returns the total number of reports
func (r *reportRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Report{}).Count(&count).Error
	return count, err
}
