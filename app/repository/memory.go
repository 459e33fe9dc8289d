package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AmeyBarve/CivicTrack/app/models"
)

// memoryReportRepository is an in-memory ReportRepository. It backs tests and
// local development without a database; a single mutex serializes mutations
// the same way the MySQL backend serializes them per row.
type memoryReportRepository struct {
	mu      sync.Mutex
	nextID  uint
	reports map[uint]models.Report
}

// NewMemoryReportRepository creates an empty in-memory report repository.
func NewMemoryReportRepository() ReportRepository {
	return &memoryReportRepository{
		nextID:  1,
		reports: make(map[uint]models.Report),
	}
}

func (r *memoryReportRepository) Create(report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Mirror the BeforeCreate hook the GORM backend runs.
	if report.UUID == "" {
		report.UUID = uuid.New().String()
	}
	if report.Status == "" {
		report.Status = models.StatusReported
	}
	report.ID = r.nextID
	r.nextID++
	now := time.Now()
	report.CreatedAt = now
	report.UpdatedAt = now

	r.reports[report.ID] = *report
	return nil
}

func (r *memoryReportRepository) GetByID(id uint) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &report, nil
}

func (r *memoryReportRepository) GetByUUID(id string) (*models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, report := range r.reports {
		if report.UUID == id {
			report := report
			return &report, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryReportRepository) List() ([]models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reports := make([]models.Report, 0, len(r.reports))
	for _, report := range r.reports {
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID < reports[j].ID })
	return reports, nil
}

func (r *memoryReportRepository) UpdateStatusGuard(id uint, from, to string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.reports[id]
	if !ok || report.Status != from {
		return 0, nil
	}
	report.Status = to
	report.UpdatedAt = time.Now()
	r.reports[id] = report
	return 1, nil
}

func (r *memoryReportRepository) Delete(id uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reports[id]; !ok {
		return 0, nil
	}
	delete(r.reports, id)
	return 1, nil
}

func (r *memoryReportRepository) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.reports)), nil
}
