package reporting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/AmeyBarve/CivicTrack/app/models"
	"github.com/AmeyBarve/CivicTrack/app/repository"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/storage"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/thumbnail"
)

// Geocoder resolves coordinates to a display address. An empty address with
// a nil error means the service had no usable result.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// Resolver maps a display address to the responsible officials, or nil.
type Resolver func(address string) *models.CivicData

// Service orchestrates the report pipeline: validate, enrich (best-effort),
// persist, and drive the status lifecycle.
type Service struct {
	repo     repository.ReportRepository
	geocoder Geocoder
	resolve  Resolver
	blobs    storage.Store
	validate *validator.Validate
}

// NewService wires a report service from its collaborators.
func NewService(repo repository.ReportRepository, geocoder Geocoder, resolve Resolver, blobs storage.Store) *Service {
	return &Service{
		repo:     repo,
		geocoder: geocoder,
		resolve:  resolve,
		blobs:    blobs,
		validate: validator.New(),
	}
}

// SubmitInput is a raw citizen submission. Latitude/Longitude are pointers
// so a missing coordinate is distinguishable from 0°.
type SubmitInput struct {
	ImageFilename    string    `validate:"required"`
	Image            io.Reader `validate:"required"`
	Latitude         *float64  `validate:"required"`
	Longitude        *float64  `validate:"required"`
	IssueDescription string    `validate:"required"`
	ReporterIPv4     string
	ReporterIPv6     string
}

// Submit runs the full enrichment pipeline and persists the report.
//
// Geocoding is a best-effort step: a failed or empty lookup degrades the
// record to a null address (and therefore null civic data) but never aborts
// the submission — the citizen's photo and location evidence always survive.
// No store mutation happens, and no lock is held, while the external lookup
// is in flight.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*models.Report, error) {
	if err := s.validateSubmission(in); err != nil {
		return nil, err
	}

	var address *string
	displayName, err := s.geocoder.ReverseGeocode(ctx, *in.Latitude, *in.Longitude)
	if err != nil {
		fiberlog.Warnf("[Reporting] reverse geocoding failed, continuing without address: %v", err)
	} else if displayName != "" {
		address = &displayName
	}

	var civicData *models.CivicData
	if address != nil {
		civicData = s.resolve(*address)
	}

	reportUUID := uuid.New().String()
	fileName := reportUUID + strings.ToLower(filepath.Ext(in.ImageFilename))
	if _, err := s.blobs.Save(in.Image, fileName); err != nil {
		return nil, fmt.Errorf("failed to store report image: %w", err)
	}

	report := &models.Report{
		UUID:             reportUUID,
		Latitude:         *in.Latitude,
		Longitude:        *in.Longitude,
		Address:          address,
		IssueDescription: in.IssueDescription,
		ImageFile:        fileName,
		ThumbnailFile:    s.generateThumbnail(fileName),
		CivicData:        civicData,
		Status:           models.StatusReported,
		ReporterIPv4:     in.ReporterIPv4,
		ReporterIPv6:     in.ReporterIPv6,
	}

	if err := s.repo.Create(report); err != nil {
		// The caller must not be told the record survived when it didn't.
		if delErr := s.blobs.Delete(fileName); delErr != nil {
			fiberlog.Warnf("[Reporting] failed to clean up blob after create error: %v", delErr)
		}
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	return report, nil
}

// generateThumbnail writes a dashboard preview next to the original. It is
// best-effort; a failure leaves the report without a thumbnail.
func (s *Service) generateThumbnail(fileName string) string {
	srcPath := s.blobs.Path(fileName)
	if srcPath == "" {
		// remote backend without a local path
		return ""
	}
	thumbName := filepath.Join("thumbs", fileName)
	dstPath := s.blobs.Path(thumbName)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		fiberlog.Warnf("[Reporting] failed to create thumbnail directory: %v", err)
		return ""
	}
	if err := thumbnail.Generate(srcPath, dstPath); err != nil {
		fiberlog.Warnf("[Reporting] thumbnail generation failed for %s: %v", fileName, err)
		return ""
	}
	return thumbName
}

func (s *Service) validateSubmission(in SubmitInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// List returns all reports in storage order. Newest-first ordering is the
// dashboard's concern, not the store's.
func (s *Service) List(ctx context.Context) ([]models.Report, error) {
	_ = ctx
	return s.repo.List()
}

// Get returns a single report by id.
func (s *Service) Get(ctx context.Context, id uint) (*models.Report, error) {
	_ = ctx
	return s.getExisting(id)
}

// Transition moves a report to the target status. Only the transitions in
// the lifecycle table are accepted; everything else — including a no-op to
// the current status — fails with ErrInvalidTransition.
func (s *Service) Transition(ctx context.Context, id uint, target string) (*models.Report, error) {
	_ = ctx
	if !models.IsValidStatus(target) {
		return nil, ErrInvalidTransition
	}

	report, err := s.getExisting(id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(report.Status, target) {
		return nil, ErrInvalidTransition
	}

	affected, err := s.repo.UpdateStatusGuard(id, report.Status, target)
	if err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}
	if affected == 0 {
		// Guard rejected the write: either the report vanished or a
		// concurrent transition already moved it.
		if _, err := s.getExisting(id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	return s.getExisting(id)
}

// Resolve marks a reported issue as fixed.
func (s *Service) Resolve(ctx context.Context, id uint) (*models.Report, error) {
	return s.Transition(ctx, id, models.StatusResolved)
}

// Reopen puts a resolved issue back into the reported state.
func (s *Service) Reopen(ctx context.Context, id uint) (*models.Report, error) {
	return s.Transition(ctx, id, models.StatusReported)
}

// Delete removes a report and its stored blobs.
func (s *Service) Delete(ctx context.Context, id uint) error {
	_ = ctx
	report, err := s.getExisting(id)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	// Blob cleanup is best-effort; the record is already gone.
	if err := s.blobs.Delete(report.ImageFile); err != nil {
		fiberlog.Warnf("[Reporting] failed to delete image blob %s: %v", report.ImageFile, err)
	}
	if report.ThumbnailFile != "" {
		if err := s.blobs.Delete(report.ThumbnailFile); err != nil {
			fiberlog.Warnf("[Reporting] failed to delete thumbnail %s: %v", report.ThumbnailFile, err)
		}
	}
	return nil
}

func (s *Service) getExisting(id uint) (*models.Report, error) {
	report, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return report, nil
}
