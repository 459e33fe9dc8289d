package controllers

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/AmeyBarve/CivicTrack/internal/pkg/escalation"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/exifloc"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/reporting"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/upload"
)

// ReportController exposes the report pipeline over HTTP.
type ReportController struct {
	svc *reporting.Service
}

// NewReportController creates a report controller backed by the given service.
func NewReportController(svc *reporting.Service) *ReportController {
	return &ReportController{svc: svc}
}

// HandleSubmitReport handles POST /api/v1/reports (multipart form-data).
// Expected fields: image (file), latitude, longitude, issue_description.
// Coordinates missing from the form fall back to the photo's EXIF geotag.
func (rc *ReportController) HandleSubmitReport(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": "image file is required",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		fiberlog.Errorf("[Report] error opening uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}
	imageBytes, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		fiberlog.Errorf("[Report] error reading uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}

	head := imageBytes
	if len(head) > 512 {
		head = head[:512]
	}
	if _, err := upload.ValidateImageBySniff(fileHeader.Filename, head); err != nil {
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
			"error":   "unsupported_media_type",
			"message": err.Error(),
		})
	}

	latitude := parseCoordinate(c.FormValue("latitude"))
	longitude := parseCoordinate(c.FormValue("longitude"))
	if latitude == nil || longitude == nil {
		// Phones geotag the photo itself; use that when the form has no fix.
		if lat, lon, ok := exifloc.FromImage(bytes.NewReader(imageBytes)); ok {
			latitude, longitude = &lat, &lon
		}
	}

	ipv4, ipv6 := GetClientIP(c)
	report, err := rc.svc.Submit(c.Context(), reporting.SubmitInput{
		ImageFilename:    fileHeader.Filename,
		Image:            bytes.NewReader(imageBytes),
		Latitude:         latitude,
		Longitude:        longitude,
		IssueDescription: c.FormValue("issue_description"),
		ReporterIPv4:     ipv4,
		ReporterIPv6:     ipv6,
	})
	if err != nil {
		var verr *reporting.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "validation_failed",
				"message": verr.Error(),
				"fields":  verr.Fields,
			})
		}
		fiberlog.Errorf("[Report] submission failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_error",
			"message": "an error occurred while processing your report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Report submitted successfully!",
		"report":  report,
	})
}

// HandleListReports handles GET /api/v1/reports.
func (rc *ReportController) HandleListReports(c *fiber.Ctx) error {
	reports, err := rc.svc.List(c.Context())
	if err != nil {
		fiberlog.Errorf("[Report] listing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}
	return c.JSON(reports)
}

// HandleGetReport handles GET /api/v1/reports/:id.
func (rc *ReportController) HandleGetReport(c *fiber.Ctx) error {
	id, ok := parseReportID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid report id"})
	}

	report, err := rc.svc.Get(c.Context(), id)
	if err != nil {
		return rc.mapError(c, err)
	}
	return c.JSON(report)
}

// HandleResolveReport handles PUT /api/v1/reports/:id/resolve.
func (rc *ReportController) HandleResolveReport(c *fiber.Ctx) error {
	id, ok := parseReportID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid report id"})
	}

	report, err := rc.svc.Resolve(c.Context(), id)
	if err != nil {
		return rc.mapError(c, err)
	}
	return c.JSON(report)
}

// HandleReopenReport handles PUT /api/v1/reports/:id/reopen.
func (rc *ReportController) HandleReopenReport(c *fiber.Ctx) error {
	id, ok := parseReportID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid report id"})
	}

	report, err := rc.svc.Reopen(c.Context(), id)
	if err != nil {
		return rc.mapError(c, err)
	}
	return c.JSON(report)
}

// HandleDeleteReport handles DELETE /api/v1/reports/:id.
func (rc *ReportController) HandleDeleteReport(c *fiber.Ctx) error {
	id, ok := parseReportID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid report id"})
	}

	if err := rc.svc.Delete(c.Context(), id); err != nil {
		return rc.mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleEscalationDraft handles GET /api/v1/reports/:id/escalation. It
// returns the pre-filled intervention request for the report's officials.
func (rc *ReportController) HandleEscalationDraft(c *fiber.Ctx) error {
	id, ok := parseReportID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid report id"})
	}

	report, err := rc.svc.Get(c.Context(), id)
	if err != nil {
		return rc.mapError(c, err)
	}

	draft, err := escalation.ComposeEscalation(report)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "not_escalatable",
			"message": err.Error(),
		})
	}
	return c.JSON(draft)
}

// HandleEscalateReport handles POST /api/v1/reports/:id/escalate: compose
// the draft and deliver it via the configured SMTP relay.
func (rc *ReportController) HandleEscalateReport(c *fiber.Ctx) error {
	id, ok := parseReportID(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid report id"})
	}

	report, err := rc.svc.Get(c.Context(), id)
	if err != nil {
		return rc.mapError(c, err)
	}

	draft, err := escalation.ComposeEscalation(report)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "not_escalatable",
			"message": err.Error(),
		})
	}

	if err := escalation.Send(draft); err != nil {
		if errors.Is(err, escalation.ErrSMTPNotConfigured) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   "smtp_not_configured",
				"message": "outbound mail is not configured; use the draft endpoint instead",
			})
		}
		fiberlog.Errorf("[Report] escalation send failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"message": "Escalation sent"})
}

func (rc *ReportController) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, reporting.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": "report not found",
		})
	case errors.Is(err, reporting.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "invalid_transition",
			"message": "the requested status change is not allowed",
		})
	default:
		fiberlog.Errorf("[Report] operation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_error"})
	}
}

func parseReportID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func parseCoordinate(raw string) *float64 {
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &val
}
