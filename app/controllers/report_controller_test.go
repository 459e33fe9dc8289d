package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AmeyBarve/CivicTrack/app/models"
	"github.com/AmeyBarve/CivicTrack/app/repository"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/jurisdiction"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/reporting"
)

// jpegBytes carries a JPEG magic number so content sniffing accepts it.
var jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}, bytes.Repeat([]byte{0x00}, 64)...)

type stubGeocoder struct {
	mu      sync.Mutex
	address string
	err     error
}

func (g *stubGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.address, g.err
}

func (g *stubGeocoder) setAddress(address string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.address = address
}

type fakeBlobStore struct {
	mu    sync.Mutex
	saved map[string][]byte
}

func (f *fakeBlobStore) Save(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[filename] = data
	return filename, nil
}

func (f *fakeBlobStore) Delete(filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, filename)
	return nil
}

func (f *fakeBlobStore) Path(filename string) string { return "" }

func newTestApp(t *testing.T) (*fiber.App, *stubGeocoder) {
	t.Helper()

	geo := &stubGeocoder{address: "MG Road, Pune, Maharashtra, India"}
	svc := reporting.NewService(repository.NewMemoryReportRepository(), geo, jurisdiction.Resolve, &fakeBlobStore{})
	rc := NewReportController(svc)

	app := fiber.New()
	v1 := app.Group("/api/v1")
	v1.Post("/reports", rc.HandleSubmitReport)
	v1.Get("/reports", rc.HandleListReports)
	v1.Get("/reports/:id", rc.HandleGetReport)
	v1.Put("/reports/:id/resolve", rc.HandleResolveReport)
	v1.Put("/reports/:id/reopen", rc.HandleReopenReport)
	v1.Delete("/reports/:id", rc.HandleDeleteReport)
	v1.Get("/reports/:id/escalation", rc.HandleEscalationDraft)
	return app, geo
}

func newSubmitRequest(t *testing.T, filename string, fileContent []byte, fields map[string]string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func defaultFields() map[string]string {
	return map[string]string{
		"latitude":          "18.5204",
		"longitude":         "73.8567",
		"issue_description": "Large pothole near the bus stop",
	}
}

func submitReport(t *testing.T, app *fiber.App) map[string]any {
	t.Helper()

	resp, err := app.Test(newSubmitRequest(t, "pothole.jpg", jpegBytes, defaultFields()), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Report map[string]any `json:"report"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NotNil(t, payload.Report)
	return payload.Report
}

func TestSubmitReport_Success(t *testing.T) {
	app, _ := newTestApp(t)

	req := newSubmitRequest(t, "pothole.jpg", jpegBytes, defaultFields())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Message string `json:"message"`
		Report  struct {
			ID               uint              `json:"id"`
			UUID             string            `json:"uuid"`
			Address          *string           `json:"address"`
			IssueDescription string            `json:"issue_description"`
			Status           string            `json:"status"`
			Latitude         float64           `json:"latitude"`
			CivicData        *models.CivicData `json:"civic_data"`
		} `json:"report"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))

	assert.Equal(t, "Report submitted successfully!", payload.Message)
	assert.NotZero(t, payload.Report.ID)
	assert.NotEmpty(t, payload.Report.UUID)
	assert.Equal(t, models.StatusReported, payload.Report.Status)
	assert.Equal(t, 18.5204, payload.Report.Latitude)
	require.NotNil(t, payload.Report.Address)
	assert.Equal(t, "MG Road, Pune, Maharashtra, India", *payload.Report.Address)
	require.NotNil(t, payload.Report.CivicData)
	assert.Equal(t, "Pune Municipal Corporation (PMC)", payload.Report.CivicData.MunicipalCorporation)
}

func TestSubmitReport_ValidationFailures(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    []byte
		mutate     func(map[string]string)
		wantStatus int
	}{
		{
			name:       "missing image",
			filename:   "",
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "missing description",
			filename:   "pothole.jpg",
			content:    jpegBytes,
			mutate:     func(f map[string]string) { delete(f, "issue_description") },
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "missing coordinates without exif",
			filename:   "pothole.jpg",
			content:    jpegBytes,
			mutate:     func(f map[string]string) { delete(f, "latitude"); delete(f, "longitude") },
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "disallowed extension",
			filename:   "pothole.pdf",
			content:    jpegBytes,
			wantStatus: fiber.StatusUnsupportedMediaType,
		},
		{
			name:       "html masquerading as image",
			filename:   "pothole.jpg",
			content:    []byte("<html><body><script>alert(1)</script></body></html>"),
			wantStatus: fiber.StatusUnsupportedMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t)

			fields := defaultFields()
			if tt.mutate != nil {
				tt.mutate(fields)
			}
			resp, err := app.Test(newSubmitRequest(t, tt.filename, tt.content, fields), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestListAndGetReports(t *testing.T) {
	app, _ := newTestApp(t)

	first := submitReport(t, app)
	second := submitReport(t, app)
	assert.NotEqual(t, first["uuid"], second["uuid"])

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listed []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed, 2)
	assert.Equal(t, first["uuid"], listed[0]["uuid"])
	assert.Equal(t, second["uuid"], listed[1]["uuid"])

	getURL := fmt.Sprintf("/api/v1/reports/%v", first["id"])
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, getURL, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports/9999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/reports/abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReportLifecycleOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)
	report := submitReport(t, app)
	base := fmt.Sprintf("/api/v1/reports/%v", report["id"])

	do := func(method, url string) *http.Response {
		resp, err := app.Test(httptest.NewRequest(method, url, nil), -1)
		require.NoError(t, err)
		return resp
	}

	resp := do(http.MethodPut, base+"/resolve")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var resolved map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&resolved))
	assert.Equal(t, models.StatusResolved, resolved["status"])

	// Resolving twice is a conflict, not an idempotent no-op.
	resp = do(http.MethodPut, base+"/resolve")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = do(http.MethodPut, base+"/reopen")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var reopened map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reopened))
	assert.Equal(t, models.StatusReported, reopened["status"])

	resp = do(http.MethodPut, base+"/reopen")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = do(http.MethodPut, "/api/v1/reports/9999/resolve")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteReportOverHTTP(t *testing.T) {
	app, _ := newTestApp(t)
	report := submitReport(t, app)
	base := fmt.Sprintf("/api/v1/reports/%v", report["id"])

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, base, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, base, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, base, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestEscalationDraftOverHTTP(t *testing.T) {
	app, geo := newTestApp(t)

	report := submitReport(t, app)
	url := fmt.Sprintf("/api/v1/reports/%v/escalation", report["id"])
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, url, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var draft struct {
		Recipients []string `json:"recipients"`
		Subject    string   `json:"subject"`
		Body       string   `json:"body"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&draft))
	assert.NotEmpty(t, draft.Recipients)
	assert.Contains(t, draft.Body, "MG Road, Pune")
	assert.Contains(t, draft.Body, "Pune Municipal Corporation (PMC)")

	// A report with no resolvable address has nobody to write to.
	geo.setAddress("")
	bare := submitReport(t, app)
	url = fmt.Sprintf("/api/v1/reports/%v/escalation", bare["id"])
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, url, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
