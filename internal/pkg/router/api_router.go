package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/AmeyBarve/CivicTrack/app/controllers"
	"github.com/AmeyBarve/CivicTrack/app/repository"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/cache"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/env"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/geocode"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/jurisdiction"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/reporting"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/statistics"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/storage"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from the CivicTrack api",
		})
	})

	rc := controllers.NewReportController(newReportService())

	v1 := api.Group("/v1")
	v1.Post("/reports", rc.HandleSubmitReport)
	v1.Get("/reports", rc.HandleListReports)
	v1.Get("/reports/:id", rc.HandleGetReport)
	v1.Put("/reports/:id/resolve", rc.HandleResolveReport)
	v1.Put("/reports/:id/reopen", rc.HandleReopenReport)
	v1.Delete("/reports/:id", rc.HandleDeleteReport)
	v1.Get("/reports/:id/escalation", rc.HandleEscalationDraft)
	v1.Post("/reports/:id/escalate", rc.HandleEscalateReport)
	v1.Get("/stats", func(ctx *fiber.Ctx) error {
		return ctx.JSON(statistics.GetStatisticsData())
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

// newReportService wires the production report pipeline from the global
// repository factory and the environment.
func newReportService() *reporting.Service {
	var geocodeCache geocode.Cache
	if env.GetEnv("CACHE_ENABLED", "false") == "true" {
		geocodeCache = redisGeocodeCache{}
	}

	return reporting.NewService(
		repository.GetGlobalFactory().GetReportRepository(),
		geocode.NewClientFromEnv(geocodeCache),
		jurisdiction.Resolve,
		storage.NewStoreFromEnv(),
	)
}

// redisGeocodeCache adapts the shared cache client to the geocoder.
type redisGeocodeCache struct{}

func (redisGeocodeCache) Get(key string) (string, error) {
	return cache.Get(key)
}

func (redisGeocodeCache) Set(key string, value interface{}, expiration time.Duration) error {
	return cache.Set(key, value, expiration)
}
