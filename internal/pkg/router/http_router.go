package router

import (
	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"service": "CivicTrack",
			"status":  "ok",
		})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
