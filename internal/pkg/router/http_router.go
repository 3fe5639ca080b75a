package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/promocraft/catalog/app/controllers"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	controllers.InitializeWebhookController()

	// Inbound CRM push channel. Authenticated by HMAC signature, not by the
	// operator token, so it lives outside the /api group.
	app.Post("/integrations/dataverse/webhook", controllers.HandleDataverseWebhook)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
