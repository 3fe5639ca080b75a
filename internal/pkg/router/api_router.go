package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/promocraft/catalog/app/controllers"
	"github.com/promocraft/catalog/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	v1 := api.Group("/v1", middleware.APIKeyAuthMiddleware())

	sync := v1.Group("/sync")
	sync.Get("/status", controllers.HandleSyncStatus)
	sync.Get("/failures", controllers.HandleSyncFailures)
	sync.Post("/failures/:id/resolve", controllers.HandleResolveFailure)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
