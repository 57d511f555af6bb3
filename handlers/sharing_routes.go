// handlers/sharing_routes.go
package handlers

import (
	"campaign-sharing-system/middleware"
	"campaign-sharing-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSharingRoutes(app *fiber.App, sharingService *services.SharingService) {
	// 🔓 Public — clicked from social posts, no Gateway in front
	app.Get("/r/:token", sharingService.TrackClick)

	// 👤 Participant routes
	withUser := app.Group("/", middleware.UserContextMiddleware())
	withUser.Get("/campaigns/:id/share", sharingService.GetShareInfo)

	// Posting needs a real account with connected profiles
	secured := withUser.Group("/", middleware.RequireUser())
	secured.Post("/campaigns/:id/share", sharingService.SharePost)
}
