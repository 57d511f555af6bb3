// handlers/campaign_routes.go
package handlers

import (
	"campaign-sharing-system/middleware"
	"campaign-sharing-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCampaignRoutes(app *fiber.App, campaignService *services.CampaignService) {
	// 🔓 Public reads — no user context, but still behind Gateway auth
	app.Get("/campaigns", campaignService.ListCampaigns)
	app.Get("/campaigns/:id", campaignService.GetCampaignByID)
	app.Get("/campaigns/:id/prizes", campaignService.ListPrizes)
	app.Get("/campaigns/:id/leaderboard", campaignService.GetLeaderboard)

	// 👤 Participant routes — user context, anonymous visitors allowed
	withUser := app.Group("/", middleware.UserContextMiddleware())
	withUser.Get("/campaigns/:id/view", campaignService.ViewCampaign)
	withUser.Post("/actions/:action_id/complete", campaignService.CompleteAction)

	// 🔐 Organizer routes — authenticated user required
	secured := withUser.Group("/", middleware.RequireUser())
	secured.Post("/campaigns", campaignService.CreateCampaign)
	secured.Put("/campaigns/:id", campaignService.UpdateCampaign)
	secured.Patch("/campaigns/:id", campaignService.UpdateCampaign)
	secured.Post("/campaigns/:id/logo", campaignService.UploadCampaignLogo)
	secured.Post("/campaigns/:id/prizes", campaignService.CreatePrize)
	secured.Post("/prizes/:prize_id/logo", campaignService.UploadPrizeLogo)
	secured.Post("/campaigns/:id/actions", campaignService.CreateAction)
}
