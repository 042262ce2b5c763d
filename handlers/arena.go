// handlers/arena_routes.go
package handlers

import (
	"arena-scheduler/middleware"
	"arena-scheduler/services"

	"github.com/gofiber/fiber/v2"
)

func SetupArenaRoutes(app *fiber.App, events *services.EventService, brackets *services.BracketService, settlement *services.SettlementService) {
	// Public routes — no user context, but still behind Gateway auth.
	app.Get("/event-types", events.GetEventTypesHandler)
	app.Get("/events/schedule", events.GetScheduleHandler)
	app.Get("/events/upcoming", events.GetUpcomingHandler)
	app.Get("/events/active", events.GetActiveHandler)
	app.Get("/events/:id", events.GetEventHandler)
	app.Get("/events/:id/participants", events.GetParticipantsHandler)
	app.Get("/events/:id/bracket", brackets.GetBracketHandler)
	app.Get("/events/:id/matchups", brackets.GetMatchupsHandler)
	app.Get("/events/:id/round", brackets.GetCurrentRoundHandler)
	app.Get("/events/:id/results", brackets.GetResultsHandler)
	app.Get("/players/:id/history", settlement.GetPlayerHistoryHandler)
	app.Get("/players/:id/balance", events.GetBalanceHandler)
	app.Get("/leaderboards/:type_id", settlement.GetLeaderboardHandler)

	// Secured routes — require user context forwarded by the Gateway.
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/events", events.ScheduleEventHandler)
	secured.Post("/events/:id/register", events.RegisterHandler)
	secured.Post("/events/:id/unregister", events.UnregisterHandler)
	secured.Post("/events/:id/cancel", events.CancelEventHandler)
	secured.Post("/events/:id/bracket", brackets.GenerateBracketHandler)
	secured.Post("/events/:id/advance", brackets.AdvanceRoundHandler)
	secured.Post("/events/:id/complete", settlement.CompleteEventHandler)
}
