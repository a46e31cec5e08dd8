package routes

import (
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything Setup mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Health    *handlers.HealthHandler
	Record    *handlers.RecordHandler
	College   *handlers.CollegeHandler
	Essay     *handlers.EssayHandler
	AI        *handlers.AIHandler
	Activity  *handlers.ActivityHandler
	Export    *handlers.ExportHandler
	Reference *handlers.ReferenceHandler
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(middleware.RateLimit(60))

	api.Get("/health", h.Health.Check)

	// Reference table (public)
	ref := api.Group("/reference")
	ref.Get("/colleges", h.Reference.Search)
	ref.Get("/colleges/:name", h.Reference.ByName)
	ref.Get("/states/:state", h.Reference.ByState)

	// Auth (public), stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(10))
	auth.Post("/signup", h.Auth.SignUp)
	auth.Post("/signin", h.Auth.SignIn)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/reset-password/confirm", h.Auth.ConfirmPasswordReset)
	auth.Post("/confirm-email", h.Auth.ConfirmEmail)

	jwt := middleware.JWTProtected(cfg)
	api.Post("/auth/signout", jwt, h.Auth.SignOut)
	api.Get("/me", jwt, h.Auth.Me)

	api.Get("/record", jwt, h.Record.Get)
	api.Get("/record/:field", jwt, h.Record.GetField)
	api.Put("/record/:field", jwt, h.Record.PutField)

	api.Get("/colleges", jwt, h.College.List)
	api.Post("/colleges", jwt, h.College.Add)
	api.Post("/colleges/bulk", jwt, h.College.AddBulk)
	api.Patch("/colleges/:name", jwt, h.College.Update)
	api.Delete("/colleges/:name", jwt, h.College.Remove)

	api.Get("/essays/prompts", h.Essay.Prompts)
	api.Get("/essays/common-app", jwt, h.Essay.GetCommonApp)
	api.Put("/essays/common-app", jwt, h.Essay.SaveCommonApp)
	api.Post("/essays/common-app/feedback", jwt, h.Essay.RequestFeedback)
	api.Get("/essays/supplemental", jwt, h.Essay.ListSupplemental)
	api.Put("/essays/supplemental", jwt, h.Essay.SaveSupplemental)

	api.Post("/ai/chat", jwt, h.AI.Proxy)
	api.Post("/ai/advisor", jwt, h.AI.Advise)
	api.Post("/ai/suggest-colleges", jwt, h.AI.SuggestColleges)

	api.Post("/activity", jwt, h.Activity.Record)
	api.Get("/activity", jwt, h.Activity.Recent)

	api.Get("/export/json", jwt, h.Export.JSON)
	api.Get("/export/csv", jwt, h.Export.CSV)
	api.Get("/export/xlsx", jwt, h.Export.XLSX)
	api.Post("/import/json", jwt, h.Export.ImportJSON)
}
