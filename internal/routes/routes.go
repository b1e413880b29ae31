package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/example/smartcore/internal/config"
	"github.com/example/smartcore/internal/handlers"
	"github.com/example/smartcore/internal/mailer"
	"github.com/example/smartcore/internal/middleware"
	"github.com/example/smartcore/internal/provision"
	"github.com/example/smartcore/internal/supabase"
	"github.com/example/smartcore/internal/verification"
)

// Register constructs the service graph and wires up all HTTP routes.
func Register(app *fiber.App, cfg *config.Config, log zerolog.Logger) {
	sb := supabase.New(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseAnonKey, log)
	mail := mailer.New(cfg.ResendAPIKey, cfg.ResendFrom, log)
	prov := provision.New(sb, sb, log)
	engine := verification.NewEngine(sb, sb, mail, prov, cfg.CodeSalt, cfg.CodeTTL, log)

	onboarding := handlers.NewOnboardingHandler(engine)
	employees := handlers.NewEmployeeHandler(sb, mail, prov, cfg.OnboardingBaseURL, log)
	companies := handlers.NewCompanyHandler(sb)

	api := app.Group("/api")

	api.Get("/send-code", onboarding.SendCodeHealth)
	api.Post("/send-code", onboarding.SendCode)
	api.Post("/verify-code", onboarding.VerifyCode)

	api.Post("/invite-employee", employees.Invite)
	api.Post("/app-employee", middleware.Auth(sb), employees.Create)
	api.Post("/delete-employee", employees.Delete)

	api.Post("/update-company", companies.Update)
}
