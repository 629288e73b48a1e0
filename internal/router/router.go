package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bloodlagbe/bloodlagbe-api/internal/config"
	"github.com/bloodlagbe/bloodlagbe-api/internal/handler"
	"github.com/bloodlagbe/bloodlagbe-api/internal/middleware"
	"github.com/bloodlagbe/bloodlagbe-api/internal/models"
	"github.com/bloodlagbe/bloodlagbe-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DonorHandler           *handler.DonorHandler
	SubmissionHandler      *handler.SubmissionHandler
	AdminSubmissionHandler *handler.AdminSubmissionHandler
	UploadHandler          *handler.UploadHandler
	CampusHandler          *handler.ReferenceHandler
	GroupHandler           *handler.ReferenceHandler
	FeedbackHandler        *handler.FeedbackHandler
	AdminActivityHandler   *handler.AdminActivityHandler
	JWTMiddleware          fiber.Handler
	JWTOptionalMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	jwtOptional := deps.JWTOptionalMiddleware
	if jwtOptional == nil {
		jwtOptional = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public directory
	if deps.DonorHandler != nil {
		deps.DonorHandler.RegisterPublic(api)

		protected := api.Group("", jwtMiddleware)
		deps.DonorHandler.RegisterProtected(protected)
	}

	// Feedback intake accepts users and guests alike.
	if deps.FeedbackHandler != nil {
		feedbackIntake := api.Group("", jwtOptional, middleware.RateLimit("feedback", 5, time.Minute))
		deps.FeedbackHandler.RegisterPublic(feedbackIntake)
	}

	// User submission lifecycle
	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.Register(submissions)
	}

	// Admin surface
	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))

	if deps.AdminSubmissionHandler != nil {
		deps.AdminSubmissionHandler.Register(admin.Group("/submissions"))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(admin.Group("/donors"))
	}
	if deps.CampusHandler != nil {
		deps.CampusHandler.Register(admin.Group("/campuses"))
	}
	if deps.GroupHandler != nil {
		deps.GroupHandler.Register(admin.Group("/groups"))
	}
	if deps.FeedbackHandler != nil {
		deps.FeedbackHandler.RegisterAdmin(admin.Group("/feedback"))
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activity"))
	}
}
