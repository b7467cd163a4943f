package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ustaad-pk/ustaad_be/internal/handlers"
	"github.com/ustaad-pk/ustaad_be/internal/middleware"
	"github.com/ustaad-pk/ustaad_be/internal/realtime"
	"github.com/ustaad-pk/ustaad_be/internal/services/stats"
)

type Options struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Hub      *realtime.Hub
	Notifier realtime.Notifier

	JWTSecret          string
	JWTIssuer          string
	AllowOrigins       string
	RateLimitPerMinute int
}

// routable is implemented by every API handler.
type routable interface {
	Routes(r fiber.Router, g middleware.Guards)
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}

// New builds the fiber app with every route mounted.
func New(o Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ustaad-api",
		ErrorHandler: errorHandler(o.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(middleware.AccessLog(o.Log))
	app.Use(middleware.Metrics())
	origins := o.AllowOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders:    "Content-Length, X-Request-ID",
		AllowCredentials: origins != "*",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	guards := middleware.Guards{
		Identity:  middleware.Identity(o.JWTSecret, o.JWTIssuer),
		Profile:   middleware.LoadProfile(o.DB, o.Log),
		RateLimit: middleware.RateLimit(middleware.NewRateLimiter(o.RateLimitPerMinute)),
	}
	statsService := stats.NewStatsService()

	api := app.Group("/api")
	for _, h := range []routable{
		handlers.NewCategoryHandler(o.DB, o.Log),
		handlers.NewJobHandler(o.DB, o.Log, statsService),
		handlers.NewFreelancerHandler(o.DB, o.Log),
		handlers.NewProfileHandler(o.DB, o.Log),
		handlers.NewProposalHandler(o.DB, o.Log, o.Notifier),
		handlers.NewReviewHandler(o.DB, o.Log, statsService, o.Notifier),
		handlers.NewWebhookHandler(o.DB, o.Log),
		handlers.NewDiagnosticsHandler(o.DB, o.Log),
	} {
		h.Routes(api, guards)
	}

	handlers.NewNotificationHandler(o.DB, o.Hub, o.Log, o.JWTSecret, o.JWTIssuer).Routes(app)

	return app
}
