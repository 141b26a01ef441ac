package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Handlers groups the route handlers. Analyses and Results are optional; without them the
// asynchronous endpoints are not mounted.
type Handlers struct {
	Analyse  *AnalyseHandler
	Analyses *AnalysisHandler
	Results  *ResultHandler
	Offers   *OfferHandler
}

type AppOptions struct {
	BodyLimit   int
	AccessLog   bool
	ReadTimeout time.Duration
}

func NewApp(h Handlers, opts AppOptions) *fiber.App {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 60 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:      "CV Matcher API",
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.ReadTimeout,
		BodyLimit:    opts.BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	endpoints := []string{"GET /api/v1/health"}
	if h.Analyse != nil {
		api.Post("/analyse-cv", h.Analyse.HandleAnalyse)
		endpoints = append(endpoints, "POST /api/v1/analyse-cv")
	}
	if h.Analyses != nil && h.Results != nil {
		api.Post("/analyses", h.Analyses.HandleCreate)
		api.Get("/result/:id", h.Results.HandleGetResult)
		endpoints = append(endpoints, "POST /api/v1/analyses", "GET /api/v1/result/:id")
	}
	if h.Offers != nil {
		api.Get("/offers", h.Offers.HandleList)
		api.Post("/match-offers", h.Offers.HandleMatchOffers)
		endpoints = append(endpoints, "GET /api/v1/offers", "POST /api/v1/match-offers")
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "CV Matcher API",
			"version":   "1.0.0",
			"endpoints": endpoints,
		})
	})

	return app
}
