// Package server exposes the recommendation pipeline over HTTP.
package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	vaidya "github.com/vaidya-ai/vaidya"
	"github.com/vaidya-ai/vaidya/core"
	"github.com/vaidya-ai/vaidya/logging"
	"github.com/vaidya-ai/vaidya/plan"
)

// Options configures the HTTP server.
type Options struct {
	// BodyLimit caps request body size in bytes.
	BodyLimit int

	Logger logging.Logger
}

// Server wraps a fiber application around a Vaidya instance.
type Server struct {
	app    *fiber.App
	v      *vaidya.Vaidya
	logger logging.Logger
}

// New builds the HTTP server and registers all routes.
func New(v *vaidya.Vaidya, optFns ...func(o *Options)) *Server {
	opts := Options{BodyLimit: 1 * 1024 * 1024}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    opts.BodyLimit,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())

	s := &Server{app: app, v: v, logger: logger}
	s.registerRoutes()
	return s
}

// App exposes the underlying fiber application, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves HTTP on the given address until shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.handleHealth)

	s.app.Post("/recommend", s.handleRecommend)
	s.app.Post("/resume", s.handleResume)
	s.app.Get("/session/:id", s.handleSession)
	s.app.Get("/plan/:id", s.handlePlan)
	s.app.Delete("/session/:id", s.handleAbort)

	log := s.app.Group("/log")
	log.Post("/mood", s.handleLogMood)
	log.Post("/symptom", s.handleLogSymptom)
	log.Post("/meal", s.handleLogMeal)
}

// errorHandler maps pipeline errors onto HTTP statuses. Clarifications never
// reach this path; they are normal responses, not errors.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	var stale *core.StaleResumeError
	if errors.As(err, &stale) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "stale resume",
			"session_id": stale.SessionID,
			"pending":    stale.Wanted,
			"got":        stale.Got,
		})
	}
	var aborted *core.PipelineAbortedError
	if errors.As(err, &aborted) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":      "pipeline aborted",
			"session_id": aborted.SessionID,
			"cause":      string(aborted.Cause),
			"agent":      aborted.Agent,
		})
	}

	switch {
	case errors.Is(err, core.ErrSessionNotFound), errors.Is(err, plan.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, core.ErrVersionConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "concurrent update, retry"})
	case errors.Is(err, core.ErrSessionTerminal):
		return c.Status(fiber.StatusGone).JSON(fiber.Map{"error": "session already finished"})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
