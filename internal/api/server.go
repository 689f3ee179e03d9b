// Package api serves the scheduling simulator over HTTP.
package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vinhtrinh326/cpusched/internal/logging"
	"github.com/vinhtrinh326/cpusched/internal/store"
)

// Options configure a Server. A nil Recorder disables recording.
type Options struct {
	Quantum      int64
	MaxProcesses int
	Recorder     *store.Recorder
	Logger       *slog.Logger
}

type Server struct {
	app *fiber.App
}

func NewServer(opts Options) *Server {
	h := NewSchedulerHandlerImpl(opts)
	return &Server{app: newApp(h, h.logger)}
}

// newApp builds the fiber app around h. A panicking handler fails only its
// own request with a 500.
func newApp(h SchedulerHandler, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				logger.Error("request failed",
					slog.String("method", ctx.Method()),
					slog.String("path", ctx.Path()),
					logging.ErrAttr(err),
				)
			}
			return ctx.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(recover.New())
	Register(app, h)
	return app
}

// Register mounts the handler under /api/v1.
func Register(app *fiber.App, h SchedulerHandler) {
	api := app.Group("/api")

	v1 := api.Group("/v1")
	{
		v1.Get("/algorithms", h.Algorithms)
		v1.Post("/schedule", h.ScheduleAll)
		v1.Post("/schedule/:algorithm", h.Schedule)
		v1.Get("/batches/:batch", h.Batch)
		v1.Get("/runs/:run/processes", h.RunProcesses)
	}
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
