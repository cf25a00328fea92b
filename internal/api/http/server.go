package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/eco-ops-dashboard/internal/alert"
	"github.com/i474232898/eco-ops-dashboard/internal/logger"
)

// errorBody is the JSON envelope for every non-2xx response.
type errorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// apiError carries a client-facing message and the underlying cause.
type apiError struct {
	code    int
	message string
	err     error
}

func (e *apiError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *apiError) Unwrap() error { return e.err }

func internalError(message string, err error) error {
	return &apiError{code: fiber.StatusInternalServerError, message: message, err: err}
}

// NewApp builds the Fiber app with middleware, routes and the error envelope.
func NewApp(d Deps) *fiber.App {
	if d.Log == nil {
		d.Log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		AppName:               d.Info.App,
		DisableStartupMessage: true,
		Immutable:             true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler(d.Log, d.Notifier),
	})

	app.Use(requestLogger(d.Log))
	app.Use(recover.New())
	app.Use(cors.New())

	RegisterRoutes(app, d)
	return app
}

// errorHandler renders the error envelope. Server errors are also logged and
// forwarded to the alert sink with "METHOD path" as context.
func errorHandler(log *logger.Logger, notifier alert.Notifier) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "An unexpected error occurred"

		var ae *apiError
		var fe *fiber.Error
		switch {
		case errors.As(err, &ae):
			code, message = ae.code, ae.message
		case errors.As(err, &fe):
			code, message = fe.Code, fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			label := c.Method() + " " + c.Path()
			log.Errorw("request_failed", "context", label, "error", err)
			if notifier != nil {
				notifier.Notify(c.UserContext(), err, label)
			}
		}

		return c.Status(code).JSON(errorBody{
			Error:     http.StatusText(code),
			Message:   message,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func requestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var ae *apiError
			var fe *fiber.Error
			switch {
			case errors.As(err, &ae):
				status = ae.code
			case errors.As(err, &fe):
				status = fe.Code
			default:
				status = fiber.StatusInternalServerError
			}
		}

		log.Infow("http_request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start).String(),
		)
		return err
	}
}
