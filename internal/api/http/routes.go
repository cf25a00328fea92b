package httpapi

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/eco-ops-dashboard/internal/alert"
	"github.com/i474232898/eco-ops-dashboard/internal/external"
	"github.com/i474232898/eco-ops-dashboard/internal/hours"
	"github.com/i474232898/eco-ops-dashboard/internal/logger"
	"github.com/i474232898/eco-ops-dashboard/internal/scheduler"
	"github.com/i474232898/eco-ops-dashboard/internal/stats"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names in messages
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// StatsRunner produces dashboard statistics. It never fails.
type StatsRunner interface {
	Run(ctx context.Context, location string) stats.DashboardStats
}

// BundleFetcher produces one external data bundle. It never fails.
type BundleFetcher interface {
	Fetch(ctx context.Context, p external.Params) external.Bundle
}

// SyncStatus exposes the last background sync.
type SyncStatus interface {
	Last() (scheduler.LastSync, bool)
}

// Info is static process information for the health endpoint.
type Info struct {
	App             string
	Environment     string
	DefaultLocation string
	Mock            bool
}

// Deps are the collaborators behind the HTTP surface. Sync and Notifier may be nil.
type Deps struct {
	Hours    hours.Store
	Stats    StatsRunner
	Fetcher  BundleFetcher
	Sync     SyncStatus
	Notifier alert.Notifier
	Log      *logger.Logger
	Info     Info
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api")

	api.Get("/dashboard/stats", func(c *fiber.Ctx) error {
		location := c.Query("location", d.Info.DefaultLocation)
		return c.JSON(d.Stats.Run(c.UserContext(), location))
	})

	api.Get("/data/sync", func(c *fiber.Ctx) error {
		q := syncQuery{
			Location: c.Query("location", d.Info.DefaultLocation),
			Period:   c.Query("period"),
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
		}
		return c.JSON(d.Fetcher.Fetch(c.UserContext(), external.Params{Location: q.Location, Period: q.Period}))
	})

	api.Post("/hours/log", func(c *fiber.Ctx) error {
		var req logHoursRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "staffName, hours (number), and date are required")
		}
		req.StaffName = strings.TrimSpace(req.StaffName)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
		}

		entry, err := d.Hours.LogHours(c.UserContext(), hours.NewEntry{
			StaffName: req.StaffName,
			Hours:     *req.Hours,
			Date:      req.Date,
		})
		if err != nil {
			return internalError("Failed to log hours", err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	api.Get("/hours", func(c *fiber.Ctx) error {
		entries, err := d.Hours.ListHours(c.UserContext(), hours.Filter{
			StaffName: c.Query("staffName"),
			Date:      c.Query("date"),
		})
		if err != nil {
			return internalError("Failed to fetch hours", err)
		}
		return c.JSON(entries)
	})

	api.Get("/health", func(c *fiber.Ctx) error {
		var lastSync *scheduler.LastSync
		if d.Sync != nil {
			if last, ok := d.Sync.Last(); ok {
				lastSync = &last
			}
		}
		return c.JSON(fiber.Map{
			"status":      "ok",
			"app":         d.Info.App,
			"environment": d.Info.Environment,
			"mockMode":    d.Info.Mock,
			"lastSync":    lastSync,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	api.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("API endpoint %s not found", c.Path()))
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

type syncQuery struct {
	Location string `json:"location"`
	Period   string `json:"period" validate:"omitempty,datetime=2006-01"`
}

type logHoursRequest struct {
	StaffName string   `json:"staffName" validate:"required"`
	Hours     *float64 `json:"hours" validate:"required,gte=0,lte=24"`
	Date      string   `json:"date" validate:"required,datetime=2006-01-02"`
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return "staffName, hours (number), and date are required"
	case "gte", "lte":
		return "Hours must be between 0 and 24"
	case "datetime":
		if fe.Field() == "period" {
			return "period must be in YYYY-MM format"
		}
		return fe.Field() + " must be in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
