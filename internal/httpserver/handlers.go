package httpserver

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/santobu/copilot-metrics-dashboard/internal/app"
	"github.com/santobu/copilot-metrics-dashboard/internal/github"
	"github.com/santobu/copilot-metrics-dashboard/internal/httpserver/httputil"
	metricssvc "github.com/santobu/copilot-metrics-dashboard/internal/services/metrics"
)

const bearerPrefix = "bearer "

func registerAPIRoutes(fiberApp *fiber.App, container *app.Container) {
	api := fiberApp.Group("/api")

	cron := api.Group("/cron", cronAuthMiddleware(container))
	cron.Get("/", handleCronAll(container))
	cron.Get("/usage", handleCronUsage(container))
	cron.Get("/seats", handleCronSeats(container))

	api.Get("/usage", handleUsageRange(container))
	api.Get("/seats", handleSeatSnapshot(container))
	api.Get("/seats/summary", handleSeatSummary(container))
}

// cronAuthMiddleware guards the collection triggers with the pre-shared
// secret. Requests without a matching bearer token are rejected before any
// upstream call is made.
func cronAuthMiddleware(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := container.Config.Server.CronSecret
		raw := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		token := ""
		if raw != "" && strings.HasPrefix(strings.ToLower(raw), bearerPrefix) {
			token = strings.TrimSpace(raw[len(bearerPrefix):])
		}
		if secret == "" || token != secret {
			return httputil.WriteError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Next()
	}
}

func handleCronAll(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		inserted, err := container.Ingest.Ingest(ctx, container.Scope)
		if err != nil {
			return upstreamError(c, err)
		}

		summary, err := container.Seats.Refresh(ctx, container.Scope)
		if err != nil {
			return upstreamError(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":           "ok",
			"usage_inserted":   inserted,
			"seat_total_seats": summary.TotalSeats,
		})
	}
}

func handleCronUsage(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inserted, err := container.Ingest.Ingest(c.UserContext(), container.Scope)
		if err != nil {
			return upstreamError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":         "ok",
			"usage_inserted": inserted,
		})
	}
}

func handleCronSeats(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := container.Seats.Refresh(c.UserContext(), container.Scope)
		if err != nil {
			return upstreamError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":           "ok",
			"seat_total_seats": summary.TotalSeats,
		})
	}
}

func handleUsageRange(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := c.Query("start")
		end := c.Query("end")

		records, err := container.Metrics.QueryRange(c.UserContext(), container.Scope, start, end)
		if err != nil {
			if errors.Is(err, metricssvc.ErrInvalidRange) {
				return httputil.WriteError(c, fiber.StatusBadRequest, err.Error())
			}
			return httputil.WriteError(c, fiber.StatusInternalServerError, "query usage records")
		}
		return c.Status(fiber.StatusOK).JSON(records)
	}
}

func handleSeatSnapshot(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snapshot, err := container.Seats.Snapshot(c.UserContext(), container.Scope, c.Query("date"))
		if err != nil {
			return httputil.WriteError(c, fiber.StatusInternalServerError, "query seat snapshot")
		}
		return c.Status(fiber.StatusOK).JSON(snapshot)
	}
}

func handleSeatSummary(container *app.Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := container.Seats.Summary(c.UserContext(), container.Scope)
		if err != nil {
			return upstreamError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(summary)
	}
}

// upstreamError reports a failed collection pass. GitHub failures surface
// their status so the caller can tell a token problem from a store problem.
func upstreamError(c *fiber.Ctx, err error) error {
	var upstream *github.UpstreamError
	if errors.As(err, &upstream) {
		return httputil.WriteError(c, fiber.StatusInternalServerError, err.Error())
	}
	var transport *github.TransportError
	if errors.As(err, &transport) {
		return httputil.WriteError(c, fiber.StatusInternalServerError, err.Error())
	}
	return httputil.WriteError(c, fiber.StatusInternalServerError, "internal error")
}
