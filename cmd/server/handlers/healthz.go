package handlers

import (
	"context"
	"time"

	"github.com/Abdulla090/knote/internal/clients/kv"

	"github.com/gofiber/fiber/v2"
)

const HealthzTimeout = 5 * time.Second

// Pinger is implemented by KV backends that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Loadable reports whether a store's last load succeeded.
type Loadable interface {
	LoadError() error
}

// Healthz reports whether the KV backend is reachable and the collection
// stores loaded cleanly.
// @Summary Health check
// @Description Check if the server is healthy
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
func Healthz(store kv.Store, loadables ...Loadable) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), HealthzTimeout)
		defer cancel()

		if p, ok := store.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"status": "down",
					"error":  err.Error(),
				})
			}
		}

		for _, l := range loadables {
			if err := l.LoadError(); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"status": "degraded",
					"error":  err.Error(),
				})
			}
		}

		return c.JSON(fiber.Map{
			"status": "ok",
		})
	}
}
