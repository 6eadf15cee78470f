package handlers

import (
	"time"

	"creativedesk/internal/services"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	sessions *services.SessionService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(sessions *services.SessionService) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "healthy",
		"current_session": h.sessions.Current().ID,
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}
