package handlers

import (
	"creativedesk/internal/services"

	"github.com/gofiber/fiber/v2"
)

// LibraryHandler handles library index requests
type LibraryHandler struct {
	library *services.LibraryService
}

// NewLibraryHandler creates a new library handler
func NewLibraryHandler(library *services.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

// List returns all library index entries, newest first
func (h *LibraryHandler) List(c *fiber.Ctx) error {
	entries, err := h.library.ListSessions()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list sessions",
		})
	}

	return c.JSON(fiber.Map{
		"sessions": entries,
		"count":    len(entries),
	})
}

// Get returns the full payload of a persisted session
func (h *LibraryHandler) Get(c *fiber.Ctx) error {
	session, err := h.library.LoadSession(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load session",
		})
	}
	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	return c.JSON(session)
}
