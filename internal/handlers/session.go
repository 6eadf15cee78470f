package handlers

import (
	"strings"

	"creativedesk/internal/models"
	"creativedesk/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler handles session and asset requests
type SessionHandler struct {
	sessions *services.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Start closes the current session into the library and begins a new one
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	var body struct {
		Name string `json:"name"`
	}
	// Empty body is fine, the session gets a generated name
	_ = c.BodyParser(&body)

	session := h.sessions.StartSession(strings.TrimSpace(body.Name))
	return c.Status(fiber.StatusCreated).JSON(h.sessions.Snapshot(session))
}

// Current returns the current session, creating one if needed. Responses
// marshal a snapshot, never the live session object.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	return c.JSON(h.sessions.Snapshot(h.sessions.Current()))
}

// AddImage records a generated image into the current session
func (h *SessionHandler) AddImage(c *fiber.Ctx) error {
	var input models.AssetInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if input.ContentRef == "" || input.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content_ref and prompt are required",
		})
	}

	asset := h.sessions.AddImage(h.sessions.Current(), input)
	return c.Status(fiber.StatusCreated).JSON(asset)
}

// AddVideo records a generated video, pairing it with an image either
// explicitly (pair_image_id) or by prompt similarity
func (h *SessionHandler) AddVideo(c *fiber.Ctx) error {
	var body struct {
		models.AssetInput
		PairImageID string `json:"pair_image_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if body.ContentRef == "" || body.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content_ref and prompt are required",
		})
	}

	asset, err := h.sessions.AddVideo(h.sessions.Current(), body.AssetInput, body.PairImageID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(asset)
}
