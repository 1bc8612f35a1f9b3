package settings

import (
	"github.com/Abdulla090/knote/cmd/server/handlers/handlerutil"
	"github.com/Abdulla090/knote/internal/services/settings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the settings and streak HTTP handlers
type Handlers struct {
	store     *settings.Store
	validator *validator.Validate
}

// NewHandlers creates new settings handlers
func NewHandlers(store *settings.Store, validator *validator.Validate) *Handlers {
	return &Handlers{
		store:     store,
		validator: validator,
	}
}

// Get returns the current preferences
// @Summary Get user preferences
// @Tags settings
// @Produce json
// @Success 200 {object} settings.Settings
// @Router /settings [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	return c.JSON(h.store.Get())
}

// Update patches the preferences bag
// @Summary Update user preferences
// @Tags settings
// @Accept json
// @Produce json
// @Param request body settings.UpdateSettingsRequest true "Partial settings patch"
// @Success 200 {object} settings.Settings
// @Failure 400 {object} httperr.E
// @Router /settings [patch]
func (h *Handlers) Update(c *fiber.Ctx) error {
	var req settings.UpdateSettingsRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Update"); err != nil {
		return err
	}

	return c.JSON(h.store.Update(c.UserContext(), req))
}

// Reset restores the default preferences
// @Summary Reset preferences to defaults
// @Tags settings
// @Produce json
// @Success 200 {object} settings.Settings
// @Router /settings/reset [post]
func (h *Handlers) Reset(c *fiber.Ctx) error {
	return c.JSON(h.store.Reset(c.UserContext()))
}

// GetStreak returns the activity streak
// @Summary Get the note-taking streak
// @Tags streak
// @Produce json
// @Success 200 {object} settings.Streak
// @Router /streak [get]
func (h *Handlers) GetStreak(c *fiber.Ctx) error {
	return c.JSON(h.store.GetStreak())
}

// RecordActivity registers note-taking activity for today
// @Summary Record note-taking activity
// @Tags streak
// @Produce json
// @Success 200 {object} settings.Streak
// @Router /streak/activity [post]
func (h *Handlers) RecordActivity(c *fiber.Ctx) error {
	return c.JSON(h.store.RecordActivity(c.UserContext()))
}
