package notes

import (
	"github.com/Abdulla090/knote/cmd/server/handlers/handlerutil"
	"github.com/Abdulla090/knote/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the notes HTTP handlers
type Handlers struct {
	store     *notes.Store
	validator *validator.Validate
}

// NewHandlers creates new notes handlers
func NewHandlers(store *notes.Store, validator *validator.Validate) *Handlers {
	return &Handlers{
		store:     store,
		validator: validator,
	}
}

// SetColorRequest carries the palette key for the color endpoint.
type SetColorRequest struct {
	Color notes.Color `json:"color" validate:"required,oneof=none red orange yellow green blue purple" example:"blue"`
}

// MoveFolderRequest carries the target folder for the move endpoint.
// A null folderId unfiles the note.
type MoveFolderRequest struct {
	FolderID *string `json:"folderId"`
}

// BatchResult reports how many notes a trash-wide operation touched.
type BatchResult struct {
	Count int `json:"count" example:"3"`
}

// Create handles note creation
// @Summary Create a new note
// @Tags notes
// @Accept json
// @Produce json
// @Param request body notes.CreateNoteRequest true "Create note request"
// @Success 201 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Router /notes [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req notes.CreateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	note := h.store.Create(c.UserContext(), req)
	return c.Status(201).JSON(note)
}

// List handles notes listing
// @Summary List notes by view with search and color filtering
// @Tags notes
// @Accept json
// @Produce json
// @Param view query string false "View: all|favorites|trash|folder (default all)"
// @Param folder_id query string false "Folder id, required when view=folder"
// @Param q query string false "Case-insensitive search in title, content and transcription"
// @Param color query string false "Palette key filter"
// @Param pinned_first query bool false "Sort pinned notes first (ignored in trash)"
// @Success 200 {array} notes.Note
// @Failure 400 {object} httperr.E
// @Router /notes [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	var req notes.ListNotesRequest
	if err := handlerutil.ParseAndValidateQuery(c, &req, h.validator, "List"); err != nil {
		return err
	}

	return c.JSON(h.store.List(req))
}

// Counts returns the live per-view and per-folder note counts
// @Summary Live note counts per view and folder
// @Tags notes
// @Produce json
// @Success 200 {object} notes.ViewCounts
// @Router /notes/counts [get]
func (h *Handlers) Counts(c *fiber.Ctx) error {
	return c.JSON(h.store.Counts())
}

// Get returns a single note
// @Summary Get a note by id
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [get]
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "Get", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	note, err := h.store.Get(id)
	if err != nil {
		return handlerutil.HandleStoreError(err, "Get", id, notes.ErrNoteNotFound)
	}
	return c.JSON(note)
}

// Update handles partial note updates
// @Summary Update a note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body notes.UpdateNoteRequest true "Update note request"
// @Success 200 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [patch]
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "Update", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req notes.UpdateNoteRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Update"); err != nil {
		return err
	}

	note, err := h.store.Update(c.UserContext(), id, req)
	if err != nil {
		return handlerutil.HandleStoreError(err, "Update", id, notes.ErrNoteNotFound)
	}
	return c.JSON(note)
}

// Delete soft-deletes a note into the trash
// @Summary Move a note to the trash
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "Delete", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	note, err := h.store.Delete(c.UserContext(), id)
	if err != nil {
		return handlerutil.HandleStoreError(err, "Delete", id, notes.ErrNoteNotFound)
	}
	return c.JSON(note)
}

// Restore brings a note back from the trash
// @Summary Restore a note from the trash
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/restore [post]
func (h *Handlers) Restore(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "Restore", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	note, err := h.store.Restore(c.UserContext(), id)
	if err != nil {
		return handlerutil.HandleStoreError(err, "Restore", id, notes.ErrNoteNotFound)
	}
	return c.JSON(note)
}

// PermanentlyDelete removes a note from storage entirely
// @Summary Permanently delete a note
// @Tags notes
// @Param id path string true "Note ID"
// @Success 204
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/permanent [delete]
func (h *Handlers) PermanentlyDelete(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "PermanentlyDelete", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	if err := h.store.PermanentlyDelete(c.UserContext(), id); err != nil {
		return handlerutil.HandleStoreError(err, "PermanentlyDelete", id, notes.ErrNoteNotFound)
	}
	return c.SendStatus(204)
}

// ToggleFavorite flips the favorite flag
// @Summary Toggle a note's favorite flag
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/favorite [post]
func (h *Handlers) ToggleFavorite(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "ToggleFavorite", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	note, err := h.store.ToggleFavorite(c.UserContext(), id)
	if err != nil {
		return handlerutil.HandleStoreError(err, "ToggleFavorite", id, notes.ErrNoteNotFound)
	}
	return c.JSON(note)
}

// TogglePin flips the pin flag
// @Summary Toggle a note's pin flag
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/pin [post]
func (h *Handlers) TogglePin(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "TogglePin", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	note, err := h.store.TogglePin(c.UserContext(), id)
	if err != nil {
		return handlerutil.HandleStoreError(err, "TogglePin", id, notes.ErrNoteNotFound)
	}
	return c.JSON(note)
}

// SetColor sets the color label
// @Summary Set a note's color label
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body SetColorRequest true "Palette key"
// @Success 200 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/color [put]
func (h *Handlers) SetColor(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "SetColor", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req SetColorRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SetColor"); err != nil {
		return err
	}

	note, err := h.store.SetColor(c.UserContext(), id, req.Color)
	if err != nil {
		return handlerutil.HandleStoreError(err, "SetColor", id, notes.ErrNoteNotFound)
	}
	return c.JSON(note)
}

// Duplicate copies a note
// @Summary Duplicate a note
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 201 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/duplicate [post]
func (h *Handlers) Duplicate(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "Duplicate", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	note, err := h.store.Duplicate(c.UserContext(), id)
	if err != nil {
		return handlerutil.HandleStoreError(err, "Duplicate", id, notes.ErrNoteNotFound)
	}
	return c.Status(201).JSON(note)
}

// MoveToFolder files or unfiles a note
// @Summary Move a note into a folder, or unfile it
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body MoveFolderRequest true "Target folder; null unfiles"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Router /notes/{id}/folder [put]
func (h *Handlers) MoveToFolder(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "MoveToFolder", notes.ErrNoteNotFound)
	if err != nil {
		return err
	}

	var req MoveFolderRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "MoveToFolder"); err != nil {
		return err
	}

	note, err := h.store.MoveToFolder(c.UserContext(), id, req.FolderID)
	if err != nil {
		return handlerutil.HandleStoreError(err, "MoveToFolder", id, notes.ErrNoteNotFound)
	}
	return c.JSON(note)
}

// EmptyTrash permanently removes every trashed note
// @Summary Empty the trash
// @Tags trash
// @Produce json
// @Success 200 {object} BatchResult
// @Router /trash/empty [post]
func (h *Handlers) EmptyTrash(c *fiber.Ctx) error {
	return c.JSON(BatchResult{Count: h.store.EmptyTrash(c.UserContext())})
}

// RestoreAllTrash restores every trashed note
// @Summary Restore everything in the trash
// @Tags trash
// @Produce json
// @Success 200 {object} BatchResult
// @Router /trash/restore [post]
func (h *Handlers) RestoreAllTrash(c *fiber.Ctx) error {
	return c.JSON(BatchResult{Count: h.store.RestoreAllTrash(c.UserContext())})
}
