package folders

import (
	"errors"

	"github.com/Abdulla090/knote/cmd/server/handlers/handlerutil"
	"github.com/Abdulla090/knote/cmd/server/handlers/httperr"
	"github.com/Abdulla090/knote/internal/services/folders"
	"github.com/Abdulla090/knote/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the folders HTTP handlers. The notes store is consulted
// for live counts and for resolving folder membership, including the smart
// views.
type Handlers struct {
	store     *folders.Store
	notes     *notes.Store
	validator *validator.Validate
}

// NewHandlers creates new folders handlers
func NewHandlers(store *folders.Store, notesStore *notes.Store, validator *validator.Validate) *Handlers {
	return &Handlers{
		store:     store,
		notes:     notesStore,
		validator: validator,
	}
}

// FolderResponse is a folder with its live note count filled in. The stored
// noteCount is advisory; the count returned here is computed from the notes.
type FolderResponse struct {
	folders.Folder
	NoteCount int `json:"noteCount"`
}

func (h *Handlers) withLiveCount(f *folders.Folder, counts notes.ViewCounts) FolderResponse {
	resp := FolderResponse{Folder: *f}
	switch f.Name {
	case folders.SmartAllNotes:
		resp.NoteCount = counts.All
	case folders.SmartFavorites:
		resp.NoteCount = counts.Favorites
	case folders.SmartTrash:
		resp.NoteCount = counts.Trash
	default:
		resp.NoteCount = counts.PerFolder[f.ID]
	}
	return resp
}

// Create handles folder creation
// @Summary Create a new folder
// @Tags folders
// @Accept json
// @Produce json
// @Param request body folders.CreateFolderRequest true "Create folder request"
// @Success 201 {object} FolderResponse
// @Failure 400 {object} httperr.E
// @Router /folders [post]
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req folders.CreateFolderRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Create"); err != nil {
		return err
	}

	folder := h.store.Create(c.UserContext(), req)
	return c.Status(201).JSON(h.withLiveCount(folder, h.notes.Counts()))
}

// List returns all folders with live note counts
// @Summary List folders
// @Tags folders
// @Produce json
// @Success 200 {array} FolderResponse
// @Router /folders [get]
func (h *Handlers) List(c *fiber.Ctx) error {
	counts := h.notes.Counts()
	listed := h.store.List()

	out := make([]FolderResponse, len(listed))
	for i, f := range listed {
		out[i] = h.withLiveCount(f, counts)
	}
	return c.JSON(out)
}

// Update handles partial folder updates
// @Summary Update a folder
// @Tags folders
// @Accept json
// @Produce json
// @Param id path string true "Folder ID"
// @Param request body folders.UpdateFolderRequest true "Update folder request"
// @Success 200 {object} FolderResponse
// @Failure 400 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /folders/{id} [patch]
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "Update", folders.ErrFolderNotFound)
	if err != nil {
		return err
	}

	var req folders.UpdateFolderRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Update"); err != nil {
		return err
	}

	folder, err := h.store.Update(c.UserContext(), id, req)
	if err != nil {
		return handlerutil.HandleStoreError(err, "Update", id, folders.ErrFolderNotFound)
	}
	return c.JSON(h.withLiveCount(folder, h.notes.Counts()))
}

// Delete removes a non-default folder, unfiling its notes first
// @Summary Delete a folder
// @Tags folders
// @Param id path string true "Folder ID"
// @Success 204
// @Failure 404 {object} httperr.E
// @Failure 409 {object} httperr.E
// @Router /folders/{id} [delete]
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "Delete", folders.ErrFolderNotFound)
	if err != nil {
		return err
	}

	if err := h.store.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, folders.ErrDefaultFolder) {
			return httperr.Fail(httperr.E{Status: 409, Message: err.Error()})
		}
		return handlerutil.HandleStoreError(err, "Delete", id, folders.ErrFolderNotFound)
	}
	return c.SendStatus(204)
}

// Notes lists the notes belonging to a folder. Smart folders resolve to
// their predicate view; plain folders follow stored folderId links.
// @Summary List notes in a folder, including the smart views
// @Tags folders
// @Produce json
// @Param id path string true "Folder ID"
// @Success 200 {array} notes.Note
// @Failure 404 {object} httperr.E
// @Router /folders/{id}/notes [get]
func (h *Handlers) Notes(c *fiber.Ctx) error {
	id, err := handlerutil.RequireID(c, "Notes", folders.ErrFolderNotFound)
	if err != nil {
		return err
	}

	folder, err := h.store.Get(id)
	if err != nil {
		return handlerutil.HandleStoreError(err, "Notes", id, folders.ErrFolderNotFound)
	}

	req := notes.ListNotesRequest{PinnedFirst: true}
	switch folder.Name {
	case folders.SmartAllNotes:
		req.View = notes.ViewAll
	case folders.SmartFavorites:
		req.View = notes.ViewFavorites
	case folders.SmartTrash:
		req.View = notes.ViewTrash
	default:
		req.View = notes.ViewFolder
		req.FolderID = folder.ID
	}

	return c.JSON(h.notes.List(req))
}
