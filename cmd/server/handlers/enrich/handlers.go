package enrich

import (
	"errors"

	"github.com/Abdulla090/knote/cmd/server/handlers/handlerutil"
	"github.com/Abdulla090/knote/cmd/server/handlers/httperr"
	"github.com/Abdulla090/knote/internal/clients/gemini"
	"github.com/Abdulla090/knote/internal/logger"
	"github.com/Abdulla090/knote/internal/services/enrich"
	"github.com/Abdulla090/knote/internal/services/folders"
	"github.com/Abdulla090/knote/internal/services/notes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains the AI enrichment HTTP handlers. Results are written
// back to the note through the notes store, so every enrichment shows up on
// the event stream like any other update.
type Handlers struct {
	svc       *enrich.Service
	notes     *notes.Store
	folders   *folders.Store
	validator *validator.Validate
}

// NewHandlers creates new enrichment handlers
func NewHandlers(svc *enrich.Service, notesStore *notes.Store, foldersStore *folders.Store, validator *validator.Validate) *Handlers {
	return &Handlers{
		svc:       svc,
		notes:     notesStore,
		folders:   foldersStore,
		validator: validator,
	}
}

// SummarizeRequest selects the summary level and language.
type SummarizeRequest struct {
	Level    notes.SummaryLevel `json:"level" validate:"omitempty,oneof=brief standard detailed" example:"standard"`
	Language notes.Language     `json:"language" validate:"omitempty,oneof=en ku"`
}

// LanguageRequest selects the output language for an operation.
type LanguageRequest struct {
	Language notes.Language `json:"language" validate:"omitempty,oneof=en ku"`
}

// TranslateRequest selects the translation target.
type TranslateRequest struct {
	Target notes.Language `json:"target" validate:"required,oneof=en ku" example:"ku"`
}

// TranslationResponse carries a translation; it is not stored on the note.
type TranslationResponse struct {
	Text string `json:"text"`
}

// TranscribeRequest carries inline audio for transcription.
type TranscribeRequest struct {
	Audio    string         `json:"audio" validate:"required,base64"`
	MIMEType string         `json:"mimeType" validate:"omitempty,oneof=audio/wav audio/mp3 audio/m4a audio/aac" example:"audio/wav"`
	Language notes.Language `json:"language" validate:"omitempty,oneof=en ku"`
	Segments bool           `json:"segments"`
}

// ContentRequest carries free-standing content for operations whose results
// are not written back to a note.
type ContentRequest struct {
	Content  string         `json:"content" validate:"required"`
	Language notes.Language `json:"language" validate:"omitempty,oneof=en ku"`
}

// transportError maps client failures: a missing API key is a config
// problem, everything else is the upstream model misbehaving.
func transportError(err error) error {
	if errors.Is(err, gemini.ErrNoAPIKey) {
		return httperr.Fail(httperr.E{Status: 503, Message: err.Error()})
	}
	logger.L().Error("enrichment call failed", "error", err)
	return httperr.Fail(httperr.ErrBadGateway)
}

// noteContent picks the text an enrichment runs over: content, falling back
// to the transcription for voice notes.
func noteContent(n *notes.Note) string {
	if n.Content != "" {
		return n.Content
	}
	if n.Transcription != nil {
		return *n.Transcription
	}
	return ""
}

func pickLanguage(requested, fallback notes.Language) notes.Language {
	if requested != "" {
		return requested
	}
	return fallback
}

func (h *Handlers) loadNote(c *fiber.Ctx, handlerName string) (*notes.Note, error) {
	id, err := handlerutil.RequireID(c, handlerName, notes.ErrNoteNotFound)
	if err != nil {
		return nil, err
	}

	note, err := h.notes.Get(id)
	if err != nil {
		return nil, handlerutil.HandleStoreError(err, handlerName, id, notes.ErrNoteNotFound)
	}
	return note, nil
}

// Summarize generates and stores a summary on the note
// @Summary Summarize a note with AI
// @Tags enrich
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body SummarizeRequest false "Summary options"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /notes/{id}/enrich/summarize [post]
func (h *Handlers) Summarize(c *fiber.Ctx) error {
	note, err := h.loadNote(c, "Summarize")
	if err != nil {
		return err
	}

	var req SummarizeRequest
	if err := handlerutil.ParseAndValidateOptionalBody(c, &req, h.validator, "Summarize"); err != nil {
		return err
	}
	level := req.Level
	if level == "" {
		level = notes.SummaryStandard
	}

	summary, err := h.svc.Summarize(c.UserContext(), noteContent(note), level, pickLanguage(req.Language, note.Language))
	if err != nil {
		return transportError(err)
	}

	updated, err := h.notes.Update(c.UserContext(), note.ID, notes.UpdateNoteRequest{
		Summary:      &summary,
		SummaryLevel: &level,
	})
	if err != nil {
		return handlerutil.HandleStoreError(err, "Summarize", note.ID, notes.ErrNoteNotFound)
	}
	return c.JSON(updated)
}

// GenerateTitle generates and stores an AI title on the note
// @Summary Generate a title for a note with AI
// @Tags enrich
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body LanguageRequest false "Language options"
// @Success 200 {object} notes.Note
// @Failure 404 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /notes/{id}/enrich/title [post]
func (h *Handlers) GenerateTitle(c *fiber.Ctx) error {
	note, err := h.loadNote(c, "GenerateTitle")
	if err != nil {
		return err
	}

	var req LanguageRequest
	if err := handlerutil.ParseAndValidateOptionalBody(c, &req, h.validator, "GenerateTitle"); err != nil {
		return err
	}

	title, err := h.svc.GenerateTitle(c.UserContext(), noteContent(note), pickLanguage(req.Language, note.Language))
	if err != nil {
		return transportError(err)
	}

	updated, err := h.notes.Update(c.UserContext(), note.ID, notes.UpdateNoteRequest{AITitle: &title})
	if err != nil {
		return handlerutil.HandleStoreError(err, "GenerateTitle", note.ID, notes.ErrNoteNotFound)
	}
	return c.JSON(updated)
}

// GenerateTags generates and stores tags on the note
// @Summary Generate tags for a note with AI
// @Tags enrich
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body LanguageRequest false "Language options"
// @Success 200 {object} notes.Note "or enrich.Result when the reply did not parse"
// @Failure 404 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /notes/{id}/enrich/tags [post]
func (h *Handlers) GenerateTags(c *fiber.Ctx) error {
	note, err := h.loadNote(c, "GenerateTags")
	if err != nil {
		return err
	}

	var req LanguageRequest
	if err := handlerutil.ParseAndValidateOptionalBody(c, &req, h.validator, "GenerateTags"); err != nil {
		return err
	}

	result, err := h.svc.GenerateTags(c.UserContext(), noteContent(note), pickLanguage(req.Language, note.Language))
	if err != nil {
		return transportError(err)
	}
	if !result.Parsed {
		// Observable failure: the raw reply goes back, the note stays as is.
		return c.JSON(result)
	}

	updated, err := h.notes.Update(c.UserContext(), note.ID, notes.UpdateNoteRequest{AITags: result.Value})
	if err != nil {
		return handlerutil.HandleStoreError(err, "GenerateTags", note.ID, notes.ErrNoteNotFound)
	}
	return c.JSON(updated)
}

// Categorize suggests a folder and stores the category on the note
// @Summary Categorize a note against the existing folders with AI
// @Tags enrich
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note "or enrich.Result when the reply did not parse"
// @Failure 404 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /notes/{id}/enrich/categorize [post]
func (h *Handlers) Categorize(c *fiber.Ctx) error {
	note, err := h.loadNote(c, "Categorize")
	if err != nil {
		return err
	}

	var names []string
	for _, f := range h.folders.List() {
		if !folders.IsSmartName(f.Name) {
			names = append(names, f.Name)
		}
	}

	result, err := h.svc.Categorize(c.UserContext(), noteContent(note), names)
	if err != nil {
		return transportError(err)
	}
	if !result.Parsed {
		return c.JSON(result)
	}

	patch := notes.UpdateNoteRequest{AIConfidence: &result.Value.Confidence}
	if result.Value.Folder != nil {
		patch.AICategory = result.Value.Folder
	} else if result.Value.SuggestedNewFolder != nil {
		patch.AICategory = result.Value.SuggestedNewFolder
	}

	updated, err := h.notes.Update(c.UserContext(), note.ID, patch)
	if err != nil {
		return handlerutil.HandleStoreError(err, "Categorize", note.ID, notes.ErrNoteNotFound)
	}
	return c.JSON(updated)
}

// ExtractActionItems extracts and stores action items and key points
// @Summary Extract action items and key points from a note with AI
// @Tags enrich
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body LanguageRequest false "Language options"
// @Success 200 {object} notes.Note "or enrich.Result when the reply did not parse"
// @Failure 404 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /notes/{id}/enrich/action-items [post]
func (h *Handlers) ExtractActionItems(c *fiber.Ctx) error {
	note, err := h.loadNote(c, "ExtractActionItems")
	if err != nil {
		return err
	}

	var req LanguageRequest
	if err := handlerutil.ParseAndValidateOptionalBody(c, &req, h.validator, "ExtractActionItems"); err != nil {
		return err
	}
	lang := pickLanguage(req.Language, note.Language)
	content := noteContent(note)

	items, err := h.svc.ExtractActionItems(c.UserContext(), content, lang)
	if err != nil {
		return transportError(err)
	}
	if !items.Parsed {
		return c.JSON(items)
	}

	patch := notes.UpdateNoteRequest{ActionItems: items.Value}

	// Key points ride along; their parse failure doesn't block action items.
	if points, err := h.svc.ExtractKeyPoints(c.UserContext(), content, lang); err == nil && points.Parsed {
		patch.KeyPoints = points.Value
	}

	updated, err := h.notes.Update(c.UserContext(), note.ID, patch)
	if err != nil {
		return handlerutil.HandleStoreError(err, "ExtractActionItems", note.ID, notes.ErrNoteNotFound)
	}
	return c.JSON(updated)
}

// AnalyzeMood analyzes and stores the emotional tone of a note
// @Summary Analyze a note's mood with AI
// @Tags enrich
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} notes.Note "or enrich.Result when the reply did not parse"
// @Failure 404 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /notes/{id}/enrich/mood [post]
func (h *Handlers) AnalyzeMood(c *fiber.Ctx) error {
	note, err := h.loadNote(c, "AnalyzeMood")
	if err != nil {
		return err
	}

	result, err := h.svc.AnalyzeMood(c.UserContext(), noteContent(note))
	if err != nil {
		return transportError(err)
	}
	if !result.Parsed {
		return c.JSON(result)
	}

	updated, err := h.notes.Update(c.UserContext(), note.ID, notes.UpdateNoteRequest{
		AIMood:       &result.Value.Mood,
		AIMoodReason: &result.Value.Reason,
		AIMoodScore:  &result.Value.Score,
	})
	if err != nil {
		return handlerutil.HandleStoreError(err, "AnalyzeMood", note.ID, notes.ErrNoteNotFound)
	}
	return c.JSON(updated)
}

// Translate translates a note's content; the result is returned, not stored
// @Summary Translate a note's content with AI
// @Tags enrich
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body TranslateRequest true "Translation target"
// @Success 200 {object} TranslationResponse
// @Failure 404 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /notes/{id}/enrich/translate [post]
func (h *Handlers) Translate(c *fiber.Ctx) error {
	note, err := h.loadNote(c, "Translate")
	if err != nil {
		return err
	}

	var req TranslateRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Translate"); err != nil {
		return err
	}

	text, err := h.svc.Translate(c.UserContext(), noteContent(note), req.Target)
	if err != nil {
		return transportError(err)
	}
	return c.JSON(TranslationResponse{Text: text})
}

// Transcribe transcribes inline audio and stores the result on the note.
// The note's transcriptionStatus walks processing -> completed, or failed
// when the model call does not come back.
// @Summary Transcribe audio onto a voice note with AI
// @Tags enrich
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body TranscribeRequest true "Base64 audio"
// @Success 200 {object} notes.Note
// @Failure 400 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /notes/{id}/enrich/transcribe [post]
func (h *Handlers) Transcribe(c *fiber.Ctx) error {
	note, err := h.loadNote(c, "Transcribe")
	if err != nil {
		return err
	}

	var req TranscribeRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Transcribe"); err != nil {
		return err
	}
	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	lang := pickLanguage(req.Language, note.Language)

	processing := notes.TranscriptionProcessing
	if _, err := h.notes.Update(c.UserContext(), note.ID, notes.UpdateNoteRequest{
		TranscriptionStatus: &processing,
	}); err != nil {
		return handlerutil.HandleStoreError(err, "Transcribe", note.ID, notes.ErrNoteNotFound)
	}

	patch, failErr := h.transcribePatch(c, req.Audio, mimeType, lang, req.Segments)
	if failErr != nil {
		failed := notes.TranscriptionFailed
		if _, err := h.notes.Update(c.UserContext(), note.ID, notes.UpdateNoteRequest{
			TranscriptionStatus: &failed,
		}); err != nil {
			return handlerutil.HandleStoreError(err, "Transcribe", note.ID, notes.ErrNoteNotFound)
		}
		return transportError(failErr)
	}

	updated, err := h.notes.Update(c.UserContext(), note.ID, patch)
	if err != nil {
		return handlerutil.HandleStoreError(err, "Transcribe", note.ID, notes.ErrNoteNotFound)
	}
	return c.JSON(updated)
}

// transcribePatch runs the transcription and builds the completed patch.
func (h *Handlers) transcribePatch(c *fiber.Ctx, audio, mimeType string, lang notes.Language, withSegments bool) (notes.UpdateNoteRequest, error) {
	completed := notes.TranscriptionCompleted

	if withSegments {
		result, err := h.svc.TranscribeSegments(c.UserContext(), audio, mimeType, lang)
		if err != nil {
			return notes.UpdateNoteRequest{}, err
		}
		if result.Parsed {
			text := joinSegments(result.Value.Segments)
			detected := notes.Language(result.Value.Language)
			patch := notes.UpdateNoteRequest{
				Transcription:         &text,
				TranscriptionSegments: result.Value.Segments,
				TranscriptionStatus:   &completed,
			}
			if detected == notes.LanguageEnglish || detected == notes.LanguageKurdish {
				patch.TranscriptionLanguage = &detected
			}
			return patch, nil
		}
		// Unparseable segment reply: keep the raw text as a flat transcript.
		return notes.UpdateNoteRequest{
			Transcription:       &result.Raw,
			TranscriptionStatus: &completed,
		}, nil
	}

	text, err := h.svc.Transcribe(c.UserContext(), audio, mimeType, lang)
	if err != nil {
		return notes.UpdateNoteRequest{}, err
	}
	return notes.UpdateNoteRequest{
		Transcription:       &text,
		TranscriptionStatus: &completed,
	}, nil
}

func joinSegments(segments []notes.TranscriptionSegment) string {
	var out string
	for i, s := range segments {
		if i > 0 {
			out += " "
		}
		out += s.Text
	}
	return out
}

// Flashcards generates study flashcards from free-standing content
// @Summary Generate flashcards from content with AI
// @Tags enrich
// @Accept json
// @Produce json
// @Param request body ContentRequest true "Content to study"
// @Success 200 {object} enrich.Result[[]enrich.Flashcard]
// @Failure 400 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /enrich/flashcards [post]
func (h *Handlers) Flashcards(c *fiber.Ctx) error {
	var req ContentRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "Flashcards"); err != nil {
		return err
	}
	lang := pickLanguage(req.Language, notes.LanguageEnglish)

	result, err := h.svc.GenerateFlashcards(c.UserContext(), req.Content, lang)
	if err != nil {
		return transportError(err)
	}
	return c.JSON(result)
}

// MindMap generates a mind map from free-standing content
// @Summary Generate a mind map from content with AI
// @Tags enrich
// @Accept json
// @Produce json
// @Param request body ContentRequest true "Content to map"
// @Success 200 {object} enrich.Result[enrich.MindMapNode]
// @Failure 400 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /enrich/mindmap [post]
func (h *Handlers) MindMap(c *fiber.Ctx) error {
	var req ContentRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "MindMap"); err != nil {
		return err
	}
	lang := pickLanguage(req.Language, notes.LanguageEnglish)

	result, err := h.svc.GenerateMindMap(c.UserContext(), req.Content, lang)
	if err != nil {
		return transportError(err)
	}
	return c.JSON(result)
}
