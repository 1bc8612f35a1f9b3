package enrich

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Abdulla090/knote/internal/clients/gemini"
	"github.com/Abdulla090/knote/internal/services/notes"

	"github.com/patrickmn/go-cache"
)

// Generator is the slice of the Gemini client the service needs.
type Generator interface {
	Generate(ctx context.Context, parts ...gemini.Part) (string, error)
}

// Service wraps the model client with the note-taking prompt set, response
// parsing and a TTL cache. Identical requests within the TTL are answered
// from cache instead of re-calling the model.
type Service struct {
	gen   Generator
	cache *cache.Cache
	log   *slog.Logger
}

// NewService creates an enrichment service with the given cache TTL.
func NewService(gen Generator, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		gen:   gen,
		cache: cache.New(ttl, 2*ttl),
		log:   log,
	}
}

// Transcribe turns base64-encoded audio into plain text.
func (s *Service) Transcribe(ctx context.Context, audioB64, mimeType string, lang notes.Language) (string, error) {
	raw, err := s.generate(ctx, cacheKey("transcribe", string(lang), mimeType, audioB64),
		gemini.Part{InlineData: &gemini.Blob{MIMEType: mimeType, Data: audioB64}},
		gemini.Part{Text: transcribePrompt(lang)},
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// TranscribeSegments turns base64-encoded audio into a timestamped
// transcript with speaker labels.
func (s *Service) TranscribeSegments(ctx context.Context, audioB64, mimeType string, lang notes.Language) (Result[Transcript], error) {
	raw, err := s.generate(ctx, cacheKey("transcribe-segments", string(lang), mimeType, audioB64),
		gemini.Part{InlineData: &gemini.Blob{MIMEType: mimeType, Data: audioB64}},
		gemini.Part{Text: transcribeSegmentsPrompt(lang)},
	)
	if err != nil {
		return Result[Transcript]{}, err
	}
	return parseJSON[Transcript](raw), nil
}

// Summarize produces a summary of the given content at the requested level.
func (s *Service) Summarize(ctx context.Context, content string, level notes.SummaryLevel, lang notes.Language) (string, error) {
	return s.textOp(ctx, cacheKey("summarize", string(level), string(lang), content), summarizePrompt(level, lang), content)
}

// GenerateTitle produces a short descriptive title for the content.
func (s *Service) GenerateTitle(ctx context.Context, content string, lang notes.Language) (string, error) {
	return s.textOp(ctx, cacheKey("title", string(lang), content), titlePrompt(lang), content)
}

// GenerateTags suggests 2-5 tags for the content.
func (s *Service) GenerateTags(ctx context.Context, content string, lang notes.Language) (Result[[]string], error) {
	raw, err := s.promptOp(ctx, cacheKey("tags", string(lang), content), tagsPrompt(lang), content)
	if err != nil {
		return Result[[]string]{}, err
	}
	return parseJSON[[]string](raw), nil
}

// Categorize picks the best matching folder name for the content.
func (s *Service) Categorize(ctx context.Context, content string, folderNames []string) (Result[Category], error) {
	raw, err := s.promptOp(ctx, cacheKey("categorize", strings.Join(folderNames, ","), content), categorizePrompt(folderNames), content)
	if err != nil {
		return Result[Category]{}, err
	}
	return parseJSON[Category](raw), nil
}

// ExtractActionItems pulls tasks and to-dos out of the content.
func (s *Service) ExtractActionItems(ctx context.Context, content string, lang notes.Language) (Result[[]notes.ActionItem], error) {
	raw, err := s.promptOp(ctx, cacheKey("action-items", string(lang), content), actionItemsPrompt(lang), content)
	if err != nil {
		return Result[[]notes.ActionItem]{}, err
	}
	return parseJSON[[]notes.ActionItem](raw), nil
}

// ExtractKeyPoints pulls the most important points out of the content.
func (s *Service) ExtractKeyPoints(ctx context.Context, content string, lang notes.Language) (Result[[]string], error) {
	raw, err := s.promptOp(ctx, cacheKey("key-points", string(lang), content), keyPointsPrompt(lang), content)
	if err != nil {
		return Result[[]string]{}, err
	}
	return parseJSON[[]string](raw), nil
}

// AnalyzeMood reads the emotional tone of the content.
func (s *Service) AnalyzeMood(ctx context.Context, content string) (Result[Mood], error) {
	raw, err := s.promptOp(ctx, cacheKey("mood", content), moodPrompt(), content)
	if err != nil {
		return Result[Mood]{}, err
	}
	return parseJSON[Mood](raw), nil
}

// Translate translates text to the target language.
func (s *Service) Translate(ctx context.Context, text string, target notes.Language) (string, error) {
	return s.textOp(ctx, cacheKey("translate", string(target), text), translatePrompt(target), text)
}

// GenerateFlashcards produces study flashcards from the content.
func (s *Service) GenerateFlashcards(ctx context.Context, content string, lang notes.Language) (Result[[]Flashcard], error) {
	raw, err := s.promptOp(ctx, cacheKey("flashcards", string(lang), content), flashcardsPrompt(lang), content)
	if err != nil {
		return Result[[]Flashcard]{}, err
	}
	return parseJSON[[]Flashcard](raw), nil
}

// GenerateMindMap produces a hierarchical mind map from the content.
func (s *Service) GenerateMindMap(ctx context.Context, content string, lang notes.Language) (Result[MindMapNode], error) {
	raw, err := s.promptOp(ctx, cacheKey("mindmap", string(lang), content), mindMapPrompt(lang), content)
	if err != nil {
		return Result[MindMapNode]{}, err
	}
	return parseJSON[MindMapNode](raw), nil
}

// textOp runs a plain-text prompt over content and trims the reply.
func (s *Service) textOp(ctx context.Context, key, prompt, content string) (string, error) {
	raw, err := s.promptOp(ctx, key, prompt, content)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// promptOp joins prompt and content into one user turn.
func (s *Service) promptOp(ctx context.Context, key, prompt, content string) (string, error) {
	return s.generate(ctx, key, gemini.Part{Text: prompt + "\n\n---\n\n" + content})
}

// generate answers from cache when possible, otherwise calls the model and
// caches the raw reply under the key.
func (s *Service) generate(ctx context.Context, key string, parts ...gemini.Part) (string, error) {
	if cached, ok := s.cache.Get(key); ok {
		return cached.(string), nil
	}

	raw, err := s.gen.Generate(ctx, parts...)
	if err != nil {
		return "", err
	}

	s.cache.Set(key, raw, cache.DefaultExpiration)
	return raw, nil
}

// cacheKey hashes the operation and its inputs so cache entries stay small
// regardless of content size.
func cacheKey(op string, inputs ...string) string {
	h := sha256.New()
	for _, in := range inputs {
		h.Write([]byte(in))
		h.Write([]byte{0})
	}
	return op + ":" + hex.EncodeToString(h.Sum(nil))
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// stripFences unwraps a markdown code fence if the model added one.
func stripFences(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// parseJSON attempts to decode the model's reply. A reply that does not
// parse is still returned raw so callers can surface it.
func parseJSON[T any](raw string) Result[T] {
	var value T
	if err := json.Unmarshal([]byte(stripFences(raw)), &value); err != nil {
		return Result[T]{Raw: raw, Parsed: false}
	}
	return Result[T]{Value: value, Raw: raw, Parsed: true}
}
