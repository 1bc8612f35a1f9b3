package notes

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Abdulla090/knote/internal/clients/kv"
	"github.com/Abdulla090/knote/internal/utils/identifier"
	"github.com/Abdulla090/knote/internal/utils/sanitize"
)

// StorageKey is the fixed adapter key the whole collection is persisted under.
const StorageKey = "notes"

// LocalUserID marks every note; the system is single-user.
const LocalUserID = "local"

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev NoteEvent)
}

// Store owns the authoritative in-memory list of notes and enforces the
// note lifecycle rules. Every mutation updates memory first, then rewrites
// the whole collection through the persistence adapter; readers observe the
// new state before the durable write lands, and a failed write never rolls
// memory back.
type Store struct {
	mu      sync.RWMutex
	notes   []*Note
	loaded  bool
	loadErr error

	kv  kv.Store
	bus Bus
	log *slog.Logger
}

// NewStore creates a notes store. Load must be called before use.
func NewStore(kvStore kv.Store, bus Bus, log *slog.Logger) *Store {
	return &Store{
		notes: []*Note{},
		kv:    kvStore,
		bus:   bus,
		log:   log,
	}
}

// Load reads the persisted collection. First run leaves the collection
// empty; stored notes get a one-time field migration (missing color filled
// with the default) that is re-persisted only when it changed something.
// Malformed or unreadable data fails safe: the in-memory collection stays
// as it was and the error is recorded for LoadError. Calling Load again
// simply reloads.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.recordLoadErr(err)
		return ErrLoadNotes
	}

	if !ok {
		s.mu.Lock()
		s.notes = []*Note{}
		s.loaded = true
		s.loadErr = nil
		s.mu.Unlock()
		return nil
	}

	var parsed []*Note
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.recordLoadErr(err)
		return ErrLoadNotes
	}

	migrated := false
	for i, n := range parsed {
		if n.Color == "" {
			patched := *n
			patched.Color = ColorNone
			parsed[i] = &patched
			migrated = true
		}
	}

	s.mu.Lock()
	s.notes = parsed
	s.loaded = true
	s.loadErr = nil
	var snapshot string
	if migrated {
		snapshot = s.snapshotLocked()
	}
	s.mu.Unlock()

	if migrated {
		s.persist(ctx, snapshot)
	}
	return nil
}

func (s *Store) recordLoadErr(err error) {
	s.log.Error(ErrLoadNotes.Error(), "err", err)
	s.mu.Lock()
	s.loadErr = ErrLoadNotes
	s.mu.Unlock()
}

// LoadError returns the error state of the last Load, if any.
func (s *Store) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Create synthesizes a full note from the request, prepends it to the
// collection (newest-first is a property of insertion) and persists.
func (s *Store) Create(ctx context.Context, req CreateNoteRequest) *Note {
	now := time.Now().UTC()
	content := sanitize.Clean(req.Content)

	note := &Note{
		ID:                  identifier.New(),
		UserID:              LocalUserID,
		FolderID:            req.FolderID,
		Title:               sanitize.Clean(req.Title),
		Content:             content,
		NoteType:            req.NoteType,
		Language:            req.Language,
		AudioURI:            req.AudioURI,
		AudioDuration:       req.AudioDuration,
		TranscriptionStatus: TranscriptionNone,
		AITags:              []string{},
		ActionItems:         []ActionItem{},
		KeyPoints:           []string{},
		Color:               req.Color,
		WordCount:           countWords(content),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if note.NoteType == "" {
		note.NoteType = NoteTypeText
	}
	if note.Language == "" {
		note.Language = LanguageEnglish
	}
	if note.Color == "" {
		note.Color = ColorNone
	}
	note.IsPinned = req.IsPinned

	s.mu.Lock()
	s.notes = append([]*Note{note}, s.notes...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.bus.Broadcast(ctx, NoteEvent{Type: EventCreated, Note: note})
	return note
}

// Update merges the non-nil fields of req into the note, bumps updatedAt
// and recomputes the word count when content changed.
func (s *Store) Update(ctx context.Context, id string, req UpdateNoteRequest) (*Note, error) {
	note, err := s.mutate(ctx, id, func(n *Note) {
		applyPatch(n, req)
		n.UpdatedAt = time.Now().UTC()
	})
	if err != nil {
		return nil, err
	}
	s.bus.Broadcast(ctx, NoteEvent{Type: EventUpdated, Note: note})
	return note, nil
}

// Delete soft-deletes: the note leaves every active view but stays stored.
// Deleting unpins. deletedAt is only stamped on the false->true transition,
// so deleting twice keeps the original trash timestamp.
func (s *Store) Delete(ctx context.Context, id string) (*Note, error) {
	note, err := s.mutate(ctx, id, func(n *Note) {
		if n.IsDeleted {
			return
		}
		now := time.Now().UTC()
		n.IsDeleted = true
		n.DeletedAt = &now
		n.IsPinned = false
	})
	if err != nil {
		return nil, err
	}
	s.bus.Broadcast(ctx, NoteEvent{Type: EventDeleted, Note: note})
	return note, nil
}

// Restore is the inverse of Delete.
func (s *Store) Restore(ctx context.Context, id string) (*Note, error) {
	note, err := s.mutate(ctx, id, func(n *Note) {
		n.IsDeleted = false
		n.DeletedAt = nil
	})
	if err != nil {
		return nil, err
	}
	s.bus.Broadcast(ctx, NoteEvent{Type: EventRestored, Note: note})
	return note, nil
}

// PermanentlyDelete removes the note from the collection entirely.
func (s *Store) PermanentlyDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNoteNotFound
	}
	purged := s.notes[i]
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.bus.Broadcast(ctx, NoteEvent{Type: EventPurged, Note: purged})
	return nil
}

// ToggleFavorite flips the favorite flag.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (*Note, error) {
	note, err := s.mutate(ctx, id, func(n *Note) {
		n.IsFavorite = !n.IsFavorite
		n.UpdatedAt = time.Now().UTC()
	})
	if err != nil {
		return nil, err
	}
	s.bus.Broadcast(ctx, NoteEvent{Type: EventUpdated, Note: note})
	return note, nil
}

// TogglePin flips the pin flag.
func (s *Store) TogglePin(ctx context.Context, id string) (*Note, error) {
	note, err := s.mutate(ctx, id, func(n *Note) {
		n.IsPinned = !n.IsPinned
		n.UpdatedAt = time.Now().UTC()
	})
	if err != nil {
		return nil, err
	}
	s.bus.Broadcast(ctx, NoteEvent{Type: EventUpdated, Note: note})
	return note, nil
}

// SetColor sets the color label to one of the palette keys.
func (s *Store) SetColor(ctx context.Context, id string, color Color) (*Note, error) {
	if !color.Valid() {
		return nil, ErrInvalidColor
	}
	note, err := s.mutate(ctx, id, func(n *Note) {
		n.Color = color
		n.UpdatedAt = time.Now().UTC()
	})
	if err != nil {
		return nil, err
	}
	s.bus.Broadcast(ctx, NoteEvent{Type: EventUpdated, Note: note})
	return note, nil
}

// MoveToFolder sets folderId; nil unfiles the note.
func (s *Store) MoveToFolder(ctx context.Context, id string, folderID *string) (*Note, error) {
	note, err := s.mutate(ctx, id, func(n *Note) {
		n.FolderID = folderID
		n.UpdatedAt = time.Now().UTC()
	})
	if err != nil {
		return nil, err
	}
	s.bus.Broadcast(ctx, NoteEvent{Type: EventUpdated, Note: note})
	return note, nil
}

// Duplicate copies a note under a new identifier. Pin and trash state reset,
// the audio attachment is not carried over, timestamps restart at now;
// everything else is copied verbatim.
func (s *Store) Duplicate(ctx context.Context, id string) (*Note, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, ErrNoteNotFound
	}

	now := time.Now().UTC()
	dup := *s.notes[i]
	dup.ID = identifier.New()
	dup.Title = dup.Title + " (Copy)"
	dup.IsPinned = false
	dup.IsDeleted = false
	dup.DeletedAt = nil
	dup.AudioURI = nil
	dup.AudioDuration = nil
	dup.CreatedAt = now
	dup.UpdatedAt = now

	s.notes = append([]*Note{&dup}, s.notes...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.bus.Broadcast(ctx, NoteEvent{Type: EventCreated, Note: &dup})
	return &dup, nil
}

// EmptyTrash permanently removes every soft-deleted note in one persisted
// batch. Returns how many notes were purged.
func (s *Store) EmptyTrash(ctx context.Context) int {
	s.mu.Lock()
	kept := make([]*Note, 0, len(s.notes))
	var purged []*Note
	for _, n := range s.notes {
		if n.IsDeleted {
			purged = append(purged, n)
			continue
		}
		kept = append(kept, n)
	}
	if len(purged) == 0 {
		s.mu.Unlock()
		return 0
	}
	s.notes = kept
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	for _, n := range purged {
		s.bus.Broadcast(ctx, NoteEvent{Type: EventPurged, Note: n})
	}
	return len(purged)
}

// RestoreAllTrash restores every soft-deleted note in one persisted batch.
// Returns how many notes were restored.
func (s *Store) RestoreAllTrash(ctx context.Context) int {
	s.mu.Lock()
	var restored []*Note
	for i, n := range s.notes {
		if !n.IsDeleted {
			continue
		}
		patched := *n
		patched.IsDeleted = false
		patched.DeletedAt = nil
		s.notes[i] = &patched
		restored = append(restored, &patched)
	}
	if len(restored) == 0 {
		s.mu.Unlock()
		return 0
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	for _, n := range restored {
		s.bus.Broadcast(ctx, NoteEvent{Type: EventRestored, Note: n})
	}
	return len(restored)
}

// UnfileFolder nulls out folderId on every note referencing the folder.
// The folders store calls this before removing a folder so no note is left
// pointing at a dead id. Returns how many notes were unfiled.
func (s *Store) UnfileFolder(ctx context.Context, folderID string) int {
	s.mu.Lock()
	var unfiled []*Note
	now := time.Now().UTC()
	for i, n := range s.notes {
		if n.FolderID == nil || *n.FolderID != folderID {
			continue
		}
		patched := *n
		patched.FolderID = nil
		patched.UpdatedAt = now
		s.notes[i] = &patched
		unfiled = append(unfiled, &patched)
	}
	if len(unfiled) == 0 {
		s.mu.Unlock()
		return 0
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	for _, n := range unfiled {
		s.bus.Broadcast(ctx, NoteEvent{Type: EventUpdated, Note: n})
	}
	return len(unfiled)
}

// Get returns the note with the given id.
func (s *Store) Get(id string) (*Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.notes[i], nil
	}
	return nil, ErrNoteNotFound
}

// List filters the collection by view, search text and color. Order is the
// collection order (newest first) with an optional pinned-first pass.
func (s *Store) List(req ListNotesRequest) []*Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Note, 0, len(s.notes))
	for _, n := range s.notes {
		if !matchesView(n, req.View, req.FolderID) {
			continue
		}
		if req.Color != "" && n.Color != req.Color {
			continue
		}
		if req.Q != "" && !matchesQuery(n, req.Q) {
			continue
		}
		out = append(out, n)
	}

	if req.PinnedFirst && req.View != ViewTrash {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].IsPinned && !out[j].IsPinned
		})
	}
	return out
}

// Counts computes the live per-view and per-folder note counts.
func (s *Store) Counts() ViewCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := ViewCounts{PerFolder: make(map[string]int)}
	for _, n := range s.notes {
		if n.IsDeleted {
			counts.Trash++
			continue
		}
		counts.All++
		if n.IsFavorite {
			counts.Favorites++
		}
		if n.FolderID != nil {
			counts.PerFolder[*n.FolderID]++
		}
	}
	return counts
}

// matchesView implements the smart-folder predicates: All Notes and
// Favorites hide trashed notes, Trash shows only them, and plain folders
// follow the stored folderId link.
func matchesView(n *Note, view View, folderID string) bool {
	switch view {
	case ViewTrash:
		return n.IsDeleted
	case ViewFavorites:
		return n.IsFavorite && !n.IsDeleted
	case ViewFolder:
		return !n.IsDeleted && n.FolderID != nil && *n.FolderID == folderID
	default: // ViewAll
		return !n.IsDeleted
	}
}

func matchesQuery(n *Note, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	return n.Transcription != nil && strings.Contains(strings.ToLower(*n.Transcription), q)
}

// mutate applies fn to a copy of the note with the given id, swaps the copy
// in and persists. Notes are never modified in place, so pointers handed to
// readers stay consistent snapshots.
func (s *Store) mutate(ctx context.Context, id string, fn func(n *Note)) (*Note, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, ErrNoteNotFound
	}

	patched := *s.notes[i]
	fn(&patched)
	s.notes[i] = &patched
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return &patched, nil
}

func (s *Store) indexLocked(id string) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() string {
	b, err := json.Marshal(s.notes)
	if err != nil {
		s.log.Error("failed to serialize notes", "err", err)
		return ""
	}
	return string(b)
}

// persist durably rewrites the whole collection. Failures are logged and
// counted but never surfaced: memory already holds the new state and is
// never rolled back. The write keeps going even if the caller's request
// context has been cancelled.
func (s *Store) persist(ctx context.Context, snapshot string) {
	if snapshot == "" {
		return
	}
	if err := s.kv.Set(context.WithoutCancel(ctx), StorageKey, snapshot); err != nil {
		kv.IncWriteFailure(StorageKey)
		s.log.Error("failed to persist notes", "err", err)
	}
}

// applyPatch merges the non-nil fields of req into n and recomputes the
// word count when content (or its transcription fallback) changed.
func applyPatch(n *Note, req UpdateNoteRequest) {
	recount := false

	if req.Title != nil {
		n.Title = sanitize.Clean(*req.Title)
	}
	if req.Content != nil {
		n.Content = sanitize.Clean(*req.Content)
		recount = true
	}
	if req.IsPinned != nil {
		n.IsPinned = *req.IsPinned
	}
	if req.IsFavorite != nil {
		n.IsFavorite = *req.IsFavorite
	}
	if req.IsArchived != nil {
		n.IsArchived = *req.IsArchived
	}
	if req.Color != nil {
		n.Color = *req.Color
	}
	if req.Language != nil {
		n.Language = *req.Language
	}
	if req.Transcription != nil {
		n.Transcription = req.Transcription
		recount = true
	}
	if req.TranscriptionSegments != nil {
		n.TranscriptionSegments = req.TranscriptionSegments
	}
	if req.TranscriptionLanguage != nil {
		n.TranscriptionLanguage = req.TranscriptionLanguage
	}
	if req.TranscriptionStatus != nil {
		n.TranscriptionStatus = *req.TranscriptionStatus
	}
	if req.Summary != nil {
		n.Summary = req.Summary
	}
	if req.SummaryLevel != nil {
		n.SummaryLevel = req.SummaryLevel
	}
	if req.AITitle != nil {
		n.AITitle = req.AITitle
	}
	if req.AITags != nil {
		n.AITags = req.AITags
	}
	if req.AICategory != nil {
		n.AICategory = req.AICategory
	}
	if req.AIConfidence != nil {
		n.AIConfidence = req.AIConfidence
	}
	if req.ActionItems != nil {
		n.ActionItems = req.ActionItems
	}
	if req.KeyPoints != nil {
		n.KeyPoints = req.KeyPoints
	}
	if req.AIMood != nil {
		n.AIMood = req.AIMood
	}
	if req.AIMoodReason != nil {
		n.AIMoodReason = req.AIMoodReason
	}
	if req.AIMoodScore != nil {
		n.AIMoodScore = req.AIMoodScore
	}

	if recount {
		text := n.Content
		if text == "" && n.Transcription != nil {
			text = *n.Transcription
		}
		n.WordCount = countWords(text)
	}
}

// countWords counts whitespace-separated non-empty tokens.
func countWords(text string) int {
	return len(strings.Fields(text))
}
