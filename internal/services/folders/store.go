package folders

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Abdulla090/knote/internal/clients/kv"
	"github.com/Abdulla090/knote/internal/utils/identifier"
	"github.com/Abdulla090/knote/internal/utils/sanitize"
)

// StorageKey is the fixed adapter key the whole collection is persisted under.
const StorageKey = "folders"

// LocalUserID marks every folder; the system is single-user.
const LocalUserID = "local"

// Bus defines the interface for event broadcasting
type Bus interface {
	Broadcast(ctx context.Context, ev FolderEvent)
}

// NoteLinks is the slice of the notes store a folder delete needs: before a
// folder id disappears, every note referencing it must be unfiled.
type NoteLinks interface {
	UnfileFolder(ctx context.Context, folderID string) int
}

// Store owns the authoritative in-memory list of folders, including seeding
// the fixed default set on first run. Mutations update memory first, then
// rewrite the whole collection through the persistence adapter; a failed
// write never rolls memory back.
type Store struct {
	mu      sync.RWMutex
	folders []*Folder
	loaded  bool
	loadErr error

	kv    kv.Store
	bus   Bus
	notes NoteLinks
	log   *slog.Logger
}

// NewStore creates a folders store. Load must be called before use.
func NewStore(kvStore kv.Store, bus Bus, notes NoteLinks, log *slog.Logger) *Store {
	return &Store{
		folders: []*Folder{},
		kv:      kvStore,
		bus:     bus,
		notes:   notes,
		log:     log,
	}
}

// Load reads the persisted collection. First run seeds the six default
// folders and persists them. Stored folders get a one-time icon migration
// (legacy emoji icons mapped to icon keys) that is re-persisted only when it
// changed something. Malformed or unreadable data fails safe.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		s.recordLoadErr(err)
		return ErrLoadFolders
	}

	if !ok {
		seeded := seedDefaults()
		s.mu.Lock()
		s.folders = seeded
		s.loaded = true
		s.loadErr = nil
		snapshot := s.snapshotLocked()
		s.mu.Unlock()

		s.persist(ctx, snapshot)
		return nil
	}

	var parsed []*Folder
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.recordLoadErr(err)
		return ErrLoadFolders
	}

	migrated := false
	for i, f := range parsed {
		if icon, legacy := legacyIconKeys[f.Icon]; legacy {
			patched := *f
			patched.Icon = icon
			parsed[i] = &patched
			migrated = true
		}
	}

	s.mu.Lock()
	s.folders = parsed
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

func seedDefaults() []*Folder {
	now := time.Now().UTC()
	out := make([]*Folder, len(defaultFolders))
	for i, seed := range defaultFolders {
		nameKu := seed.nameKu
		out[i] = &Folder{
			ID:        fmt.Sprintf("default_%d", i),
			UserID:    LocalUserID,
			Name:      seed.name,
			NameKu:    &nameKu,
			Icon:      seed.icon,
			Color:     seed.color,
			IsDefault: true,
			SortOrder: i,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return out
}

func (s *Store) recordLoadErr(err error) {
	s.log.Error(ErrLoadFolders.Error(), "err", err)
	s.mu.Lock()
	s.loadErr = ErrLoadFolders
	s.mu.Unlock()
}

// LoadError returns the error state of the last Load, if any.
func (s *Store) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Create appends a new non-default folder. Its sort order is the current
// collection length, so new folders land after everything else.
func (s *Store) Create(ctx context.Context, req CreateFolderRequest) *Folder {
	now := time.Now().UTC()

	folder := &Folder{
		ID:        identifier.New(),
		UserID:    LocalUserID,
		Name:      sanitize.Clean(req.Name),
		NameKu:    req.NameKu,
		Icon:      req.Icon,
		Color:     req.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if folder.Icon == "" {
		folder.Icon = DefaultIcon
	}
	if folder.Color == "" {
		folder.Color = DefaultColor
	}

	s.mu.Lock()
	folder.SortOrder = len(s.folders)
	s.folders = append(s.folders, folder)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.bus.Broadcast(ctx, FolderEvent{Type: EventCreated, Folder: folder})
	return folder
}

// Update merges the non-nil fields of req into the folder and bumps updatedAt.
func (s *Store) Update(ctx context.Context, id string, req UpdateFolderRequest) (*Folder, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, ErrFolderNotFound
	}

	patched := *s.folders[i]
	if req.Name != nil {
		patched.Name = sanitize.Clean(*req.Name)
	}
	if req.NameKu != nil {
		patched.NameKu = req.NameKu
	}
	if req.Icon != nil {
		patched.Icon = *req.Icon
	}
	if req.Color != nil {
		patched.Color = *req.Color
	}
	if req.SortOrder != nil {
		patched.SortOrder = *req.SortOrder
	}
	patched.UpdatedAt = time.Now().UTC()
	s.folders[i] = &patched
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.bus.Broadcast(ctx, FolderEvent{Type: EventUpdated, Folder: &patched})
	return &patched, nil
}

// Delete removes a non-default folder. Every note referencing it is unfiled
// first, so no note is ever left pointing at a dead folder id. Deleting a
// default folder is rejected.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.RLock()
	i := s.indexLocked(id)
	var isDefault bool
	if i >= 0 {
		isDefault = s.folders[i].IsDefault
	}
	s.mu.RUnlock()

	if i < 0 {
		return ErrFolderNotFound
	}
	if isDefault {
		return ErrDefaultFolder
	}

	if unfiled := s.notes.UnfileFolder(ctx, id); unfiled > 0 {
		s.log.Info("unfiled notes from deleted folder", "folder_id", id, "count", unfiled)
	}

	s.mu.Lock()
	i = s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrFolderNotFound
	}
	removed := s.folders[i]
	s.folders = append(s.folders[:i], s.folders[i+1:]...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.bus.Broadcast(ctx, FolderEvent{Type: EventDeleted, Folder: removed})
	return nil
}

// Get returns the folder with the given id.
func (s *Store) Get(id string) (*Folder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.folders[i], nil
	}
	return nil, ErrFolderNotFound
}

// List returns the folders in collection order (defaults first, then
// creation order, which matches sortOrder for an unmodified collection).
func (s *Store) List() []*Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Folder, len(s.folders))
	copy(out, s.folders)
	return out
}

func (s *Store) indexLocked(id string) int {
	for i, f := range s.folders {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() string {
	b, err := json.Marshal(s.folders)
	if err != nil {
		s.log.Error("failed to serialize folders", "err", err)
		return ""
	}
	return string(b)
}

func (s *Store) persist(ctx context.Context, snapshot string) {
	if snapshot == "" {
		return
	}
	if err := s.kv.Set(context.WithoutCancel(ctx), StorageKey, snapshot); err != nil {
		kv.IncWriteFailure(StorageKey)
		s.log.Error("failed to persist folders", "err", err)
	}
}
