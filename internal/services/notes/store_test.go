package notes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Abdulla090/knote/internal/clients/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// recordBus collects broadcast events for assertions.
type recordBus struct {
	mu     sync.Mutex
	events []NoteEvent
}

func (b *recordBus) Broadcast(_ context.Context, ev NoteEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, ev := range b.events {
		out[i] = ev.Type
	}
	return out
}

// flakyKV wraps a MemoryStore and fails on demand.
type flakyKV struct {
	*kv.MemoryStore
	failGet bool
	failSet bool
}

var errFlaky = errors.New("storage unavailable")

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errFlaky
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errFlaky
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func newTestStore(t *testing.T) (*Store, *kv.MemoryStore, *recordBus) {
	t.Helper()
	mem := kv.NewMemoryStore()
	bus := &recordBus{}
	s := NewStore(mem, bus, silentLogger)
	require.NoError(t, s.Load(context.Background()))
	return s, mem, bus
}

func TestLoadFirstRunStartsEmpty(t *testing.T) {
	s, _, _ := newTestStore(t)
	assert.Empty(t, s.List(ListNotesRequest{}))
	assert.NoError(t, s.LoadError())
}

func TestLoadMigratesMissingColor(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	legacy := `[{"id":"n1","userId":"local","title":"old","content":"a b c",` +
		`"noteType":"text","language":"en","transcriptionStatus":"none",` +
		`"isDeleted":false,"wordCount":3,` +
		`"createdAt":"2024-01-02T03:04:05Z","updatedAt":"2024-01-02T03:04:05Z"}]`
	require.NoError(t, mem.Set(ctx, StorageKey, legacy))

	s := NewStore(mem, &recordBus{}, silentLogger)
	require.NoError(t, s.Load(ctx))

	n, err := s.Get("n1")
	require.NoError(t, err)
	assert.Equal(t, ColorNone, n.Color)
	assert.False(t, n.IsPinned)

	// Migration re-persisted the patched collection.
	stored, ok, err := mem.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, stored, `"color":"none"`)
}

func TestLoadMalformedDataFailsSafe(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)

	s.Create(ctx, CreateNoteRequest{Title: "keep me", Content: "still here"})
	require.Len(t, s.List(ListNotesRequest{}), 1)

	require.NoError(t, mem.Set(ctx, StorageKey, "{not valid json"))

	err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrLoadNotes)
	assert.ErrorIs(t, s.LoadError(), ErrLoadNotes)

	// Collection is never partially populated from a corrupt parse.
	notes := s.List(ListNotesRequest{})
	require.Len(t, notes, 1)
	assert.Equal(t, "keep me", notes[0].Title)
}

func TestLoadStorageErrorFailsSafe(t *testing.T) {
	flaky := &flakyKV{MemoryStore: kv.NewMemoryStore(), failGet: true}
	s := NewStore(flaky, &recordBus{}, silentLogger)

	err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrLoadNotes)
	assert.ErrorIs(t, s.LoadError(), ErrLoadNotes)
	assert.Empty(t, s.List(ListNotesRequest{}))

	// A later retry succeeds and clears the error state.
	flaky.failGet = false
	require.NoError(t, s.Load(context.Background()))
	assert.NoError(t, s.LoadError())
}

func TestCreateComputesWordCount(t *testing.T) {
	s, _, _ := newTestStore(t)

	n := s.Create(context.Background(), CreateNoteRequest{Content: "hello world"})
	assert.Equal(t, 2, n.WordCount)

	empty := s.Create(context.Background(), CreateNoteRequest{})
	assert.Equal(t, 0, empty.WordCount)
}

func TestCreateDefaults(t *testing.T) {
	s, _, bus := newTestStore(t)

	n := s.Create(context.Background(), CreateNoteRequest{Title: "t"})
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, LocalUserID, n.UserID)
	assert.Equal(t, NoteTypeText, n.NoteType)
	assert.Equal(t, LanguageEnglish, n.Language)
	assert.Equal(t, ColorNone, n.Color)
	assert.Equal(t, TranscriptionNone, n.TranscriptionStatus)
	assert.NotNil(t, n.AITags)
	assert.Empty(t, n.AITags)
	assert.NotNil(t, n.ActionItems)
	assert.NotNil(t, n.KeyPoints)
	assert.Nil(t, n.FolderID)
	assert.Nil(t, n.DeletedAt)
	assert.False(t, n.IsDeleted)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)
	assert.Equal(t, []string{EventCreated}, bus.types())
}

func TestCreatePrependsNewestFirst(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	first := s.Create(ctx, CreateNoteRequest{Title: "first"})
	second := s.Create(ctx, CreateNoteRequest{Title: "second"})

	listed := s.List(ListNotesRequest{})
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)
}

func TestUpdateRecomputesWordCount(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	n := s.Create(ctx, CreateNoteRequest{Content: "hello world"})
	require.Equal(t, 2, n.WordCount)

	time.Sleep(5 * time.Millisecond)
	content := "one two three four"
	updated, err := s.Update(ctx, n.ID, UpdateNoteRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.WordCount)
	assert.True(t, updated.UpdatedAt.After(n.UpdatedAt))

	// Fields not in the patch are untouched.
	assert.Equal(t, n.CreatedAt, updated.CreatedAt)
	assert.Equal(t, n.ID, updated.ID)
}

func TestUpdateFallsBackToTranscriptionForWordCount(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	n := s.Create(ctx, CreateNoteRequest{NoteType: NoteTypeVoice})
	transcript := "spoken words from the recording"
	updated, err := s.Update(ctx, n.ID, UpdateNoteRequest{Transcription: &transcript})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.WordCount)
}

func TestIDTargetedOperationsAreNoOpsOnUnknownID(t *testing.T) {
	s, mem, bus := newTestStore(t)
	ctx := context.Background()

	s.Create(ctx, CreateNoteRequest{Title: "anchor", Content: "x"})
	before, ok, err := mem.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	eventsBefore := len(bus.types())

	title := "ghost"
	_, err = s.Update(ctx, "missing", UpdateNoteRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNoteNotFound)
	_, err = s.Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)
	_, err = s.Restore(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.ErrorIs(t, s.PermanentlyDelete(ctx, "missing"), ErrNoteNotFound)
	_, err = s.ToggleFavorite(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)
	_, err = s.TogglePin(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)
	_, err = s.SetColor(ctx, "missing", ColorBlue)
	assert.ErrorIs(t, err, ErrNoteNotFound)
	_, err = s.Duplicate(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)
	_, err = s.MoveToFolder(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrNoteNotFound)

	// Byte-for-byte unchanged: nothing was re-persisted, nothing broadcast.
	after, ok, err := mem.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Len(t, bus.types(), eventsBefore)
}

func TestDeleteRestoreRoundTrip(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	n := s.Create(ctx, CreateNoteRequest{Title: "note", Content: "body text here", Color: ColorGreen})

	deleted, err := s.Delete(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	require.NotNil(t, deleted.DeletedAt)

	restored, err := s.Restore(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, restored.ID)
	assert.False(t, restored.IsDeleted)
	assert.Nil(t, restored.DeletedAt)

	// Field-equal to the original apart from the lifecycle bookkeeping.
	assert.Equal(t, n.Title, restored.Title)
	assert.Equal(t, n.Content, restored.Content)
	assert.Equal(t, n.WordCount, restored.WordCount)
	assert.Equal(t, n.Color, restored.Color)
	assert.Equal(t, n.CreatedAt, restored.CreatedAt)
}

func TestDeleteClearsPin(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	n := s.Create(ctx, CreateNoteRequest{Title: "pinned", IsPinned: true})
	require.True(t, n.IsPinned)

	deleted, err := s.Delete(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, deleted.IsPinned)
}

func TestDeleteTwiceKeepsOriginalTrashTimestamp(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	n := s.Create(ctx, CreateNoteRequest{Title: "x"})
	first, err := s.Delete(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, first.DeletedAt)

	time.Sleep(5 * time.Millisecond)
	second, err := s.Delete(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, second.DeletedAt)
	assert.Equal(t, *first.DeletedAt, *second.DeletedAt)
}

func TestTrashExclusivity(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	folderID := "f1"
	n := s.Create(ctx, CreateNoteRequest{Title: "filed", FolderID: &folderID})
	_, err := s.ToggleFavorite(ctx, n.ID)
	require.NoError(t, err)

	_, err = s.Delete(ctx, n.ID)
	require.NoError(t, err)

	assert.Empty(t, s.List(ListNotesRequest{View: ViewAll}))
	assert.Empty(t, s.List(ListNotesRequest{View: ViewFavorites}))
	assert.Empty(t, s.List(ListNotesRequest{View: ViewFolder, FolderID: folderID}))
	require.Len(t, s.List(ListNotesRequest{View: ViewTrash}), 1)

	_, err = s.Restore(ctx, n.ID)
	require.NoError(t, err)

	assert.Len(t, s.List(ListNotesRequest{View: ViewAll}), 1)
	assert.Len(t, s.List(ListNotesRequest{View: ViewFavorites}), 1)
	assert.Len(t, s.List(ListNotesRequest{View: ViewFolder, FolderID: folderID}), 1)
	assert.Empty(t, s.List(ListNotesRequest{View: ViewTrash}))
}

func TestDuplicateIndependence(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	audio := "file:///recordings/memo.wav"
	duration := 42.5
	n := s.Create(ctx, CreateNoteRequest{
		Title:         "voice memo",
		Content:       "the same content",
		NoteType:      NoteTypeVoice,
		AudioURI:      &audio,
		AudioDuration: &duration,
		IsPinned:      true,
		Color:         ColorPurple,
	})

	dup, err := s.Duplicate(ctx, n.ID)
	require.NoError(t, err)

	assert.NotEqual(t, n.ID, dup.ID)
	assert.Equal(t, "voice memo (Copy)", dup.Title)
	assert.Equal(t, n.Content, dup.Content)
	assert.Equal(t, n.Color, dup.Color)
	assert.Nil(t, dup.AudioURI, "voice attachments are not duplicated")
	assert.Nil(t, dup.AudioDuration)
	assert.False(t, dup.IsPinned)
	assert.False(t, dup.IsDeleted)
	assert.Nil(t, dup.DeletedAt)
	assert.False(t, dup.CreatedAt.Before(n.CreatedAt))

	// The original keeps its attachment.
	orig, err := s.Get(n.ID)
	require.NoError(t, err)
	assert.NotNil(t, orig.AudioURI)
}

func TestTrashLifecycleScenario(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	n := s.Create(ctx, CreateNoteRequest{Content: "hello world"})
	require.Equal(t, 2, n.WordCount)

	content := "one two three four"
	updated, err := s.Update(ctx, n.ID, UpdateNoteRequest{Content: &content})
	require.NoError(t, err)
	require.Equal(t, 4, updated.WordCount)

	_, err = s.Delete(ctx, n.ID)
	require.NoError(t, err)
	assert.Len(t, s.List(ListNotesRequest{View: ViewTrash}), 1)
	assert.Empty(t, s.List(ListNotesRequest{View: ViewAll}))

	_, err = s.Restore(ctx, n.ID)
	require.NoError(t, err)
	assert.Empty(t, s.List(ListNotesRequest{View: ViewTrash}))
	assert.Len(t, s.List(ListNotesRequest{View: ViewAll}), 1)

	_, err = s.Delete(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.EmptyTrash(ctx))

	_, err = s.Get(n.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
	assert.Empty(t, s.List(ListNotesRequest{View: ViewTrash}))
}

func TestEmptyTrashOnlyRemovesTrashed(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	keep := s.Create(ctx, CreateNoteRequest{Title: "keep"})
	gone := s.Create(ctx, CreateNoteRequest{Title: "gone"})
	_, err := s.Delete(ctx, gone.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, s.EmptyTrash(ctx))
	assert.Equal(t, 0, s.EmptyTrash(ctx), "second call finds nothing")

	_, err = s.Get(keep.ID)
	assert.NoError(t, err)
	_, err = s.Get(gone.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestRestoreAllTrash(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	a := s.Create(ctx, CreateNoteRequest{Title: "a"})
	b := s.Create(ctx, CreateNoteRequest{Title: "b"})
	_, err := s.Delete(ctx, a.ID)
	require.NoError(t, err)
	_, err = s.Delete(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, s.List(ListNotesRequest{View: ViewTrash}), 2)

	assert.Equal(t, 2, s.RestoreAllTrash(ctx))
	assert.Empty(t, s.List(ListNotesRequest{View: ViewTrash}))
	assert.Len(t, s.List(ListNotesRequest{View: ViewAll}), 2)

	for _, id := range []string{a.ID, b.ID} {
		n, err := s.Get(id)
		require.NoError(t, err)
		assert.False(t, n.IsDeleted)
		assert.Nil(t, n.DeletedAt)
	}
}

func TestMoveToFolderAndUnfile(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	folderID := "f-work"
	n := s.Create(ctx, CreateNoteRequest{Title: "task"})

	moved, err := s.MoveToFolder(ctx, n.ID, &folderID)
	require.NoError(t, err)
	require.NotNil(t, moved.FolderID)
	assert.Equal(t, folderID, *moved.FolderID)

	unfiled, err := s.MoveToFolder(ctx, n.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, unfiled.FolderID)
}

func TestUnfileFolder(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	folderID := "f-doomed"
	other := "f-other"
	s.Create(ctx, CreateNoteRequest{Title: "in doomed", FolderID: &folderID})
	trashed := s.Create(ctx, CreateNoteRequest{Title: "trashed in doomed", FolderID: &folderID})
	s.Create(ctx, CreateNoteRequest{Title: "elsewhere", FolderID: &other})
	_, err := s.Delete(ctx, trashed.ID)
	require.NoError(t, err)

	// Trashed notes are unfiled too - nothing may reference a dead folder id.
	assert.Equal(t, 2, s.UnfileFolder(ctx, folderID))
	assert.Equal(t, 0, s.UnfileFolder(ctx, folderID))

	for _, n := range s.List(ListNotesRequest{View: ViewAll}) {
		if n.FolderID != nil {
			assert.Equal(t, other, *n.FolderID)
		}
	}
	tn, err := s.Get(trashed.ID)
	require.NoError(t, err)
	assert.Nil(t, tn.FolderID)
}

func TestToggles(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	n := s.Create(ctx, CreateNoteRequest{Title: "x"})

	fav, err := s.ToggleFavorite(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, fav.IsFavorite)
	fav, err = s.ToggleFavorite(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, fav.IsFavorite)

	pinned, err := s.TogglePin(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, pinned.IsPinned)
}

func TestSetColor(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	n := s.Create(ctx, CreateNoteRequest{Title: "x"})

	colored, err := s.SetColor(ctx, n.ID, ColorBlue)
	require.NoError(t, err)
	assert.Equal(t, ColorBlue, colored.Color)

	_, err = s.SetColor(ctx, n.ID, Color("magenta"))
	assert.ErrorIs(t, err, ErrInvalidColor)
}

func TestListFilters(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	s.Create(ctx, CreateNoteRequest{Title: "Meeting notes", Content: "discuss roadmap", Color: ColorBlue})
	s.Create(ctx, CreateNoteRequest{Title: "Groceries", Content: "milk eggs bread", Color: ColorGreen})
	pinned := s.Create(ctx, CreateNoteRequest{Title: "Important", Content: "remember the meeting", IsPinned: true})

	byQuery := s.List(ListNotesRequest{Q: "meeting"})
	assert.Len(t, byQuery, 2)

	byColor := s.List(ListNotesRequest{Color: ColorGreen})
	require.Len(t, byColor, 1)
	assert.Equal(t, "Groceries", byColor[0].Title)

	ordered := s.List(ListNotesRequest{PinnedFirst: true})
	require.Len(t, ordered, 3)
	assert.Equal(t, pinned.ID, ordered[0].ID)
}

func TestCounts(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	folderID := "f1"
	s.Create(ctx, CreateNoteRequest{Title: "plain"})
	s.Create(ctx, CreateNoteRequest{Title: "filed", FolderID: &folderID})
	fav := s.Create(ctx, CreateNoteRequest{Title: "fav"})
	_, err := s.ToggleFavorite(ctx, fav.ID)
	require.NoError(t, err)
	trashed := s.Create(ctx, CreateNoteRequest{Title: "trashed", FolderID: &folderID})
	_, err = s.Delete(ctx, trashed.ID)
	require.NoError(t, err)

	counts := s.Counts()
	assert.Equal(t, 3, counts.All)
	assert.Equal(t, 1, counts.Favorites)
	assert.Equal(t, 1, counts.Trash)
	assert.Equal(t, 1, counts.PerFolder[folderID])
}

func TestPersistedCollectionSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()

	s1 := NewStore(mem, &recordBus{}, silentLogger)
	require.NoError(t, s1.Load(ctx))
	created := s1.Create(ctx, CreateNoteRequest{Title: "persisted", Content: "two words", Color: ColorRed})

	s2 := NewStore(mem, &recordBus{}, silentLogger)
	require.NoError(t, s2.Load(ctx))

	reloaded, err := s2.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "persisted", reloaded.Title)
	assert.Equal(t, 2, reloaded.WordCount)
	assert.Equal(t, ColorRed, reloaded.Color)
	assert.True(t, created.CreatedAt.Equal(reloaded.CreatedAt))
}

func TestPersistFailureKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyKV{MemoryStore: kv.NewMemoryStore()}
	s := NewStore(flaky, &recordBus{}, silentLogger)
	require.NoError(t, s.Load(ctx))

	flaky.failSet = true
	n := s.Create(ctx, CreateNoteRequest{Title: "optimistic"})

	// The durable write failed but memory never rolls back.
	got, err := s.Get(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "optimistic", got.Title)

	_, ok, err := flaky.MemoryStore.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok, "nothing reached the adapter")
}
