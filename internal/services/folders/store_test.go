package folders

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Abdulla090/knote/internal/clients/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordBus struct {
	mu     sync.Mutex
	events []FolderEvent
}

func (b *recordBus) Broadcast(_ context.Context, ev FolderEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

// recordLinks records unfile calls and reports a fixed count.
type recordLinks struct {
	mu      sync.Mutex
	unfiled []string
	count   int
}

func (l *recordLinks) UnfileFolder(_ context.Context, folderID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unfiled = append(l.unfiled, folderID)
	return l.count
}

func newTestStore(t *testing.T) (*Store, *kv.MemoryStore, *recordLinks) {
	t.Helper()
	mem := kv.NewMemoryStore()
	links := &recordLinks{}
	s := NewStore(mem, &recordBus{}, links, silentLogger)
	require.NoError(t, s.Load(context.Background()))
	return s, mem, links
}

func TestLoadSeedsDefaultsOnFirstRun(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)

	listed := s.List()
	require.Len(t, listed, 6)

	wantNames := []string{SmartAllNotes, SmartFavorites, "Work", "Personal", "Ideas", SmartTrash}
	wantIcons := []string{"inbox", "star", "briefcase", "home", "lightbulb", "trash"}
	for i, f := range listed {
		assert.Equal(t, wantNames[i], f.Name)
		assert.Equal(t, wantIcons[i], f.Icon)
		assert.True(t, f.IsDefault)
		assert.Equal(t, i, f.SortOrder)
		assert.Equal(t, LocalUserID, f.UserID)
		require.NotNil(t, f.NameKu)
	}

	// Seeded ids are stable across installs.
	_, err := s.Get("default_0")
	assert.NoError(t, err)
	_, err = s.Get("default_5")
	assert.NoError(t, err)

	// The seed was persisted, so a second load does not re-seed.
	_, ok, err := mem.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)

	s2 := NewStore(mem, &recordBus{}, &recordLinks{}, silentLogger)
	require.NoError(t, s2.Load(ctx))
	assert.Len(t, s2.List(), 6)
}

func TestLoadMigratesLegacyEmojiIcons(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	legacy := `[{"id":"f1","userId":"local","name":"Work","nameKu":null,` +
		`"icon":"💼","color":"#3B82F6","isDefault":false,"sortOrder":0,"noteCount":0,` +
		`"createdAt":"2024-01-02T03:04:05Z","updatedAt":"2024-01-02T03:04:05Z"}]`
	require.NoError(t, mem.Set(ctx, StorageKey, legacy))

	s := NewStore(mem, &recordBus{}, &recordLinks{}, silentLogger)
	require.NoError(t, s.Load(ctx))

	f, err := s.Get("f1")
	require.NoError(t, err)
	assert.Equal(t, "briefcase", f.Icon)

	// Migration re-persisted the patched collection.
	stored, ok, err := mem.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, stored, `"icon":"briefcase"`)
}

func TestLoadMalformedDataFailsSafe(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := newTestStore(t)
	require.Len(t, s.List(), 6)

	require.NoError(t, mem.Set(ctx, StorageKey, "[broken"))

	err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrLoadFolders)
	assert.ErrorIs(t, s.LoadError(), ErrLoadFolders)
	assert.Len(t, s.List(), 6, "collection stays as it was")
}

func TestCreateDefaults(t *testing.T) {
	s, _, _ := newTestStore(t)

	f := s.Create(context.Background(), CreateFolderRequest{Name: "Projects"})
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "Projects", f.Name)
	assert.Equal(t, DefaultIcon, f.Icon)
	assert.Equal(t, DefaultColor, f.Color)
	assert.False(t, f.IsDefault)
	assert.Equal(t, 6, f.SortOrder, "appended after the six defaults")
	assert.Nil(t, f.NameKu)

	second := s.Create(context.Background(), CreateFolderRequest{Name: "Archive", Icon: "book-open", Color: "#10B981"})
	assert.Equal(t, 7, second.SortOrder)
	assert.Equal(t, "book-open", second.Icon)
	assert.Equal(t, "#10B981", second.Color)
}

func TestUpdate(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	f := s.Create(ctx, CreateFolderRequest{Name: "Projects"})

	name := "Renamed"
	icon := "palette"
	updated, err := s.Update(ctx, f.ID, UpdateFolderRequest{Name: &name, Icon: &icon})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "palette", updated.Icon)
	assert.Equal(t, f.Color, updated.Color)
	assert.False(t, updated.UpdatedAt.Before(f.UpdatedAt))

	_, err = s.Update(ctx, "missing", UpdateFolderRequest{Name: &name})
	assert.ErrorIs(t, err, ErrFolderNotFound)
}

func TestDeleteRejectsDefaults(t *testing.T) {
	s, _, links := newTestStore(t)

	err := s.Delete(context.Background(), "default_2")
	assert.ErrorIs(t, err, ErrDefaultFolder)
	assert.Len(t, s.List(), 6)
	assert.Empty(t, links.unfiled, "no unfile on a rejected delete")
}

func TestDeleteUnknownFolder(t *testing.T) {
	s, _, _ := newTestStore(t)
	assert.ErrorIs(t, s.Delete(context.Background(), "missing"), ErrFolderNotFound)
}

func TestDeleteUnfilesReferencingNotes(t *testing.T) {
	s, _, links := newTestStore(t)
	ctx := context.Background()

	f1 := s.Create(ctx, CreateFolderRequest{Name: "Work stuff"})
	f2 := s.Create(ctx, CreateFolderRequest{Name: "Idea dump"})
	links.count = 1

	require.NoError(t, s.Delete(ctx, f1.ID))

	assert.Equal(t, []string{f1.ID}, links.unfiled)
	_, err := s.Get(f1.ID)
	assert.ErrorIs(t, err, ErrFolderNotFound)
	_, err = s.Get(f2.ID)
	assert.NoError(t, err)
}

func TestSmartNames(t *testing.T) {
	assert.True(t, IsSmartName(SmartAllNotes))
	assert.True(t, IsSmartName(SmartFavorites))
	assert.True(t, IsSmartName(SmartTrash))
	assert.False(t, IsSmartName("Work"))
	assert.False(t, IsSmartName(""))
}
