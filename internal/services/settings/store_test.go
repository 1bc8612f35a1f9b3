package settings

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Abdulla090/knote/internal/clients/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var silentLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestStore(t *testing.T) (*Store, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore()
	s := NewStore(mem, silentLogger)
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.LoadStreak(context.Background()))
	return s, mem
}

// fixDay pins the store's clock to a given day key.
func fixDay(s *Store, day string) {
	t, err := time.Parse(dayKeyLayout, day)
	if err != nil {
		panic(err)
	}
	s.now = func() time.Time { return t }
}

func TestLoadFirstRunUsesDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	got := s.Get()
	assert.Equal(t, DefaultSettings(), got)
	assert.Equal(t, "en", got.AppLanguage)
	assert.Equal(t, "list", got.NoteViewMode)
	assert.Equal(t, 25, got.FocusDuration)
}

func TestLoadMergesStoredOverDefaults(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	// A bag persisted before focusDuration existed.
	require.NoError(t, mem.Set(ctx, SettingsKey, `{"appLanguage":"ku","noteViewMode":"grid"}`))

	s := NewStore(mem, silentLogger)
	require.NoError(t, s.Load(ctx))

	got := s.Get()
	assert.Equal(t, "ku", got.AppLanguage)
	assert.Equal(t, "grid", got.NoteViewMode)
	assert.Equal(t, 25, got.FocusDuration, "missing fields keep their default")
	assert.True(t, got.AutoSummarize)
}

func TestLoadMalformedFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	require.NoError(t, mem.Set(ctx, SettingsKey, "{bad"))

	s := NewStore(mem, silentLogger)
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, DefaultSettings(), s.Get())
}

func TestUpdateAndReset(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	lang := "ku"
	auto := false
	updated := s.Update(ctx, UpdateSettingsRequest{AppLanguage: &lang, AutoSummarize: &auto})
	assert.Equal(t, "ku", updated.AppLanguage)
	assert.False(t, updated.AutoSummarize)
	assert.Equal(t, "standard", updated.SummaryLevel, "unpatched fields untouched")

	stored, ok, err := mem.Get(ctx, SettingsKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, stored, `"appLanguage":"ku"`)

	reset := s.Reset(ctx)
	assert.Equal(t, DefaultSettings(), reset)
	assert.Equal(t, DefaultSettings(), s.Get())
}

func TestRecordActivityStartsStreak(t *testing.T) {
	s, _ := newTestStore(t)
	fixDay(s, "2026-03-10")

	got := s.RecordActivity(context.Background())
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 1, got.LongestStreak)
	assert.Equal(t, "2026-03-10", got.LastActiveDate)
	assert.Equal(t, []string{"2026-03-10"}, got.ActiveDays)
	assert.Equal(t, 1, got.TotalNotesCreated)
}

func TestRecordActivitySameDayOnlyBumpsTotal(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	fixDay(s, "2026-03-10")

	s.RecordActivity(ctx)
	got := s.RecordActivity(ctx)
	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 2, got.TotalNotesCreated)
	assert.Len(t, got.ActiveDays, 1, "a day is recorded once")
}

func TestRecordActivityConsecutiveDaysExtend(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	fixDay(s, "2026-03-10")
	s.RecordActivity(ctx)
	fixDay(s, "2026-03-11")
	s.RecordActivity(ctx)
	fixDay(s, "2026-03-12")
	got := s.RecordActivity(ctx)

	assert.Equal(t, 3, got.CurrentStreak)
	assert.Equal(t, 3, got.LongestStreak)
}

func TestRecordActivityGapRestartsAtOne(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	fixDay(s, "2026-03-10")
	s.RecordActivity(ctx)
	fixDay(s, "2026-03-11")
	s.RecordActivity(ctx)
	fixDay(s, "2026-03-14")
	got := s.RecordActivity(ctx)

	assert.Equal(t, 1, got.CurrentStreak)
	assert.Equal(t, 2, got.LongestStreak, "longest survives the break")
	assert.Equal(t, 3, got.TotalNotesCreated)
}

func TestActiveDaysKeepLastThirty(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 35; i++ {
		day := start.AddDate(0, 0, i)
		s.now = func() time.Time { return day }
		s.RecordActivity(ctx)
	}

	got := s.GetStreak()
	assert.Len(t, got.ActiveDays, 30)
	assert.Equal(t, "2026-01-06", got.ActiveDays[0])
	assert.Equal(t, "2026-02-04", got.ActiveDays[29])
	assert.Equal(t, 35, got.CurrentStreak)
}

func TestLoadStreakBreaksStaleStreak(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	stale := `{"currentStreak":7,"longestStreak":9,"lastActiveDate":"2026-03-01",` +
		`"activeDays":["2026-03-01"],"totalNotesCreated":40}`
	require.NoError(t, mem.Set(ctx, StreakKey, stale))

	s := NewStore(mem, silentLogger)
	fixDay(s, "2026-03-10")
	require.NoError(t, s.LoadStreak(ctx))

	got := s.GetStreak()
	assert.Equal(t, 0, got.CurrentStreak)
	assert.Equal(t, 9, got.LongestStreak)
	assert.Equal(t, 40, got.TotalNotesCreated)

	// The break was re-persisted.
	stored, ok, err := mem.Get(ctx, StreakKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, stored, `"currentStreak":0`)
}

func TestLoadStreakYesterdayKeepsStreak(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	fresh := `{"currentStreak":4,"longestStreak":4,"lastActiveDate":"2026-03-09",` +
		`"activeDays":["2026-03-09"],"totalNotesCreated":10}`
	require.NoError(t, mem.Set(ctx, StreakKey, fresh))

	s := NewStore(mem, silentLogger)
	fixDay(s, "2026-03-10")
	require.NoError(t, s.LoadStreak(ctx))

	assert.Equal(t, 4, s.GetStreak().CurrentStreak)
}
