package settings

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Abdulla090/knote/internal/clients/kv"
)

// Fixed adapter keys.
const (
	SettingsKey = "settings"
	StreakKey   = "streak"
)

const dayKeyLayout = "2006-01-02"

// Store owns the user preferences bag and the activity streak. Both are
// persisted as whole JSON objects under their own keys; mutations update
// memory first and a failed write never rolls memory back.
type Store struct {
	mu       sync.RWMutex
	settings Settings
	streak   Streak

	kv  kv.Store
	log *slog.Logger
	now func() time.Time
}

// NewStore creates a settings store with defaults in place. Load and
// LoadStreak read any persisted state over them.
func NewStore(kvStore kv.Store, log *slog.Logger) *Store {
	return &Store{
		settings: DefaultSettings(),
		kv:       kvStore,
		log:      log,
		now:      time.Now,
	}
}

// Load reads persisted preferences. Stored values are merged over the
// defaults, so settings added after the bag was first persisted keep their
// default. Unreadable or malformed data fails safe to the defaults.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, SettingsKey)
	if err != nil || !ok {
		if err != nil {
			s.log.Error("failed to load settings", "err", err)
		}
		return nil
	}

	merged := DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &merged); err != nil {
		s.log.Error("failed to parse settings", "err", err)
		return nil
	}

	s.mu.Lock()
	s.settings = merged
	s.mu.Unlock()
	return nil
}

// LoadStreak reads the persisted streak. A gap of more than one day since
// the last active date breaks the streak: current resets to zero and the
// reset state is re-persisted. Longest and totals survive the break.
func (s *Store) LoadStreak(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, StreakKey)
	if err != nil || !ok {
		if err != nil {
			s.log.Error("failed to load streak", "err", err)
		}
		return nil
	}

	var parsed Streak
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.log.Error("failed to parse streak", "err", err)
		return nil
	}

	broke := parsed.LastActiveDate != "" && daysBetween(parsed.LastActiveDate, s.todayKey()) > 1
	if broke {
		parsed.CurrentStreak = 0
	}

	s.mu.Lock()
	s.streak = parsed
	s.mu.Unlock()

	if broke {
		s.persist(ctx, StreakKey, parsed)
	}
	return nil
}

// Get returns the current preferences.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update merges the non-nil fields of req into the bag and persists it.
func (s *Store) Update(ctx context.Context, req UpdateSettingsRequest) Settings {
	s.mu.Lock()
	applySettingsPatch(&s.settings, req)
	updated := s.settings
	s.mu.Unlock()

	s.persist(ctx, SettingsKey, updated)
	return updated
}

// Reset restores the defaults and persists them.
func (s *Store) Reset(ctx context.Context) Settings {
	defaults := DefaultSettings()
	s.mu.Lock()
	s.settings = defaults
	s.mu.Unlock()

	s.persist(ctx, SettingsKey, defaults)
	return defaults
}

// GetStreak returns the current streak state.
func (s *Store) GetStreak() Streak {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streak
}

// RecordActivity registers one created note against today. Repeat activity
// on the same day only bumps the total; the first activity of a day extends
// the streak when yesterday was active and restarts it at one otherwise.
func (s *Store) RecordActivity(ctx context.Context) Streak {
	today := s.todayKey()

	s.mu.Lock()
	cur := s.streak

	if cur.LastActiveDate == today {
		cur.TotalNotesCreated++
		s.streak = cur
		s.mu.Unlock()

		s.persist(ctx, StreakKey, cur)
		return cur
	}

	gap := 0
	if cur.LastActiveDate != "" {
		gap = daysBetween(cur.LastActiveDate, today)
	}
	streak := 1
	if gap == 1 {
		streak = cur.CurrentStreak + 1
	}

	days := append(append([]string{}, cur.ActiveDays...), today)
	if len(days) > 30 {
		days = days[len(days)-30:]
	}

	cur = Streak{
		CurrentStreak:     streak,
		LongestStreak:     max(streak, cur.LongestStreak),
		LastActiveDate:    today,
		ActiveDays:        days,
		TotalNotesCreated: cur.TotalNotesCreated + 1,
	}
	s.streak = cur
	s.mu.Unlock()

	s.persist(ctx, StreakKey, cur)
	return cur
}

func (s *Store) todayKey() string {
	return s.now().UTC().Format(dayKeyLayout)
}

// daysBetween counts whole days between two day keys. Unparseable keys
// count as zero days apart.
func daysBetween(a, b string) int {
	ta, errA := time.Parse(dayKeyLayout, a)
	tb, errB := time.Parse(dayKeyLayout, b)
	if errA != nil || errB != nil {
		return 0
	}
	d := tb.Sub(ta)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

func (s *Store) persist(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("failed to serialize "+key, "err", err)
		return
	}
	if err := s.kv.Set(context.WithoutCancel(ctx), key, string(b)); err != nil {
		kv.IncWriteFailure(key)
		s.log.Error("failed to persist "+key, "err", err)
	}
}

func applySettingsPatch(s *Settings, req UpdateSettingsRequest) {
	if req.AppLanguage != nil {
		s.AppLanguage = *req.AppLanguage
	}
	if req.DefaultRecordingLanguage != nil {
		s.DefaultRecordingLanguage = *req.DefaultRecordingLanguage
	}
	if req.AutoSummarize != nil {
		s.AutoSummarize = *req.AutoSummarize
	}
	if req.AutoCategorize != nil {
		s.AutoCategorize = *req.AutoCategorize
	}
	if req.SummaryLevel != nil {
		s.SummaryLevel = *req.SummaryLevel
	}
	if req.NoteViewMode != nil {
		s.NoteViewMode = *req.NoteViewMode
	}
	if req.AudioQuality != nil {
		s.AudioQuality = *req.AudioQuality
	}
	if req.HasCompletedOnboarding != nil {
		s.HasCompletedOnboarding = *req.HasCompletedOnboarding
	}
	if req.ThemePreset != nil {
		s.ThemePreset = *req.ThemePreset
	}
	if req.BgPattern != nil {
		s.BgPattern = *req.BgPattern
	}
	if req.FocusDuration != nil {
		s.FocusDuration = *req.FocusDuration
	}
	if req.BreakDuration != nil {
		s.BreakDuration = *req.BreakDuration
	}
}
