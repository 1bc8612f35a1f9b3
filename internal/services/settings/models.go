package settings

// ThemePreset selects a color scheme.
type ThemePreset string

// Theme presets.
const (
	ThemeDefault ThemePreset = "default"
	ThemeAurora  ThemePreset = "aurora"
	ThemeSunset  ThemePreset = "sunset"
	ThemeOcean   ThemePreset = "ocean"
	ThemeMint    ThemePreset = "mint"
	ThemeRose    ThemePreset = "rose"
)

// BgPattern selects a decorative background pattern.
type BgPattern string

// Background patterns.
const (
	BgNone    BgPattern = "none"
	BgWaves   BgPattern = "waves"
	BgDots    BgPattern = "dots"
	BgCircuit BgPattern = "circuit"
	BgOrbs    BgPattern = "orbs"
)

// Settings is the whole user preferences bag, persisted as one JSON object.
type Settings struct {
	AppLanguage              string      `json:"appLanguage"`
	DefaultRecordingLanguage string      `json:"defaultRecordingLanguage"`
	AutoSummarize            bool        `json:"autoSummarize"`
	AutoCategorize           bool        `json:"autoCategorize"`
	SummaryLevel             string      `json:"summaryLevel"`
	NoteViewMode             string      `json:"noteViewMode"`
	AudioQuality             string      `json:"audioQuality"`
	HasCompletedOnboarding   bool        `json:"hasCompletedOnboarding"`
	ThemePreset              ThemePreset `json:"themePreset"`
	BgPattern                BgPattern   `json:"bgPattern"`
	FocusDuration            int         `json:"focusDuration"` // minutes
	BreakDuration            int         `json:"breakDuration"` // minutes
}

// DefaultSettings returns the out-of-the-box preferences.
func DefaultSettings() Settings {
	return Settings{
		AppLanguage:              "en",
		DefaultRecordingLanguage: "en",
		AutoSummarize:            true,
		AutoCategorize:           true,
		SummaryLevel:             "standard",
		NoteViewMode:             "list",
		AudioQuality:             "high",
		HasCompletedOnboarding:   false,
		ThemePreset:              ThemeDefault,
		BgPattern:                BgNone,
		FocusDuration:            25,
		BreakDuration:            5,
	}
}

// UpdateSettingsRequest is a partial patch: nil fields are left untouched.
type UpdateSettingsRequest struct {
	AppLanguage              *string      `json:"appLanguage,omitempty" validate:"omitempty,oneof=en ku"`
	DefaultRecordingLanguage *string      `json:"defaultRecordingLanguage,omitempty" validate:"omitempty,oneof=en ku"`
	AutoSummarize            *bool        `json:"autoSummarize,omitempty"`
	AutoCategorize           *bool        `json:"autoCategorize,omitempty"`
	SummaryLevel             *string      `json:"summaryLevel,omitempty" validate:"omitempty,oneof=brief standard detailed"`
	NoteViewMode             *string      `json:"noteViewMode,omitempty" validate:"omitempty,oneof=grid list"`
	AudioQuality             *string      `json:"audioQuality,omitempty" validate:"omitempty,oneof=high medium low"`
	HasCompletedOnboarding   *bool        `json:"hasCompletedOnboarding,omitempty"`
	ThemePreset              *ThemePreset `json:"themePreset,omitempty" validate:"omitempty,oneof=default aurora sunset ocean mint rose"`
	BgPattern                *BgPattern   `json:"bgPattern,omitempty" validate:"omitempty,oneof=none waves dots circuit orbs"`
	FocusDuration            *int         `json:"focusDuration,omitempty" validate:"omitempty,min=1,max=180"`
	BreakDuration            *int         `json:"breakDuration,omitempty" validate:"omitempty,min=1,max=60"`
}

// Streak tracks daily note-taking activity. Dates are YYYY-MM-DD day keys;
// activeDays keeps the last 30 of them.
type Streak struct {
	CurrentStreak     int      `json:"currentStreak"`
	LongestStreak     int      `json:"longestStreak"`
	LastActiveDate    string   `json:"lastActiveDate"`
	ActiveDays        []string `json:"activeDays"`
	TotalNotesCreated int      `json:"totalNotesCreated"`
}
