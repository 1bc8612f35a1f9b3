package notes

import (
	"time"
)

// NoteType distinguishes how a note was captured.
type NoteType string

// Note types.
const (
	NoteTypeText  NoteType = "text"
	NoteTypeVoice NoteType = "voice"
	NoteTypeMixed NoteType = "mixed"
)

// TranscriptionStatus tracks the voice-to-text lifecycle of a voice note.
type TranscriptionStatus string

// Transcription statuses.
const (
	TranscriptionNone       TranscriptionStatus = "none"
	TranscriptionProcessing TranscriptionStatus = "processing"
	TranscriptionCompleted  TranscriptionStatus = "completed"
	TranscriptionFailed     TranscriptionStatus = "failed"
)

// SummaryLevel selects how detailed an AI summary should be.
type SummaryLevel string

// Summary levels.
const (
	SummaryBrief    SummaryLevel = "brief"
	SummaryStandard SummaryLevel = "standard"
	SummaryDetailed SummaryLevel = "detailed"
)

// Language is a content language tag.
type Language string

// Supported languages.
const (
	LanguageEnglish Language = "en"
	LanguageKurdish Language = "ku"
)

// Color is a note color label from the fixed palette.
type Color string

// Palette keys.
const (
	ColorNone   Color = "none"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
)

// PaletteHex maps palette keys to their display hex values.
var PaletteHex = map[Color]string{
	ColorNone:   "transparent",
	ColorRed:    "#EF4444",
	ColorOrange: "#F97316",
	ColorYellow: "#EAB308",
	ColorGreen:  "#22C55E",
	ColorBlue:   "#3B82F6",
	ColorPurple: "#8B5CF6",
}

// Valid reports whether c is one of the fixed palette keys.
func (c Color) Valid() bool {
	_, ok := PaletteHex[c]
	return ok
}

// TranscriptionSegment is one timestamped chunk of a transcription.
type TranscriptionSegment struct {
	Start   string `json:"start"` // "MM:SS"
	End     string `json:"end"`
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
}

// ActionItem is a single to-do extracted from note content.
type ActionItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Note is a single user-authored unit of content. Field names match the
// persisted JSON format; nullable fields are pointers.
type Note struct {
	ID       string  `json:"id"`
	UserID   string  `json:"userId"`
	FolderID *string `json:"folderId"`

	// Content
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	NoteType NoteType `json:"noteType"`
	Language Language `json:"language"`

	// Voice / transcription
	AudioURI              *string                `json:"audioUri"`
	AudioDuration         *float64               `json:"audioDuration"` // seconds
	Transcription         *string                `json:"transcription"`
	TranscriptionSegments []TranscriptionSegment `json:"transcriptionSegments"`
	TranscriptionLanguage *Language              `json:"transcriptionLanguage"`
	TranscriptionStatus   TranscriptionStatus    `json:"transcriptionStatus"`

	// AI enrichment, all optional and filled in after the fact
	Summary      *string      `json:"summary"`
	SummaryLevel *SummaryLevel `json:"summaryLevel"`
	AITitle      *string      `json:"aiTitle"`
	AITags       []string     `json:"aiTags"`
	AICategory   *string      `json:"aiCategory"`
	AIConfidence *float64     `json:"aiConfidence"`
	ActionItems  []ActionItem `json:"actionItems"`
	KeyPoints    []string     `json:"keyPoints"`
	AIMood       *string      `json:"aiMood"`
	AIMoodReason *string      `json:"aiMoodReason"`
	AIMoodScore  *float64     `json:"aiMoodScore"`

	// Metadata
	IsPinned   bool       `json:"isPinned"`
	IsFavorite bool       `json:"isFavorite"`
	IsArchived bool       `json:"isArchived"`
	IsDeleted  bool       `json:"isDeleted"`
	DeletedAt  *time.Time `json:"deletedAt"`
	Color      Color      `json:"color"`
	WordCount  int        `json:"wordCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateNoteRequest carries the caller-supplied fields of a new note;
// everything else is synthesized by the store.
type CreateNoteRequest struct {
	Title         string   `json:"title" example:"Meeting Notes"`
	Content       string   `json:"content" example:"Remember to discuss the quarterly targets"`
	NoteType      NoteType `json:"noteType" validate:"omitempty,oneof=text voice mixed" example:"text"`
	Language      Language `json:"language" validate:"omitempty,oneof=en ku" example:"en"`
	FolderID      *string  `json:"folderId,omitempty"`
	AudioURI      *string  `json:"audioUri,omitempty"`
	AudioDuration *float64 `json:"audioDuration,omitempty"`
	Color         Color    `json:"color" validate:"omitempty,oneof=none red orange yellow green blue purple" example:"blue"`
	IsPinned      bool     `json:"isPinned"`
}

// UpdateNoteRequest is a partial patch: nil fields are left untouched.
// Soft-delete state is deliberately absent - it moves only through Delete
// and Restore so the deletedAt and pin bookkeeping cannot be bypassed.
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`

	IsPinned   *bool `json:"isPinned,omitempty"`
	IsFavorite *bool `json:"isFavorite,omitempty"`
	IsArchived *bool `json:"isArchived,omitempty"`

	Color    *Color    `json:"color,omitempty" validate:"omitempty,oneof=none red orange yellow green blue purple"`
	Language *Language `json:"language,omitempty" validate:"omitempty,oneof=en ku"`

	Transcription         *string                `json:"transcription,omitempty"`
	TranscriptionSegments []TranscriptionSegment `json:"transcriptionSegments,omitempty"`
	TranscriptionLanguage *Language              `json:"transcriptionLanguage,omitempty" validate:"omitempty,oneof=en ku"`
	TranscriptionStatus   *TranscriptionStatus   `json:"transcriptionStatus,omitempty" validate:"omitempty,oneof=none processing completed failed"`

	Summary      *string       `json:"summary,omitempty"`
	SummaryLevel *SummaryLevel `json:"summaryLevel,omitempty" validate:"omitempty,oneof=brief standard detailed"`
	AITitle      *string       `json:"aiTitle,omitempty"`
	AITags       []string      `json:"aiTags,omitempty"`
	AICategory   *string       `json:"aiCategory,omitempty"`
	AIConfidence *float64      `json:"aiConfidence,omitempty"`
	ActionItems  []ActionItem  `json:"actionItems,omitempty"`
	KeyPoints    []string      `json:"keyPoints,omitempty"`
	AIMood       *string       `json:"aiMood,omitempty"`
	AIMoodReason *string       `json:"aiMoodReason,omitempty"`
	AIMoodScore  *float64      `json:"aiMoodScore,omitempty"`
}

// View selects which slice of the collection a read sees. Smart views are
// predicates over all notes; only ViewFolder follows stored folderId links.
type View string

// Views.
const (
	ViewAll       View = "all"
	ViewFavorites View = "favorites"
	ViewTrash     View = "trash"
	ViewFolder    View = "folder"
)

// ListNotesRequest filters the in-memory collection.
type ListNotesRequest struct {
	View        View   `query:"view" validate:"omitempty,oneof=all favorites trash folder" example:"all"`
	FolderID    string `query:"folder_id" validate:"required_if=View folder" example:"01HZXW2M6E1M2V8T1R4D9GQ3KF"`
	Q           string `query:"q" validate:"omitempty,max=256" example:"meeting"`
	Color       Color  `query:"color" validate:"omitempty,oneof=none red orange yellow green blue purple"`
	PinnedFirst bool   `query:"pinned_first"`
}

// ViewCounts holds the live note counts the folder list displays. The
// noteCount stored on folders is advisory only; these are the truth.
type ViewCounts struct {
	All       int            `json:"all"`
	Favorites int            `json:"favorites"`
	Trash     int            `json:"trash"`
	PerFolder map[string]int `json:"perFolder"`
}

// NoteEvent is broadcast to stream subscribers after every mutation.
type NoteEvent struct {
	Type string `json:"type"`
	Note *Note  `json:"note"`
}

// Note event types.
const (
	EventCreated  = "note.created"
	EventUpdated  = "note.updated"
	EventDeleted  = "note.deleted"
	EventRestored = "note.restored"
	EventPurged   = "note.purged"
)
