package folders

import "time"

// Smart folder names. These views compute membership from note predicates
// instead of stored folderId links; they are identified by their reserved
// name, not a separate type tag.
const (
	SmartAllNotes  = "All Notes"
	SmartFavorites = "Favorites"
	SmartTrash     = "Trash"
)

// IsSmartName reports whether name is one of the reserved smart views.
func IsSmartName(name string) bool {
	switch name {
	case SmartAllNotes, SmartFavorites, SmartTrash:
		return true
	}
	return false
}

// Defaults applied when a create request leaves them out.
const (
	DefaultIcon  = "folder"
	DefaultColor = "#6366F1"
)

// Folder is a named container for notes, or one of the fixed smart views.
// Field names match the persisted JSON format.
type Folder struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Name      string     `json:"name"`
	NameKu    *string    `json:"nameKu"`
	Icon      string     `json:"icon"`
	Color     string     `json:"color"`
	IsDefault bool       `json:"isDefault"`
	SortOrder int        `json:"sortOrder"`
	NoteCount int        `json:"noteCount"` // advisory; live counts come from the notes store
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CreateFolderRequest carries the caller-supplied fields of a new folder.
type CreateFolderRequest struct {
	Name   string  `json:"name" validate:"required,max=64" example:"Projects"`
	NameKu *string `json:"nameKu,omitempty"`
	Icon   string  `json:"icon" validate:"omitempty,max=32" example:"folder"`
	Color  string  `json:"color" validate:"omitempty,hexcolor" example:"#6366F1"`
}

// UpdateFolderRequest is a partial patch: nil fields are left untouched.
type UpdateFolderRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=64"`
	NameKu    *string `json:"nameKu,omitempty"`
	Icon      *string `json:"icon,omitempty" validate:"omitempty,max=32"`
	Color     *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	SortOrder *int    `json:"sortOrder,omitempty" validate:"omitempty,min=0"`
}

// FolderEvent is broadcast to stream subscribers after every mutation.
type FolderEvent struct {
	Type   string  `json:"type"`
	Folder *Folder `json:"folder"`
}

// Folder event types.
const (
	EventCreated = "folder.created"
	EventUpdated = "folder.updated"
	EventDeleted = "folder.deleted"
)

// defaultSeed describes one of the six folders seeded on first run.
type defaultSeed struct {
	name   string
	nameKu string
	icon   string
	color  string
}

// defaultFolders is the fixed first-run set, in sort order.
var defaultFolders = []defaultSeed{
	{SmartAllNotes, "هەموو تێبینییەکان", "inbox", "#6366F1"},
	{SmartFavorites, "دڵخوازەکان", "star", "#F59E0B"},
	{"Work", "کار", "briefcase", "#3B82F6"},
	{"Personal", "کەسی", "home", "#10B981"},
	{"Ideas", "بیرۆکەکان", "lightbulb", "#F97316"},
	{SmartTrash, "زیبڵدان", "trash", "#EF4444"},
}

// legacyIconKeys maps the emoji icons older persisted folders carried to the
// current icon-key vocabulary.
var legacyIconKeys = map[string]string{
	"📥": "inbox", "⭐": "star", "💼": "briefcase", "🏠": "home",
	"💡": "lightbulb", "🗑️": "trash", "📁": "folder", "📚": "book-open",
	"🎨": "palette", "🔬": "flask", "📝": "file-text", "🎵": "music",
	"📸": "camera", "✈️": "plane", "🏋️": "dumbbell", "🍳": "cooking",
	"❤️": "heart", "🎯": "trophy", "⭐️": "star",
}
