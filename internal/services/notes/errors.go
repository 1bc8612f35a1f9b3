package notes

import "errors"

// ErrNoteNotFound is the documented result of any id-targeted operation whose
// target is absent. The collection is left untouched in that case.
var ErrNoteNotFound = errors.New("note not found")

// ErrInvalidColor is returned when a color is not one of the palette keys.
var ErrInvalidColor = errors.New("invalid note color")

// ErrLoadNotes is returned when the persisted collection cannot be read or
// parsed. The in-memory collection is left as it was.
var ErrLoadNotes = errors.New("failed to load notes")
