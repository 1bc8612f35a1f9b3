package folders

import "errors"

// ErrFolderNotFound is the documented result of any id-targeted operation
// whose target is absent. The collection is left untouched in that case.
var ErrFolderNotFound = errors.New("folder not found")

// ErrDefaultFolder is returned when a delete targets a default folder.
var ErrDefaultFolder = errors.New("default folders cannot be deleted")

// ErrLoadFolders is returned when the persisted collection cannot be read or
// parsed. The in-memory collection is left as it was.
var ErrLoadFolders = errors.New("failed to load folders")
