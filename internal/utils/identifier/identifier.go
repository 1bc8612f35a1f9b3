package identifier

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Entity and connection IDs are ULIDs: 48 bits of millisecond timestamp plus
// 80 bits of entropy. Collision avoidance without any persisted sequence or
// coordination, and the IDs sort by creation time.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh 26-character ULID string.
func New() string {
	return NewULID().String()
}

// NewULID returns a fresh ULID. The monotonic entropy source is shared, so
// IDs minted within the same millisecond still differ and stay ordered.
func NewULID() ulid.ULID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy)
}
