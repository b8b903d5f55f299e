/*
store.go - Persistence interface for the planner's collections

PURPOSE:
  Defines the interface between the application state and the database.
  Each collection is stored whole, as one JSON document under a logical
  key. The store knows nothing about the documents' shape.

KEYS:
  holiday_requests  []HolidayRequest
  holiday_branches  []Branch
  holiday_staff     []Staff
  holiday_users     []User
  holiday_config    SystemConfig
  holiday_session   map of session token to Session

CONTRACT:
  - Load returns (nil, false, nil) when the key was never saved.
  - Save replaces the whole document.
  - Delete is idempotent.
  - Implementations are safe for concurrent use.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:     SQLite
  - store/postgres/postgres.go: PostgreSQL
  - generic/store/memory.go:    In-memory for testing

SEE ALSO:
  - planner/planner.go: loads and saves the collections
*/
package generic

import "context"

// Key names a stored document.
type Key string

const (
	KeyRequests Key = "holiday_requests"
	KeyBranches Key = "holiday_branches"
	KeyStaff    Key = "holiday_staff"
	KeyUsers    Key = "holiday_users"
	KeyConfig   Key = "holiday_config"
	KeySession  Key = "holiday_session"
)

// Keys lists every key the planner persists.
var Keys = []Key{KeyRequests, KeyBranches, KeyStaff, KeyUsers, KeyConfig, KeySession}

// Store persists JSON documents by key.
type Store interface {
	// Load returns the document and whether it exists.
	Load(ctx context.Context, key Key) ([]byte, bool, error)

	// Save replaces the document stored under key.
	Save(ctx context.Context, key Key, data []byte) error

	// Delete removes the document. Deleting a missing key is not an error.
	Delete(ctx context.Context, key Key) error
}
