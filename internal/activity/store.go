// Package activity records what happened during a wizard session: uploads,
// selections, project saves, and generation runs. Entries are kept in memory
// for the life of the server and surfaced through the session API.
package activity

import (
	"context"
	"time"
)

// Entry is one recorded session action.
type Entry struct {
	SessionID  string    `json:"session_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Summary    string    `json:"summary"`
	Detail     string    `json:"detail,omitempty"`
}

// Event types recorded by the wizard.
const (
	EventSessionCreated   = "session_created"
	EventLogoUploaded     = "logo_uploaded"
	EventTablesSelected   = "tables_selected"
	EventGenerationRun    = "generation_run"
	EventGenerationFailed = "generation_failed"
	EventProjectSaved     = "project_saved"
	EventProjectLoaded    = "project_loaded"
)

// QueryOptions narrows a session activity query.
type QueryOptions struct {
	Since *time.Time
	Types []string
	Limit int
}

// Store is the interface for reading and writing activity entries.
type Store interface {
	// Record appends one entry.
	Record(ctx context.Context, e Entry) error

	// BySession returns a session's entries, newest first, plus the total
	// match count before the limit was applied.
	BySession(ctx context.Context, sessionID string, opts QueryOptions) ([]Entry, int, error)
}
