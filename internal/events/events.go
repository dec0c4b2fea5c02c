// Package events carries authoring notifications from the state machine to
// interested listeners (TUI, HTTP stream, logbook) over buffered channels.
package events

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type names an authoring notification.
type Type string

const (
	StepDataUpdated   Type = "step_data_updated"
	StepAdvanced      Type = "step_advanced"
	StageCompleted    Type = "stage_completed"
	StageReset        Type = "stage_reset"
	DocumentResumed   Type = "document_resumed"
	PersistenceFailed Type = "persistence_failed"
	DocumentSaved     Type = "document_saved"
)

// Event is a single notification.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	DocumentID string    `json:"document_id"`
	Stage      string    `json:"stage,omitempty"`
	Step       string    `json:"step,omitempty"`
	Message    string    `json:"message,omitempty"`
	Time       time.Time `json:"time"`
}

// Normalize fills the id and timestamp and trims identifiers.
func (e *Event) Normalize(now time.Time) {
	if e == nil {
		return
	}
	e.ID = strings.TrimSpace(e.ID)
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.DocumentID = strings.TrimSpace(e.DocumentID)
	if e.Time.IsZero() {
		if now.IsZero() {
			now = time.Now()
		}
		e.Time = now.UTC()
	}
}

// Publisher accepts events.
type Publisher interface {
	Publish(Event)
}

// Logger records router diagnostics. It matches logging.Logger's Printf.
type Logger interface {
	Printf(format string, args ...any)
}
