package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the backend-owned run state. The dashboard only displays it.
type RunStatus string

const (
	RunStatusStarted RunStatus = "started"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// Tone maps the status to a display tone
func (s RunStatus) Tone() string {
	switch s {
	case RunStatusSuccess:
		return "ok"
	case RunStatusFailed:
		return "bad"
	case RunStatusStarted:
		return "pending"
	default:
		return "unknown"
	}
}

// Run is one invocation of the per-user processing pipeline
type Run struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Status     RunStatus  `json:"status" db:"status"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	Context    JSON       `json:"context,omitempty" db:"context"`
}

// Duration returns how long the run took, if it has finished
func (r Run) Duration() (time.Duration, bool) {
	if r.FinishedAt == nil || r.StartedAt.IsZero() {
		return 0, false
	}
	return r.FinishedAt.Sub(r.StartedAt), true
}

// Event is an append-only audit record written during a run
type Event struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	RunID      *uuid.UUID `json:"run_id,omitempty" db:"run_id"`
	UserID     *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	EventType  string     `json:"event_type" db:"event_type"`
	Payload    JSON       `json:"payload,omitempty" db:"payload"`
	OccurredAt time.Time  `json:"occurred_at" db:"occurred_at"`
}

// Feature is a computed value about a user, versioned per run
type Feature struct {
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	RunID      *uuid.UUID `json:"run_id,omitempty" db:"run_id"`
	Name       string     `json:"name" db:"name"`
	Value      JSON       `json:"value,omitempty" db:"value"`
	ComputedAt time.Time  `json:"computed_at" db:"computed_at"`
}

// Decision is an append-only rule-engine output
type Decision struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	RunID     *uuid.UUID `json:"run_id,omitempty" db:"run_id"`
	Rule      string     `json:"rule" db:"rule"`
	Decision  string     `json:"decision" db:"decision"`
	Rationale JSON       `json:"rationale,omitempty" db:"rationale"`
	DecidedAt time.Time  `json:"decided_at" db:"decided_at"`
}

// AutomationTrigger is a scheduled re-evaluation record
type AutomationTrigger struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TriggerType string     `json:"trigger_type" db:"trigger_type"`
	Params      JSON       `json:"params,omitempty" db:"params"`
	NextFireAt  *time.Time `json:"next_fire_at,omitempty" db:"next_fire_at"`
	Active      bool       `json:"active" db:"active"`
	LastFiredAt *time.Time `json:"last_fired_at,omitempty" db:"last_fired_at"`
}
