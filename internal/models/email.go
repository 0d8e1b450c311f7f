package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailStatus is the backend-owned delivery state of an attempt
type EmailStatus string

const (
	EmailStatusQueued  EmailStatus = "queued"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
	EmailStatusSkipped EmailStatus = "skipped"
)

// Tone maps the status to a display tone
func (s EmailStatus) Tone() string {
	switch s {
	case EmailStatusSent:
		return "ok"
	case EmailStatusFailed:
		return "bad"
	case EmailStatusQueued:
		return "pending"
	case EmailStatusSkipped:
		return "muted"
	default:
		return "unknown"
	}
}

// EmailAttempt is one templated send. UniqueKey is user:template:stage and
// keeps the backend from sending twice.
type EmailAttempt struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	RunID       *uuid.UUID  `json:"run_id,omitempty" db:"run_id"`
	TemplateKey string      `json:"template_key" db:"template_key"`
	Stage       string      `json:"stage" db:"stage"`
	Status      EmailStatus `json:"status" db:"status"`
	Reason      *string     `json:"reason,omitempty" db:"reason"`
	UniqueKey   string      `json:"unique_key" db:"unique_key"`
	ScheduledAt *time.Time  `json:"scheduled_at,omitempty" db:"scheduled_at"`
	SentAt      *time.Time  `json:"sent_at,omitempty" db:"sent_at"`
}

// EmailSuppression is an opt-out. A nil TemplateKey suppresses every template.
type EmailSuppression struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	TemplateKey *string   `json:"template_key,omitempty" db:"template_key"`
	Reason      *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Global reports whether the suppression covers all templates
func (s EmailSuppression) Global() bool {
	return s.TemplateKey == nil
}
