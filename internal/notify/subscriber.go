package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/edyou/engine-dashboard/internal/config"
	"github.com/edyou/engine-dashboard/internal/meter"
	"github.com/edyou/engine-dashboard/internal/models"
)

// RunNotification is published by the engine whenever a run changes state
type RunNotification struct {
	RunID      string           `json:"run_id"`
	UserEmail  string           `json:"user_email"`
	TenantName string           `json:"tenantName"`
	Status     models.RunStatus `json:"status"`
}

// Subscriber listens for run notifications
type Subscriber struct {
	nc      *nats.Conn
	subject string
	meter   *meter.Meter
	subs    []*nats.Subscription
}

// Connect dials NATS with reconnect handling
func Connect(cfg config.NATSConfig) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientName),
		nats.UserInfo(cfg.Username, cfg.Password),
		nats.ReconnectWait(cfg.ReconnectInterval),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("Disconnected from NATS")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Msg("Reconnected to NATS")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			ev := log.Error().Err(err)
			if sub != nil {
				ev = ev.Str("subject", sub.Subject)
			}
			ev.Msg("NATS error")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

// NewSubscriber creates a run notification subscriber
func NewSubscriber(nc *nats.Conn, subject string, m *meter.Meter) *Subscriber {
	if subject == "" {
		subject = "edyou.runs.>"
	}
	return &Subscriber{
		nc:      nc,
		subject: subject,
		meter:   m,
	}
}

// Start subscribes and blocks until ctx is done
func (s *Subscriber) Start(ctx context.Context) error {
	sub, err := s.nc.Subscribe(s.subject, s.handleRunNotification)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	s.subs = append(s.subs, sub)

	log.Info().
		Str("subject", s.subject).
		Msg("NATS subscriber started")

	<-ctx.Done()

	for _, sub := range s.subs {
		sub.Unsubscribe()
	}

	return ctx.Err()
}

// handleRunNotification logs and counts one run state change
func (s *Subscriber) handleRunNotification(msg *nats.Msg) {
	log.Debug().
		Str("subject", msg.Subject).
		Int("size", len(msg.Data)).
		Msg("Received run notification")

	var n RunNotification
	if err := json.Unmarshal(msg.Data, &n); err != nil {
		log.Error().Err(err).Str("subject", msg.Subject).Msg("Failed to unmarshal run notification")
		return
	}
	if strings.TrimSpace(n.RunID) == "" {
		log.Error().Str("subject", msg.Subject).Msg("Run notification without run_id")
		return
	}

	status := string(n.Status)
	if n.Status.Tone() == "unknown" {
		status = "unknown"
	}
	s.meter.RunNotification(status)

	log.Info().
		Str("runID", n.RunID).
		Str("email", n.UserEmail).
		Str("tenant", n.TenantName).
		Str("status", status).
		Msg("Run notification processed")
}
