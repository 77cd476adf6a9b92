package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rafflechain/settler/internal/raffle"
)

var (
	ErrFailedToPublish   = errors.New("failed to publish")
	ErrNatsConnectionNil = errors.New("nats connection is nil")
)

type EventType string

const (
	EventActivated      EventType = "activated"
	EventClosed         EventType = "closed"
	EventVoided         EventType = "voided"
	EventWinnerSelected EventType = "winner_selected"
	EventSettled        EventType = "settled"
	EventDisputed       EventType = "disputed"
)

// Event is published whenever a raffle reaches a state interested parties are told about.
type Event struct {
	Type          EventType     `json:"type"`
	RaffleID      string        `json:"raffleId"`
	CreatorID     string        `json:"creatorId"`
	Status        raffle.Status `json:"status"`
	CloseReason   string        `json:"closeReason,omitempty"`
	WinnerID      string        `json:"winnerId,omitempty"`
	WinningTicket *int64        `json:"winningTicket,omitempty"`
	SeedBlockHash string        `json:"seedBlockHash,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	OccurredAt    time.Time     `json:"occurredAt"`
}

// NewEvent describes the current state of r.
func NewEvent(eventType EventType, r *raffle.Raffle, occurredAt time.Time) Event {
	e := Event{
		Type:          eventType,
		RaffleID:      r.ID,
		CreatorID:     r.CreatorID,
		Status:        r.Status,
		WinningTicket: r.WinningTicket,
		OccurredAt:    occurredAt,
	}
	if r.CloseReason != nil {
		e.CloseReason = string(*r.CloseReason)
	}
	if r.WinnerID != nil {
		e.WinnerID = *r.WinnerID
	}
	if r.SeedBlockHash != nil {
		e.SeedBlockHash = *r.SeedBlockHash
	}
	if r.DisputeReason != nil {
		e.Reason = *r.DisputeReason
	}

	return e
}

type NatsConnection interface {
	Publish(subj string, data []byte) error
	Drain() error
}

// NatsNotifier publishes events as JSON on "<prefix>.<event type>".
type NatsNotifier struct {
	nc            NatsConnection
	subjectPrefix string
	logger        *slog.Logger
}

func WithLogger(logger *slog.Logger) func(*NatsNotifier) {
	return func(n *NatsNotifier) {
		n.logger = logger
	}
}

func NewNatsNotifier(nc NatsConnection, subjectPrefix string, opts ...func(*NatsNotifier)) (*NatsNotifier, error) {
	if nc == nil {
		return nil, ErrNatsConnectionNil
	}

	n := &NatsNotifier{
		nc:            nc,
		subjectPrefix: subjectPrefix,
		logger:        slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
	for _, opt := range opts {
		opt(n)
	}

	n.logger = n.logger.With(slog.String("module", "notify"))

	return n, nil
}

func (n *NatsNotifier) Subject(eventType EventType) string {
	if n.subjectPrefix == "" {
		return string(eventType)
	}
	return n.subjectPrefix + "." + string(eventType)
}

func (n *NatsNotifier) Notify(_ context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	subject := n.Subject(event.Type)
	err = n.nc.Publish(subject, data)
	if err != nil {
		return errors.Join(ErrFailedToPublish, fmt.Errorf("subject: %s", subject), err)
	}

	return nil
}

func (n *NatsNotifier) Shutdown() {
	err := n.nc.Drain()
	if err != nil {
		n.logger.Error("failed to drain nats connection", slog.String("err", err.Error()))
	}
}

// LogNotifier only logs events. It is used when no message queue is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(slog.String("module", "notify"))}
}

func (l *LogNotifier) Notify(ctx context.Context, event Event) error {
	l.logger.InfoContext(ctx, "Raffle event",
		slog.String("type", string(event.Type)),
		slog.String("id", event.RaffleID),
		slog.String("status", string(event.Status)),
	)
	return nil
}
