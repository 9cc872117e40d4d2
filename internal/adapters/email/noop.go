package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// NoopSender logs messages instead of delivering them. Used in development.
type NoopSender struct {
	sent atomic.Int64
}

// NewNoopSender creates a NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs msg.
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	n := s.sent.Add(1)
	slog.Info("email_event", "event", "noop_send", "to", msg.To, "subject", msg.Subject)
	return Receipt{ID: fmt.Sprintf("noop-%d", n), SentAt: time.Now()}, nil
}

// SendBatch logs every message.
func (s *NoopSender) SendBatch(ctx context.Context, msgs []Message) ([]Receipt, error) {
	receipts := make([]Receipt, 0, len(msgs))
	for _, msg := range msgs {
		r, _ := s.Send(ctx, msg)
		receipts = append(receipts, r)
	}
	return receipts, nil
}

// Sent returns how many messages were logged.
func (s *NoopSender) Sent() int64 {
	return s.sent.Load()
}
