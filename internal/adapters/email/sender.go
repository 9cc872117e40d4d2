// Package email delivers transactional mail to members.
package email

import (
	"context"
	"time"
)

// Message is one email to one member.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string // plain-text alternative, optional
}

// Receipt is the provider's acknowledgement of a message.
type Receipt struct {
	ID     string
	SentAt time.Time
}

// Sender delivers messages. SendBatch returns receipts in request order.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
	SendBatch(ctx context.Context, msgs []Message) ([]Receipt, error)
}
