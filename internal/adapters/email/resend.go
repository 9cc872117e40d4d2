package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// resendBatchLimit is the most emails Resend accepts in one batch call.
const resendBatchLimit = 100

// ResendSender delivers through the Resend API from a fixed sender identity.
type ResendSender struct {
	client  *resend.Client
	from    string
	replyTo string
}

// NewResendSender creates a sender.
// PRE: apiKey is a Resend API key; from is a verified sender address
func NewResendSender(apiKey, from, replyTo string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from, replyTo: replyTo}
}

func (s *ResendSender) request(msg Message) *resend.SendEmailRequest {
	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if s.replyTo != "" {
		req.ReplyTo = s.replyTo
	}
	return req
}

// Send delivers one message.
// POST: the message is queued at Resend, or an error is returned
func (s *ResendSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.request(msg))
	if err != nil {
		slog.Error("email_event", "event", "send_failed", "to", msg.To, "subject", msg.Subject, "error", err.Error())
		return Receipt{}, fmt.Errorf("resend: %w", err)
	}
	slog.Info("email_event", "event", "sent", "message_id", sent.Id, "to", msg.To, "subject", msg.Subject)
	return Receipt{ID: sent.Id, SentAt: time.Now()}, nil
}

// SendBatch delivers msgs in chunks of resendBatchLimit.
// On failure the receipts of the chunks already sent are returned with the error.
func (s *ResendSender) SendBatch(ctx context.Context, msgs []Message) ([]Receipt, error) {
	var receipts []Receipt
	for start := 0; start < len(msgs); start += resendBatchLimit {
		end := min(start+resendBatchLimit, len(msgs))
		chunk := make([]*resend.SendEmailRequest, 0, end-start)
		for _, msg := range msgs[start:end] {
			chunk = append(chunk, s.request(msg))
		}
		resp, err := s.client.Batch.SendWithContext(ctx, chunk)
		if err != nil {
			slog.Error("email_event", "event", "batch_failed", "size", len(chunk), "error", err.Error())
			return receipts, fmt.Errorf("resend batch: %w", err)
		}
		now := time.Now()
		for _, item := range resp.Data {
			receipts = append(receipts, Receipt{ID: item.Id, SentAt: now})
		}
		slog.Info("email_event", "event", "batch_sent", "size", len(chunk))
	}
	return receipts, nil
}
