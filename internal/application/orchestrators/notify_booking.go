package orchestrators

import (
	"context"
	"log/slog"

	"carpa/internal/adapters/email"
	"carpa/internal/domain/account"
)

// AccountLookup finds the member a notification is addressed to.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// NotifyBookingInput describes a toggle that has already succeeded.
type NotifyBookingInput struct {
	UserID    string
	Date      string
	Slot      string
	Cancelled bool
}

// NotifyBookingDeps holds dependencies for NotifyBooking.
type NotifyBookingDeps struct {
	Accounts AccountLookup
	Sender   email.Sender
}

// ExecuteNotifyBooking emails the member a confirmation or cancellation notice.
// PRE: the booking change has been persisted
// POST: an email was handed to the sender, or the returned error says why not
// INVARIANT: callers treat errors as log-only; the booking outcome never depends on mail
func ExecuteNotifyBooking(ctx context.Context, input NotifyBookingInput, deps NotifyBookingDeps) error {
	acct, err := deps.Accounts.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}

	tmpl, subject := "booked", "Reserva confirmada: "+LongDate(input.Date)
	if input.Cancelled {
		tmpl, subject = "cancelled", "Reserva cancelada: "+LongDate(input.Date)
	}
	html, err := renderMail(tmpl, mailData{Name: acct.DisplayName(), Date: input.Date, Slot: input.Slot})
	if err != nil {
		return err
	}

	if _, err := deps.Sender.Send(ctx, email.Message{To: acct.Email, Subject: subject, HTML: html}); err != nil {
		return err
	}
	slog.Info("notification_event", "event", "booking_notice_sent", "user_id", input.UserID, "template", tmpl, "date", input.Date, "slot", input.Slot)
	return nil
}
