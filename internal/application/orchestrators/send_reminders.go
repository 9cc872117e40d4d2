package orchestrators

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"carpa/internal/adapters/email"
	"carpa/internal/domain/booking"
)

// BookingStoreForReminders defines the store interface needed by SendReminders.
type BookingStoreForReminders interface {
	ListOnDate(ctx context.Context, date string) ([]booking.Booking, error)
}

// SendRemindersDeps holds dependencies for SendReminders.
type SendRemindersDeps struct {
	Bookings BookingStoreForReminders
	Accounts AccountLookup
	Sender   email.Sender
	Now      func() time.Time // in the gym's time zone
}

// ExecuteSendReminders emails every member with a booking tomorrow, one email per member.
// PRE: Now returns the gym's local time
// POST: returns the number of emails handed to the sender
func ExecuteSendReminders(ctx context.Context, deps SendRemindersDeps) (int, error) {
	tomorrow := booking.FormatDate(deps.Now().AddDate(0, 0, 1))
	bookings, err := deps.Bookings.ListOnDate(ctx, tomorrow)
	if err != nil {
		return 0, err
	}

	slotsByUser := make(map[string][]string)
	var users []string
	for _, b := range bookings {
		if _, seen := slotsByUser[b.UserID]; !seen {
			users = append(users, b.UserID)
		}
		slotsByUser[b.UserID] = append(slotsByUser[b.UserID], b.Slot)
	}
	sort.Strings(users)

	msgs := make([]email.Message, 0, len(users))
	for _, userID := range users {
		acct, err := deps.Accounts.GetByID(ctx, userID)
		if err != nil {
			slog.Warn("notification_event", "event", "reminder_skipped", "user_id", userID, "error", err.Error())
			continue
		}
		slots := slotsByUser[userID]
		sort.Slice(slots, func(i, j int) bool { return booking.SlotIndex(slots[i]) < booking.SlotIndex(slots[j]) })
		html, err := renderMail("reminder", mailData{Name: acct.DisplayName(), Date: tomorrow, Slots: slots})
		if err != nil {
			return 0, err
		}
		msgs = append(msgs, email.Message{To: acct.Email, Subject: "Recordatorio: tus clases de mañana", HTML: html})
	}
	if len(msgs) == 0 {
		slog.Info("notification_event", "event", "reminders_none", "date", tomorrow)
		return 0, nil
	}

	receipts, err := deps.Sender.SendBatch(ctx, msgs)
	if err != nil {
		return len(receipts), err
	}
	slog.Info("notification_event", "event", "reminders_sent", "date", tomorrow, "count", len(receipts))
	return len(receipts), nil
}
