package orchestrators

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"carpa/internal/adapters/email"
	"carpa/internal/domain/account"
	"carpa/internal/domain/blog"
	"carpa/internal/domain/booking"
	"carpa/internal/domain/professor"
	"carpa/internal/domain/review"
)

var errNotFound = errors.New("not found")

var fixedTime = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

// mockAccountStore implements every account store interface used here.
type mockAccountStore struct {
	accounts map[string]account.Account
	saves    int
}

func newMockAccountStore(accts ...account.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: make(map[string]account.Account)}
	for _, a := range accts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, errNotFound
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return account.Account{}, errNotFound
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.saves++
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

// mockPostStore implements PostStoreForOrchestrator.
type mockPostStore struct {
	posts map[string]blog.Post
}

func (m *mockPostStore) GetByID(_ context.Context, id string) (blog.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return blog.Post{}, errNotFound
	}
	return p, nil
}

func (m *mockPostStore) Save(_ context.Context, p blog.Post) error {
	m.posts[p.ID] = p
	return nil
}

func (m *mockPostStore) Delete(_ context.Context, id string) error {
	delete(m.posts, id)
	return nil
}

// mockProfessorStore implements ProfessorStoreForOrchestrator.
type mockProfessorStore struct {
	professors map[string]professor.Professor
}

func (m *mockProfessorStore) GetByID(_ context.Context, id string) (professor.Professor, error) {
	p, ok := m.professors[id]
	if !ok {
		return professor.Professor{}, errNotFound
	}
	return p, nil
}

func (m *mockProfessorStore) Save(_ context.Context, p professor.Professor) error {
	m.professors[p.ID] = p
	return nil
}

func (m *mockProfessorStore) Delete(_ context.Context, id string) error {
	delete(m.professors, id)
	return nil
}

// mockReviewStore implements ReviewStoreForOrchestrator.
type mockReviewStore struct {
	reviews map[string]review.Review
}

func (m *mockReviewStore) GetByID(_ context.Context, id string) (review.Review, error) {
	r, ok := m.reviews[id]
	if !ok {
		return review.Review{}, errNotFound
	}
	return r, nil
}

func (m *mockReviewStore) Save(_ context.Context, r review.Review) error {
	m.reviews[r.ID] = r
	return nil
}

func (m *mockReviewStore) Delete(_ context.Context, id string) error {
	delete(m.reviews, id)
	return nil
}

// mockBookingStore implements BookingStoreForReminders.
type mockBookingStore struct {
	bookings  []booking.Booking
	askedDate string
}

func (m *mockBookingStore) ListOnDate(_ context.Context, date string) ([]booking.Booking, error) {
	m.askedDate = date
	var out []booking.Booking
	for _, b := range m.bookings {
		if b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

// recordingSender implements email.Sender and keeps every message.
type recordingSender struct {
	mu   sync.Mutex
	msgs []email.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg email.Message) (email.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return email.Receipt{}, s.err
	}
	s.msgs = append(s.msgs, msg)
	return email.Receipt{ID: "r"}, nil
}

func (s *recordingSender) SendBatch(ctx context.Context, msgs []email.Message) ([]email.Receipt, error) {
	var out []email.Receipt
	for _, m := range msgs {
		r, err := s.Send(ctx, m)
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}
