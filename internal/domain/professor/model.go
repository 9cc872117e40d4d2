package professor

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyName       = errors.New("professor name cannot be empty")
	ErrNameTooLong     = errors.New("professor name cannot exceed 120 characters")
	ErrInvalidPhotoURL = errors.New("photo URL must start with http:// or https://")
)

// MaxNameLength bounds the display name.
const MaxNameLength = 120

// Professor is a coach shown on the public team page while active.
type Professor struct {
	ID        string
	Name      string
	Specialty string // optional
	Bio       string // optional
	PhotoURL  string // optional
	Active    bool
	CreatedAt time.Time
}

// Validate checks if the Professor has valid data.
// PRE: Professor struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Professor) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if p.PhotoURL != "" && !strings.HasPrefix(p.PhotoURL, "http://") && !strings.HasPrefix(p.PhotoURL, "https://") {
		return ErrInvalidPhotoURL
	}
	return nil
}
