package blog

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength   = 200
	MaxContentLength = 20000
)

// Domain errors
var (
	ErrEmptyTitle      = errors.New("post title cannot be empty")
	ErrEmptyContent    = errors.New("post content cannot be empty")
	ErrTitleTooLong    = errors.New("post title cannot exceed 200 characters")
	ErrContentTooLong  = errors.New("post content cannot exceed 20000 characters")
	ErrInvalidImageURL = errors.New("image URL must start with http:// or https://")
)

// Post is a news item on the gym's blog. Content is Markdown.
type Post struct {
	ID        string
	Title     string
	Content   string
	ImageURL  string // optional
	Published bool
	CreatedAt time.Time
}

// Validate checks if the Post has valid data.
// PRE: Post struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if len(p.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(p.Content) == "" {
		return ErrEmptyContent
	}
	if len(p.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	if p.ImageURL != "" && !strings.HasPrefix(p.ImageURL, "http://") && !strings.HasPrefix(p.ImageURL, "https://") {
		return ErrInvalidImageURL
	}
	return nil
}

// Excerpt returns the first n runes of the content, for list cards.
func (p *Post) Excerpt(n int) string {
	r := []rune(strings.TrimSpace(p.Content))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
