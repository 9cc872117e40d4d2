package review

import (
	"errors"
	"strings"
	"time"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// MaxCommentLength bounds the comment text.
const MaxCommentLength = 2000

// Domain errors
var (
	ErrEmptyUserID     = errors.New("review must belong to a user")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrEmptyComment    = errors.New("review comment cannot be empty")
	ErrCommentTooLong  = errors.New("review comment cannot exceed 2000 characters")
	ErrAlreadyApproved = errors.New("review is already approved")
)

// Review is a member's rating of the gym. It is public only once approved.
type Review struct {
	ID        string
	UserID    string
	Rating    int
	Comment   string
	Approved  bool
	CreatedAt time.Time
}

// Validate checks if the Review has valid data.
// PRE: Review struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Review) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrEmptyUserID
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return ErrInvalidRating
	}
	if strings.TrimSpace(r.Comment) == "" {
		return ErrEmptyComment
	}
	if len(r.Comment) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}

// Approve makes the review public.
// POST: Approved is true
func (r *Review) Approve() error {
	if r.Approved {
		return ErrAlreadyApproved
	}
	r.Approved = true
	return nil
}
