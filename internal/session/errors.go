package session

import (
	"errors"

	"github.com/abhisek/lingodeck/internal/rating"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrActiveSessionExists = errors.New("active session already exists")
	ErrInsufficientReviews = errors.New("insufficient reviews to finalize session")
	ErrInvalidArgs         = errors.New("invalid arguments")
)

// Error codes reported to callers.
const (
	CodeUserNotFound        = "user-not-found"
	CodeSessionNotFound     = "session-not-found"
	CodeActiveSessionExists = "active-session-exists"
	CodeInsufficientReviews = "insufficient-reviews"
	CodeInvalidArgs         = "invalid-args"
	CodeInvalidScore        = "invalid-score"
	CodeInvalidStreak       = "invalid-streak"
	CodeInvalidTimestamp    = "invalid-timestamp"
	CodeInternal            = "internal-error"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrUserNotFound, CodeUserNotFound},
	{ErrSessionNotFound, CodeSessionNotFound},
	{ErrActiveSessionExists, CodeActiveSessionExists},
	{ErrInsufficientReviews, CodeInsufficientReviews},
	{ErrInvalidArgs, CodeInvalidArgs},
	{rating.ErrInvalidScore, CodeInvalidScore},
	{rating.ErrInvalidStreak, CodeInvalidStreak},
	{rating.ErrInvalidTimestamp, CodeInvalidTimestamp},
}

// Code maps err to its tag. Persistence and other unexpected failures are
// reported as internal-error; nil maps to "".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// IsDomainError reports whether err is a precondition or input failure
// rather than an internal fault.
func IsDomainError(err error) bool {
	return err != nil && Code(err) != CodeInternal
}
