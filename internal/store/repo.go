package store

import (
	"context"
	"errors"
	"time"
)

// ErrActiveSessionConflict is returned by CreateSession when the user
// already has an ACTIVE session.
var ErrActiveSessionConflict = errors.New("store: user already has an active session")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	Purpose string // exact match when set
}

// User is a learner with a single global ELO rating.
type User struct {
	ID             string
	Email          string
	NativeLanguage string
	CurrentRating  float64
	LastSessionAt  *time.Time
	CreatedAt      time.Time
}

// SessionStatus is the lifecycle state of a review session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "ACTIVE"
	SessionCompleted SessionStatus = "COMPLETED"
)

// Session is a bounded run of reviews for one user.
type Session struct {
	ID             string
	UserID         string
	Status         SessionStatus
	StartingRating float64
	EndingRating   float64
	StartedAt      time.Time
	EndedAt        *time.Time
	UpdatedAt      time.Time
}

// SessionSummary is a session together with its review count.
type SessionSummary struct {
	Session
	ReviewCount int
}

// ReviewLog is one immutable review record inside a session.
type ReviewLog struct {
	ID             string
	Sequence       int64
	SessionID      string
	CardID         string
	UserID         string
	Rating         int
	StreakPosition int
	EloImpact      float64
	OpponentRating float64
	RatingBefore   float64
	RatingAfter    float64
	CreatedAt      time.Time
}

// Sentence is a catalogue entry a card can be built from.
type Sentence struct {
	ID               string
	Content          string
	Translation      string
	Language         string
	NativeLanguage   string
	DifficultyRating float64
	CreatedAt        time.Time
}

// Card is a user's flashcard with its spaced repetition schedule.
type Card struct {
	ID             string
	UserID         string
	SentenceID     string // empty when the card has no backing sentence
	Front          string
	Back           string
	Language       string
	EaseFactor     float64
	Interval       int
	Repetitions    int
	NextDueDate    time.Time
	LastReviewedAt *time.Time
	CreatedAt      time.Time
}

// ReviewRepo persists users, sessions and review logs. Find* methods return
// nil without error when the row does not exist.
type ReviewRepo interface {
	// InTx runs fn against a repository bound to a single write transaction.
	// The transaction commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(ReviewRepo) error) error

	CreateUser(ctx context.Context, u *User) error
	FindUser(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	// UpdateUserRating stores the rating carried out of a finalized session.
	UpdateUserRating(ctx context.Context, userID string, rating float64, lastSessionAt time.Time) error

	// CreateSession inserts an ACTIVE session. Returns ErrActiveSessionConflict
	// if the user already has one.
	CreateSession(ctx context.Context, s *Session) error
	FindSession(ctx context.Context, id string) (*Session, error)
	FindActiveSession(ctx context.Context, userID string) (*Session, error)
	// LockActiveSession touches the ACTIVE session owned by userID so that the
	// enclosing transaction holds its row before reading the review history.
	LockActiveSession(ctx context.Context, sessionID, userID string, now time.Time) (*Session, error)
	UpdateSessionEndingRating(ctx context.Context, sessionID string, rating float64, now time.Time) error
	// CompleteSession marks an ACTIVE session COMPLETED and clears its
	// active marker.
	CompleteSession(ctx context.Context, sessionID string, endedAt time.Time) error
	ListSessions(ctx context.Context, userID string, limit int) ([]SessionSummary, error)

	// CreateReviewLog appends a review log, assigning its sequence.
	CreateReviewLog(ctx context.Context, l *ReviewLog) error
	// FindRecentReviewLogs returns up to limit logs of the session,
	// most recent first.
	FindRecentReviewLogs(ctx context.Context, sessionID string, limit int) ([]ReviewLog, error)
	CountReviewLogs(ctx context.Context, sessionID string) (int, error)
}

// CardRepo persists sentences and cards.
type CardRepo interface {
	CreateSentence(ctx context.Context, s *Sentence) error
	FindSentence(ctx context.Context, id string) (*Sentence, error)
	// ListSentences returns sentences for a language pair, oldest first.
	ListSentences(ctx context.Context, language, nativeLanguage string, limit int) ([]Sentence, error)

	CreateCard(ctx context.Context, c *Card) error
	FindCard(ctx context.Context, id string) (*Card, error)
	// UpdateCardSchedule writes the scheduling columns of c.
	UpdateCardSchedule(ctx context.Context, c *Card) error
	// DueCards returns the user's cards due at now, most overdue first.
	DueCards(ctx context.Context, userID string, now time.Time, limit int) ([]Card, error)
	CountCards(ctx context.Context, userID string) (int, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)
	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
