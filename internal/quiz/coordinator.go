package quiz

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/example/mathquiz/pkg/models"
	"github.com/google/uuid"
)

// DefaultLeaderboardSize is used when a non-positive limit is requested
const DefaultLeaderboardSize = 10

// Store is the persistence service a coordinator reconciles results into
type Store interface {
	EnsurePlayer(ctx context.Context, username string) (int64, error)
	RecordSessionResult(ctx context.Context, result models.SessionResult) error
	TopPlayers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// Coordinator drives one session at a time for a single player
type Coordinator struct {
	store   Store
	gen     *Generator
	session *Session
}

// NewCoordinator creates a coordinator using the given store and generator
func NewCoordinator(store Store, gen *Generator) *Coordinator {
	if gen == nil {
		gen = NewGenerator(nil)
	}
	return &Coordinator{
		store: store,
		gen:   gen,
	}
}

// Session returns the current session, or nil
func (c *Coordinator) Session() *Session {
	return c.session
}

// Start discards any previous session and begins a new one
func (c *Coordinator) Start(ctx context.Context, username string, d Difficulty, count int) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}

	problems, err := c.gen.Quiz(d, count)
	if err != nil {
		return nil, err
	}

	if _, err := c.store.EnsurePlayer(ctx, username); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}

	if prev := c.session; prev != nil && prev.state == InProgress {
		log.Printf("Discarding unfinished session %s of %s at %d/%d", prev.ID, prev.Username, prev.current, len(prev.problems))
	} else if prev != nil && prev.state == Completed && !prev.recorded {
		log.Printf("Discarding unrecorded session %s of %s", prev.ID, prev.Username)
	}

	c.session = newSession(uuid.NewString(), username, d, problems)
	log.Printf("Session %s started: player=%s difficulty=%s questions=%d", c.session.ID, username, d, count)
	return c.session, nil
}

// Submit scores an answer for the current problem. When the last problem is
// answered the result is recorded; a recording failure is returned wrapped in
// ErrReconciliationFailed together with the answer result, and the session is
// kept so Retry can record it later.
func (c *Coordinator) Submit(ctx context.Context, value int) (AnswerResult, error) {
	if c.session == nil {
		return AnswerResult{}, ErrNoActiveSession
	}

	res, err := c.session.submit(value)
	if err != nil {
		return AnswerResult{}, err
	}

	if res.Completed {
		if err := c.reconcile(ctx); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Retry records a completed session whose earlier reconciliation failed
func (c *Coordinator) Retry(ctx context.Context) error {
	if c.session == nil {
		return ErrNoActiveSession
	}
	if c.session.state != Completed {
		return fmt.Errorf("session %s is %s", c.session.ID, c.session.state)
	}
	return c.reconcile(ctx)
}

// Abandon drops the current session without persisting anything
func (c *Coordinator) Abandon() {
	if c.session != nil && c.session.state == InProgress {
		log.Printf("Session %s abandoned at %d/%d", c.session.ID, c.session.current, len(c.session.problems))
	}
	c.session = nil
}

// Leaderboard returns the top players by highest score
func (c *Coordinator) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	entries, err := c.store.TopPlayers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	return entries, nil
}

func (c *Coordinator) reconcile(ctx context.Context) error {
	s := c.session
	if s.recorded {
		return nil
	}

	result := s.Result()
	if err := c.store.RecordSessionResult(ctx, result); err != nil {
		log.Printf("Error recording session %s: %v", s.ID, err)
		return fmt.Errorf("%w: %w", ErrReconciliationFailed, err)
	}

	s.recorded = true
	log.Printf("Session %s recorded: player=%s score=%d/%d", s.ID, result.Username, result.Score, result.TotalQuestions)
	return nil
}

// ParseAnswer converts raw player input into an answer. Invalid input is
// reported with ErrInvalidAnswerFormat and never reaches a session.
func ParseAnswer(input string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAnswerFormat, strings.TrimSpace(input))
	}
	return value, nil
}
