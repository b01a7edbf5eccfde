package database

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/example/mathquiz/pkg/models"
	"github.com/jmoiron/sqlx"
)

const defaultTopPlayers = 10

// Service is the persistence service behind quiz sessions: players, their
// aggregate statistics and the quiz history
type Service struct {
	db      *sqlx.DB
	players *PlayerRepository
	results *QuizResultRepository
	stats   statsUpdater
}

// NewService wires the repositories around an open database
func NewService(db *sqlx.DB) *Service {
	players := NewPlayerRepository(db)
	return &Service{
		db:      db,
		players: players,
		results: NewQuizResultRepository(db),
		stats:   players,
	}
}

// EnsurePlayer creates the player if absent and returns its ID
func (s *Service) EnsurePlayer(ctx context.Context, username string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, fmt.Errorf("username must not be empty")
	}
	return s.players.Ensure(ctx, s.db, username)
}

// RecordSessionResult appends the history row and updates the player's
// aggregates in one transaction. A session ID that was already recorded is
// accepted without applying it twice.
func (s *Service) RecordSessionResult(ctx context.Context, result models.SessionResult) error {
	if result.TotalQuestions < 1 || result.Score < 0 || result.Score > result.TotalQuestions {
		return fmt.Errorf("%w: score %d of %d", ErrInvalidResult, result.Score, result.TotalQuestions)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	if result.SessionID != "" {
		exists, err := s.results.ExistsForSession(ctx, tx, result.SessionID)
		if err != nil {
			tx.Rollback()
			return err
		}
		if exists {
			tx.Rollback()
			log.Printf("Session %s already recorded, skipping", result.SessionID)
			return nil
		}
	}

	playerID, err := s.players.IDByUsername(ctx, tx, result.Username)
	if err != nil {
		tx.Rollback()
		return err
	}

	entry := &models.QuizResult{
		PlayerID:       playerID,
		SessionID:      result.SessionID,
		Difficulty:     result.Difficulty,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
	}
	if err := s.results.Append(ctx, tx, entry); err != nil {
		tx.Rollback()
		return err
	}

	if err := s.stats.ApplyResult(ctx, tx, playerID, result.Score); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// TopPlayers returns the leaderboard, highest score first
func (s *Service) TopPlayers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultTopPlayers
	}
	return s.players.Top(ctx, limit)
}

// Player returns the statistics of one player
func (s *Service) Player(ctx context.Context, username string) (*models.Player, error) {
	return s.players.GetByUsername(ctx, strings.TrimSpace(username))
}

// History returns the newest quiz results of a player
func (s *Service) History(ctx context.Context, username string, limit int) ([]models.QuizResult, error) {
	id, err := s.players.IDByUsername(ctx, s.db, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	return s.results.GetByPlayer(ctx, id, limit)
}

// RecentResults returns the newest quiz results of all players
func (s *Service) RecentResults(ctx context.Context, limit int) ([]models.QuizResult, error) {
	return s.results.Recent(ctx, limit)
}
