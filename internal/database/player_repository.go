package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/mathquiz/pkg/models"
	"github.com/jmoiron/sqlx"
)

// PlayerRepository handles database operations for players
type PlayerRepository struct {
	db *sqlx.DB
}

// NewPlayerRepository creates a new repository instance
func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Ensure creates the player if needed and returns its ID. Repeated calls for
// the same username return the same ID and leave the statistics untouched.
func (r *PlayerRepository) Ensure(ctx context.Context, q sqlx.ExtContext, username string) (int64, error) {
	_, err := q.ExecContext(ctx,
		q.Rebind("INSERT INTO players (username) VALUES (?) ON CONFLICT (username) DO NOTHING"),
		username)
	if err != nil {
		return 0, fmt.Errorf("failed to create player: %w", err)
	}
	return r.IDByUsername(ctx, q, username)
}

// IDByUsername resolves a username to the player's primary key
func (r *PlayerRepository) IDByUsername(ctx context.Context, q sqlx.ExtContext, username string) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id, q.Rebind("SELECT id FROM players WHERE username = ?"), username)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q", ErrPlayerNotFound, username)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get player id: %w", err)
	}
	return id, nil
}

// GetByUsername returns a player with its statistics
func (r *PlayerRepository) GetByUsername(ctx context.Context, username string) (*models.Player, error) {
	var player models.Player
	query := `
		SELECT id, username, total_games, total_score, highest_score
		FROM players
		WHERE username = ?
	`
	err := r.db.GetContext(ctx, &player, r.db.Rebind(query), username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &player, nil
}

// ApplyResult counts one more game for the player, adds the score and raises
// the highest score when beaten
func (r *PlayerRepository) ApplyResult(ctx context.Context, q sqlx.ExtContext, playerID int64, score int) error {
	query := `
		UPDATE players SET
			total_games = total_games + 1,
			total_score = total_score + ?,
			highest_score = CASE WHEN highest_score < ? THEN ? ELSE highest_score END
		WHERE id = ?
	`
	result, err := q.ExecContext(ctx, q.Rebind(query), score, score, score, playerID)
	if err != nil {
		return fmt.Errorf("failed to update player stats: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows != 1 {
		return fmt.Errorf("%w: id %d", ErrPlayerNotFound, playerID)
	}
	return nil
}

// Top returns players ordered by highest score, earliest registered first on ties
func (r *PlayerRepository) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT username, highest_score, total_games
		FROM players
		ORDER BY highest_score DESC, id ASC
		LIMIT ?
	`
	var entries []models.LeaderboardEntry
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(query), limit); err != nil {
		return nil, fmt.Errorf("failed to get top players: %w", err)
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
