package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/mathquiz/pkg/models"
	"github.com/jmoiron/sqlx"
)

const quizResultColumns = `
	qr.id, qr.player_id, COALESCE(qr.session_id, '') AS session_id, qr.quiz_date,
	qr.difficulty, qr.score, qr.total_questions, p.username
`

// QuizResultRepository handles database operations for the quiz history
type QuizResultRepository struct {
	db *sqlx.DB
}

// NewQuizResultRepository creates a new repository instance
func NewQuizResultRepository(db *sqlx.DB) *QuizResultRepository {
	return &QuizResultRepository{db: db}
}

// Append inserts a new history row and fills in its ID
func (r *QuizResultRepository) Append(ctx context.Context, q sqlx.ExtContext, result *models.QuizResult) error {
	if result.QuizDate.IsZero() {
		result.QuizDate = time.Now().UTC()
	}

	// NULL keeps rows without a session ID out of the unique index
	var sessionID interface{}
	if result.SessionID != "" {
		sessionID = result.SessionID
	}

	query := `
		INSERT INTO quiz_results (
			player_id, session_id, quiz_date, difficulty, score, total_questions
		) VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := sqlx.GetContext(ctx, q, &result.ID, q.Rebind(query),
		result.PlayerID,
		sessionID,
		result.QuizDate,
		result.Difficulty,
		result.Score,
		result.TotalQuestions,
	)
	if err != nil {
		return fmt.Errorf("failed to append quiz result: %w", err)
	}
	return nil
}

// ExistsForSession reports whether a session has already been recorded
func (r *QuizResultRepository) ExistsForSession(ctx context.Context, q sqlx.ExtContext, sessionID string) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, q.Rebind("SELECT COUNT(*) FROM quiz_results WHERE session_id = ?"), sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to look up session: %w", err)
	}
	return count > 0, nil
}

// GetByPlayer returns the newest results of one player
func (r *QuizResultRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]models.QuizResult, error) {
	query := `SELECT ` + quizResultColumns + `
		FROM quiz_results qr
		JOIN players p ON p.id = qr.player_id
		WHERE qr.player_id = ?
		ORDER BY qr.quiz_date DESC, qr.id DESC
		LIMIT ?
	`
	var results []models.QuizResult
	if err := r.db.SelectContext(ctx, &results, r.db.Rebind(query), playerID, limit); err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	return results, nil
}

// Recent returns the newest results across all players
func (r *QuizResultRepository) Recent(ctx context.Context, limit int) ([]models.QuizResult, error) {
	query := `SELECT ` + quizResultColumns + `
		FROM quiz_results qr
		JOIN players p ON p.id = qr.player_id
		ORDER BY qr.quiz_date DESC, qr.id DESC
		LIMIT ?
	`
	var results []models.QuizResult
	if err := r.db.SelectContext(ctx, &results, r.db.Rebind(query), limit); err != nil {
		return nil, fmt.Errorf("failed to get recent quiz results: %w", err)
	}
	return results, nil
}
