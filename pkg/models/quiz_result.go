package models

import "time"

// QuizResult is one row of the append-only quiz history
type QuizResult struct {
	ID             int64     `json:"id" db:"id"`
	PlayerID       int64     `json:"player_id" db:"player_id"`
	SessionID      string    `json:"session_id" db:"session_id"`
	QuizDate       time.Time `json:"quiz_date" db:"quiz_date"`
	Difficulty     string    `json:"difficulty" db:"difficulty"`
	Score          int       `json:"score" db:"score"`
	TotalQuestions int       `json:"total_questions" db:"total_questions"`
	Username       string    `json:"username,omitempty" db:"username"` // Only filled by joined queries
}

// Percentage returns the share of correct answers, 0-100
func (r QuizResult) Percentage() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.TotalQuestions) * 100
}

// SessionResult is the tally a finished session hands to the store
type SessionResult struct {
	SessionID      string
	Username       string
	Difficulty     string
	Score          int
	TotalQuestions int
}
