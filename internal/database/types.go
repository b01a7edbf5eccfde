package database

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrPlayerNotFound is returned when a result references an unknown username
	ErrPlayerNotFound = errors.New("player not found")
	// ErrInvalidResult is returned for a session tally that cannot be recorded
	ErrInvalidResult = errors.New("invalid session result")
)

// statsUpdater applies a finished session to a player's aggregate row
type statsUpdater interface {
	ApplyResult(ctx context.Context, q sqlx.ExtContext, playerID int64, score int) error
}
