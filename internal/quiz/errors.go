package quiz

import "errors"

var (
	// ErrInvalidDifficulty is returned for a difficulty tier the generator does not know
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrInvalidQuestionCount is returned when a quiz is requested with fewer than one question
	ErrInvalidQuestionCount = errors.New("question count must be at least 1")
	// ErrEmptyUsername is returned when a session is started without a player name
	ErrEmptyUsername = errors.New("username must not be empty")
	// ErrInvalidAnswerFormat is returned by ParseAnswer for non-integer input
	ErrInvalidAnswerFormat = errors.New("answer must be a whole number")
	// ErrNoActiveSession is returned when answering before any session was started
	ErrNoActiveSession = errors.New("no active session")
	// ErrSessionAlreadyComplete is returned when answering after the last problem
	ErrSessionAlreadyComplete = errors.New("session already complete")
	// ErrPersistenceUnavailable wraps store failures while preparing a session
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	// ErrReconciliationFailed wraps store failures while recording a finished session
	ErrReconciliationFailed = errors.New("reconciliation failed")
)
