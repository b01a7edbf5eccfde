package quiz

import (
	"github.com/example/mathquiz/pkg/models"
)

// State is the lifecycle position of a session
type State int

const (
	// NotStarted is the zero state of a session that has no problems yet
	NotStarted State = iota
	// InProgress means at least one problem is left to answer
	InProgress
	// Completed means every problem was answered
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Session is one run through a fixed list of problems by one player.
// It is owned by a Coordinator and must not be shared between goroutines.
type Session struct {
	ID         string
	Username   string
	Difficulty Difficulty

	problems []Problem
	current  int
	correct  int
	state    State
	recorded bool
}

// AnswerResult reports the outcome of one submitted answer
type AnswerResult struct {
	Correct   bool
	Expected  int
	Completed bool
}

func newSession(id, username string, d Difficulty, problems []Problem) *Session {
	return &Session{
		ID:         id,
		Username:   username,
		Difficulty: d,
		problems:   problems,
		state:      InProgress,
	}
}

// State returns the lifecycle state
func (s *Session) State() State { return s.state }

// Index returns how many problems have been answered
func (s *Session) Index() int { return s.current }

// Len returns the number of problems in the session
func (s *Session) Len() int { return len(s.problems) }

// Correct returns how many answers matched
func (s *Session) Correct() int { return s.correct }

// Recorded reports whether the result has been persisted
func (s *Session) Recorded() bool { return s.recorded }

// Problems returns a copy of the problem list
func (s *Session) Problems() []Problem {
	return append([]Problem(nil), s.problems...)
}

// Current returns the problem awaiting an answer
func (s *Session) Current() (Problem, bool) {
	if s.current >= len(s.problems) {
		return Problem{}, false
	}
	return s.problems[s.current], true
}

// Percentage returns correct/total*100
func (s *Session) Percentage() float64 {
	if len(s.problems) == 0 {
		return 0
	}
	return float64(s.correct) / float64(len(s.problems)) * 100
}

// Result builds the tally handed to the store on completion
func (s *Session) Result() models.SessionResult {
	return models.SessionResult{
		SessionID:      s.ID,
		Username:       s.Username,
		Difficulty:     string(s.Difficulty),
		Score:          s.correct,
		TotalQuestions: len(s.problems),
	}
}

func (s *Session) submit(value int) (AnswerResult, error) {
	p, ok := s.Current()
	if !ok {
		return AnswerResult{}, ErrSessionAlreadyComplete
	}

	res := AnswerResult{Correct: value == p.Answer, Expected: p.Answer}
	if res.Correct {
		s.correct++
	}
	s.current++

	if s.current == len(s.problems) {
		s.state = Completed
		res.Completed = true
	}
	return res, nil
}
