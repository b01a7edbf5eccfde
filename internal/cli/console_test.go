package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/mathquiz/internal/database"
	"github.com/example/mathquiz/internal/quiz"
	"github.com/example/mathquiz/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = 11

// expectedProblems replays the generator the console's coordinator uses
func expectedProblems(t *testing.T, d quiz.Difficulty, count int) []quiz.Problem {
	t.Helper()
	problems, err := quiz.NewGenerator(rand.NewSource(seed)).Quiz(d, count)
	require.NoError(t, err)
	return problems
}

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestConsole_FullSession(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()
	svc := database.NewService(db)

	problems := expectedProblems(t, quiz.Easy, 3)
	in := script(
		"s",
		"alice",
		"easy",
		fmt.Sprint(problems[0].Answer),
		"twelve",
		fmt.Sprint(problems[1].Answer+1),
		fmt.Sprint(problems[2].Answer),
		"l",
		"t",
		"q",
	)
	var out bytes.Buffer

	coord := quiz.NewCoordinator(svc, quiz.NewGenerator(rand.NewSource(seed)))
	console := New(in, &out, coord, svc, Options{QuestionCount: 3})
	require.NoError(t, console.Run(ctx))

	text := out.String()
	assert.Contains(t, text, "Question 1/3: "+problems[0].String())
	assert.Contains(t, text, "Please enter a valid number.")
	assert.Contains(t, text, fmt.Sprintf("Incorrect, the correct answer was %d.", problems[1].Answer))
	assert.Contains(t, text, "Score: 2/3")
	assert.Contains(t, text, "Percentage: 66.67%")
	assert.Contains(t, text, "Top Players")
	assert.Contains(t, text, "Games: 1")
	assert.Contains(t, text, "Bye!")

	player, err := svc.Player(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, player.TotalGames)
	assert.Equal(t, 2, player.HighestScore)
}

func TestConsole_EndOfInputAbandonsSession(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()
	svc := database.NewService(db)

	problems := expectedProblems(t, quiz.Medium, 5)
	in := script("start", "bob", "", fmt.Sprint(problems[0].Answer))
	var out bytes.Buffer

	coord := quiz.NewCoordinator(svc, quiz.NewGenerator(rand.NewSource(seed)))
	require.NoError(t, New(in, &out, coord, svc, Options{QuestionCount: 5}).Run(ctx))

	assert.Nil(t, coord.Session())
	player, err := svc.Player(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, player.TotalGames)
}

type flakyStore struct {
	failures int
	recorded []models.SessionResult
}

func (s *flakyStore) EnsurePlayer(context.Context, string) (int64, error) { return 1, nil }

func (s *flakyStore) RecordSessionResult(_ context.Context, r models.SessionResult) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("database is locked")
	}
	s.recorded = append(s.recorded, r)
	return nil
}

func (s *flakyStore) TopPlayers(context.Context, int) ([]models.LeaderboardEntry, error) {
	return nil, nil
}

func (s *flakyStore) Player(context.Context, string) (*models.Player, error) {
	return nil, database.ErrPlayerNotFound
}

func (s *flakyStore) RecentResults(context.Context, int) ([]models.QuizResult, error) {
	return nil, nil
}

func TestConsole_ReconciliationFailureIsReportedSeparately(t *testing.T) {
	store := &flakyStore{failures: 1}
	problems := expectedProblems(t, quiz.Hard, 1)
	in := script("s", "carol", "hard", fmt.Sprint(problems[0].Answer), "y", "q")
	var out bytes.Buffer

	coord := quiz.NewCoordinator(store, quiz.NewGenerator(rand.NewSource(seed)))
	require.NoError(t, New(in, &out, coord, store, Options{QuestionCount: 1}).Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Correct!")
	assert.Contains(t, text, "Score: 1/1")
	assert.Contains(t, text, "Warning: your result could not be saved")
	assert.Contains(t, text, "Result saved.")
	require.Len(t, store.recorded, 1)
	assert.Equal(t, "hard", store.recorded[0].Difficulty)
}

func TestConsole_Export(t *testing.T) {
	store := &flakyStore{}
	dir := filepath.Join(t.TempDir(), "out")
	var out bytes.Buffer

	coord := quiz.NewCoordinator(store, quiz.NewGenerator(rand.NewSource(seed)))
	require.NoError(t, New(script("e", "q"), &out, coord, store, Options{ExportDir: dir}).Run(context.Background()))

	assert.Contains(t, out.String(), "Leaderboard exported to "+dir)
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFormatLeaderboard(t *testing.T) {
	assert.Equal(t, "No games played yet.\n", FormatLeaderboard(nil))

	text := FormatLeaderboard([]models.LeaderboardEntry{
		{Rank: 1, Username: "alice", HighestScore: 10, TotalGames: 3},
		{Rank: 2, Username: "bob", HighestScore: 7, TotalGames: 5},
	})
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "1"))
	assert.Contains(t, lines[3], "bob")
}
