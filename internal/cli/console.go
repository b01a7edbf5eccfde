package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/example/mathquiz/internal/excel"
	"github.com/example/mathquiz/internal/quiz"
	"github.com/example/mathquiz/pkg/models"
)

// Stats is the read side the console needs beyond the coordinator
type Stats interface {
	Player(ctx context.Context, username string) (*models.Player, error)
	RecentResults(ctx context.Context, limit int) ([]models.QuizResult, error)
}

// Options holds console defaults
type Options struct {
	Difficulty      quiz.Difficulty
	QuestionCount   int
	LeaderboardSize int
	ExportDir       string
}

// Console is the terminal presentation of the quiz
type Console struct {
	in       *bufio.Scanner
	out      io.Writer
	coord    *quiz.Coordinator
	stats    Stats
	opts     Options
	username string
}

// New creates a console reading answers from in and writing to out
func New(in io.Reader, out io.Writer, coord *quiz.Coordinator, stats Stats, opts Options) *Console {
	if opts.Difficulty == "" {
		opts.Difficulty = quiz.Medium
	}
	if opts.QuestionCount < 1 {
		opts.QuestionCount = 10
	}
	if opts.LeaderboardSize < 1 {
		opts.LeaderboardSize = quiz.DefaultLeaderboardSize
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "exports"
	}
	return &Console{
		in:    bufio.NewScanner(in),
		out:   out,
		coord: coord,
		stats: stats,
		opts:  opts,
	}
}

// Run shows the main menu until the player quits or input ends
func (c *Console) Run(ctx context.Context) error {
	c.printf("Math Master Quiz\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.printf("\n[s]tart quiz, [l]eaderboard, s[t]ats, [e]xport, [q]uit > ")
		choice, ok := c.readLine()
		if !ok {
			return c.in.Err()
		}

		var err error
		switch strings.ToLower(choice) {
		case "s", "start":
			err = c.playQuiz(ctx)
		case "l", "leaderboard":
			err = c.showLeaderboard(ctx)
		case "t", "stats":
			err = c.showStats(ctx)
		case "e", "export":
			err = c.export(ctx)
		case "q", "quit", "exit":
			c.printf("Bye!\n")
			return nil
		case "":
		default:
			c.printf("Unknown choice %q\n", choice)
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// playQuiz runs one session. io.EOF means input ended mid-quiz.
func (c *Console) playQuiz(ctx context.Context) error {
	if c.username == "" {
		if err := c.askUsername(); err != nil {
			return err
		}
	}

	difficulty, err := c.askDifficulty()
	if err != nil {
		return err
	}

	session, err := c.coord.Start(ctx, c.username, difficulty, c.opts.QuestionCount)
	if err != nil {
		if errors.Is(err, quiz.ErrPersistenceUnavailable) {
			c.printf("Could not start the quiz: %v\n", err)
			return nil
		}
		return err
	}

	for {
		p, ok := session.Current()
		if !ok {
			break
		}

		c.printf("\nQuestion %d/%d: %s = ", session.Index()+1, session.Len(), p)
		line, ok := c.readLine()
		if !ok {
			c.coord.Abandon()
			return io.EOF
		}

		value, err := quiz.ParseAnswer(line)
		if err != nil {
			c.printf("Please enter a valid number.\n")
			continue
		}

		res, err := c.coord.Submit(ctx, value)
		if res.Correct {
			c.printf("Correct!\n")
		} else if !errors.Is(err, quiz.ErrSessionAlreadyComplete) {
			c.printf("Incorrect, the correct answer was %d.\n", res.Expected)
		}

		if err != nil {
			if errors.Is(err, quiz.ErrReconciliationFailed) {
				c.showResult(session)
				return c.retryReconciliation(ctx, err)
			}
			return err
		}
	}

	c.showResult(session)
	return nil
}

func (c *Console) askUsername() error {
	for {
		c.printf("Enter your username: ")
		name, ok := c.readLine()
		if !ok {
			return io.EOF
		}
		if name != "" {
			c.username = name
			return nil
		}
	}
}

func (c *Console) askDifficulty() (quiz.Difficulty, error) {
	for {
		c.printf("Difficulty (easy/medium/hard) [%s]: ", c.opts.Difficulty)
		line, ok := c.readLine()
		if !ok {
			return "", io.EOF
		}
		if line == "" {
			return c.opts.Difficulty, nil
		}
		d, err := quiz.ParseDifficulty(line)
		if err == nil {
			return d, nil
		}
		c.printf("Unknown difficulty %q.\n", line)
	}
}

func (c *Console) showResult(s *quiz.Session) {
	c.printf("\nQuiz Complete!\n")
	c.printf("Player: %s\n", s.Username)
	c.printf("Score: %d/%d\n", s.Correct(), s.Len())
	c.printf("Percentage: %.2f%%\n", s.Percentage())
}

// retryReconciliation reports a storage failure apart from the score and
// lets the player retry saving it
func (c *Console) retryReconciliation(ctx context.Context, cause error) error {
	err := cause
	for err != nil {
		log.Printf("Error saving result: %v", err)
		c.printf("Warning: your result could not be saved (%v).\n", err)
		c.printf("Retry saving? [y/N] ")
		line, ok := c.readLine()
		if !ok || !strings.EqualFold(line, "y") {
			c.printf("Result discarded.\n")
			return nil
		}
		err = c.coord.Retry(ctx)
	}
	c.printf("Result saved.\n")
	return nil
}

func (c *Console) showLeaderboard(ctx context.Context) error {
	entries, err := c.coord.Leaderboard(ctx, c.opts.LeaderboardSize)
	if err != nil {
		c.printf("Could not load the leaderboard: %v\n", err)
		return nil
	}
	c.printf("%s", FormatLeaderboard(entries))
	return nil
}

func (c *Console) showStats(ctx context.Context) error {
	if c.username == "" {
		if err := c.askUsername(); err != nil {
			return err
		}
	}
	p, err := c.stats.Player(ctx, c.username)
	if err != nil {
		c.printf("No statistics for %s yet.\n", c.username)
		return nil
	}
	c.printf("Player: %s\nGames: %d\nTotal score: %d\nHighest score: %d\nAverage score: %.2f\n",
		p.Username, p.TotalGames, p.TotalScore, p.HighestScore, p.AverageScore())
	return nil
}

func (c *Console) export(ctx context.Context) error {
	entries, err := c.coord.Leaderboard(ctx, c.opts.LeaderboardSize)
	if err != nil {
		c.printf("Could not load the leaderboard: %v\n", err)
		return nil
	}
	history, err := c.stats.RecentResults(ctx, 500)
	if err != nil {
		c.printf("Could not load the history: %v\n", err)
		return nil
	}

	path, err := excel.Save(c.opts.ExportDir, excel.Report{Leaderboard: entries, History: history}, time.Now())
	if err != nil {
		c.printf("Export failed: %v\n", err)
		return nil
	}
	c.printf("Leaderboard exported to %s\n", path)
	return nil
}

// FormatLeaderboard renders the leaderboard as a text table
func FormatLeaderboard(entries []models.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "No games played yet.\n"
	}
	var b strings.Builder
	b.WriteString("Top Players\n")
	fmt.Fprintf(&b, "%-5s %-20s %13s %11s\n", "Rank", "Username", "Highest Score", "Total Games")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-5d %-20s %13d %11d\n", e.Rank, e.Username, e.HighestScore, e.TotalGames)
	}
	return b.String()
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}
