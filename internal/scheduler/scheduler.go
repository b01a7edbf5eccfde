package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/mathquiz/internal/excel"
	"github.com/example/mathquiz/pkg/models"
	"github.com/go-co-op/gocron"
)

// historyRows caps the history sheet of a snapshot export
const historyRows = 500

// Source provides the data for reports
type Source interface {
	TopPlayers(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	RecentResults(ctx context.Context, limit int) ([]models.QuizResult, error)
}

// Notifier interface for publishing the leaderboard
type Notifier interface {
	PostLeaderboard(entries []models.LeaderboardEntry) error
}

// Options selects which jobs run and when
type Options struct {
	ReportSchedule  string // Cron expression, empty disables the report
	ExportSchedule  string // Cron expression for snapshot exports
	ExportDir       string // Empty disables snapshot exports
	LeaderboardSize int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    Source
	notifier  Notifier
	opts      Options
}

// New creates a new scheduler instance. notifier may be nil.
func New(source Source, notifier Notifier, opts Options) *Scheduler {
	if opts.LeaderboardSize <= 0 {
		opts.LeaderboardSize = 10
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		source:    source,
		notifier:  notifier,
		opts:      opts,
	}
}

// Start registers the configured jobs and runs them in the background
func (s *Scheduler) Start() error {
	if s.notifier != nil && s.opts.ReportSchedule != "" {
		_, err := s.scheduler.Cron(s.opts.ReportSchedule).Do(func() {
			if err := s.SendReport(context.Background()); err != nil {
				log.Printf("Error sending leaderboard report: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule leaderboard report: %w", err)
		}
	}

	if s.opts.ExportDir != "" && s.opts.ExportSchedule != "" {
		_, err := s.scheduler.Cron(s.opts.ExportSchedule).Do(func() {
			path, err := s.ExportSnapshot(context.Background(), time.Now())
			if err != nil {
				log.Printf("Error exporting leaderboard snapshot: %v", err)
				return
			}
			log.Printf("Leaderboard snapshot written to %s", path)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule snapshot export: %w", err)
		}
	}

	s.scheduler.StartAsync()
	log.Printf("Scheduler started with %d job(s)", len(s.scheduler.Jobs()))
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// SendReport posts the current leaderboard through the notifier
func (s *Scheduler) SendReport(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}
	entries, err := s.source.TopPlayers(ctx, s.opts.LeaderboardSize)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		log.Println("Leaderboard is empty, skipping report")
		return nil
	}
	return s.notifier.PostLeaderboard(entries)
}

// ExportSnapshot writes the leaderboard and recent history to the export directory
func (s *Scheduler) ExportSnapshot(ctx context.Context, now time.Time) (string, error) {
	entries, err := s.source.TopPlayers(ctx, s.opts.LeaderboardSize)
	if err != nil {
		return "", err
	}
	history, err := s.source.RecentResults(ctx, historyRows)
	if err != nil {
		return "", err
	}
	return excel.Save(s.opts.ExportDir, excel.Report{Leaderboard: entries, History: history}, now)
}
