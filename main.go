package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/mathquiz/internal/bot"
	"github.com/example/mathquiz/internal/cli"
	"github.com/example/mathquiz/internal/config"
	"github.com/example/mathquiz/internal/database"
	"github.com/example/mathquiz/internal/quiz"
	"github.com/example/mathquiz/internal/scheduler"
)

func main() {
	os.Exit(run())
}

// run owns every deferred cleanup so they finish before the process exits
func run() int {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}

	// Cancel the context on Ctrl+C or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		return 1
	}
	defer db.Close()

	svc := database.NewService(db)
	gen := quiz.NewGenerator(nil)

	difficulty, err := cfg.Quiz.DifficultyTier()
	if err != nil {
		log.Printf("Invalid quiz difficulty: %v", err)
		return 1
	}

	switch cfg.Mode {
	case config.ModeBot:
		err = runBot(ctx, cfg, svc, gen, difficulty)
	default:
		err = runConsole(ctx, cfg, svc, gen, difficulty)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Error: %v", err)
		return 1
	}
	return 0
}

func runConsole(ctx context.Context, cfg *config.Config, svc *database.Service, gen *quiz.Generator, difficulty quiz.Difficulty) error {
	// The console has no chat to report to, only snapshot exports run
	if cfg.Export.Dir != "" {
		sched := scheduler.New(svc, nil, scheduler.Options{
			ExportSchedule:  cfg.Export.Schedule,
			ExportDir:       cfg.Export.Dir,
			LeaderboardSize: cfg.Quiz.LeaderboardSize,
		})
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	console := cli.New(os.Stdin, os.Stdout, quiz.NewCoordinator(svc, gen), svc, cli.Options{
		Difficulty:      difficulty,
		QuestionCount:   cfg.Quiz.QuestionCount,
		LeaderboardSize: cfg.Quiz.LeaderboardSize,
		ExportDir:       cfg.Export.Dir,
	})
	return console.Run(ctx)
}

func runBot(ctx context.Context, cfg *config.Config, svc *database.Service, gen *quiz.Generator, difficulty quiz.Difficulty) error {
	adminIDs, err := cfg.Telegram.AdminIDs()
	if err != nil {
		return err
	}

	b, err := bot.New(cfg.Telegram.Token, svc, gen, &bot.BotConfig{
		DefaultDifficulty: difficulty,
		QuestionCount:     cfg.Quiz.QuestionCount,
		LeaderboardSize:   cfg.Quiz.LeaderboardSize,
		AdminChatIDs:      adminIDs,
	})
	if err != nil {
		return err
	}
	defer b.Stop()

	opts := scheduler.Options{
		ExportSchedule:  cfg.Export.Schedule,
		ExportDir:       cfg.Export.Dir,
		LeaderboardSize: cfg.Quiz.LeaderboardSize,
	}
	if len(adminIDs) > 0 {
		opts.ReportSchedule = cfg.Telegram.ReportSchedule
	}
	sched := scheduler.New(svc, b, opts)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	log.Println("Bot started. Press Ctrl+C to stop.")
	return b.Start(ctx)
}
