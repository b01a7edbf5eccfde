package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strconv"
	"strings"

	"github.com/example/mathquiz/internal/quiz"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ModeCLI runs the interactive terminal quiz
	ModeCLI = "cli"
	// ModeBot serves quizzes over Telegram
	ModeBot = "bot"
)

// Config holds all application settings
type Config struct {
	Mode     string         `mapstructure:"mode"`
	Database DatabaseConfig `mapstructure:"database"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Export   ExportConfig   `mapstructure:"export"`
}

// DatabaseConfig selects the SQL driver and data source
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// QuizConfig holds session defaults
type QuizConfig struct {
	Difficulty      string `mapstructure:"difficulty"`
	QuestionCount   int    `mapstructure:"question_count"`
	LeaderboardSize int    `mapstructure:"leaderboard_size"`
}

// TelegramConfig configures the chat front end
type TelegramConfig struct {
	Token          string `mapstructure:"token"`
	AdminChatIDs   string `mapstructure:"admin_chat_ids"` // Comma separated
	ReportSchedule string `mapstructure:"report_schedule"`
}

// ExportConfig configures spreadsheet snapshots of the leaderboard
type ExportConfig struct {
	Dir      string `mapstructure:"dir"`
	Schedule string `mapstructure:"schedule"`
}

// Load reads .env, the optional config file and the environment.
// Environment variables win over the file, the file wins over defaults.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	vip := viper.New()

	vip.SetDefault("mode", ModeCLI)
	vip.SetDefault("database.driver", "sqlite3")
	vip.SetDefault("database.dsn", "")
	vip.SetDefault("quiz.difficulty", string(quiz.Medium))
	vip.SetDefault("quiz.question_count", 10)
	vip.SetDefault("quiz.leaderboard_size", quiz.DefaultLeaderboardSize)
	vip.SetDefault("telegram.token", "")
	vip.SetDefault("telegram.admin_chat_ids", "")
	vip.SetDefault("telegram.report_schedule", "0 9 * * *")
	vip.SetDefault("export.dir", "")
	vip.SetDefault("export.schedule", "0 0 * * *")

	vip.BindEnv("mode", "APP_MODE")
	vip.BindEnv("database.driver", "DB_DRIVER")
	vip.BindEnv("database.dsn", "DB_DSN")
	vip.BindEnv("quiz.difficulty", "QUIZ_DIFFICULTY")
	vip.BindEnv("quiz.question_count", "QUIZ_QUESTION_COUNT")
	vip.BindEnv("quiz.leaderboard_size", "LEADERBOARD_SIZE")
	vip.BindEnv("telegram.token", "TELEGRAM_BOT_TOKEN")
	vip.BindEnv("telegram.admin_chat_ids", "ADMIN_CHAT_IDS")
	vip.BindEnv("telegram.report_schedule", "REPORT_SCHEDULE")
	vip.BindEnv("export.dir", "EXPORT_DIR")
	vip.BindEnv("export.schedule", "EXPORT_SCHEDULE")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that would otherwise fail late
func (c *Config) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode != ModeCLI && c.Mode != ModeBot {
		return fmt.Errorf("unknown mode %q (want %s or %s)", c.Mode, ModeCLI, ModeBot)
	}
	if _, err := c.Quiz.DifficultyTier(); err != nil {
		return fmt.Errorf("invalid QUIZ_DIFFICULTY: %w", err)
	}
	if c.Quiz.QuestionCount < 1 {
		return fmt.Errorf("QUIZ_QUESTION_COUNT must be at least 1, got %d", c.Quiz.QuestionCount)
	}
	if c.Quiz.LeaderboardSize < 1 {
		c.Quiz.LeaderboardSize = quiz.DefaultLeaderboardSize
	}
	if c.Mode == ModeBot && c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	if _, err := c.Telegram.AdminIDs(); err != nil {
		return err
	}
	return nil
}

// DifficultyTier returns the configured default difficulty
func (q QuizConfig) DifficultyTier() (quiz.Difficulty, error) {
	return quiz.ParseDifficulty(q.Difficulty)
}

// AdminIDs parses the comma separated list of chats that receive reports
func (t TelegramConfig) AdminIDs() ([]int64, error) {
	var ids []int64
	for _, idStr := range strings.Split(t.AdminChatIDs, ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin chat ID %q: %w", idStr, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
