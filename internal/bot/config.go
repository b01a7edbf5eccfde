package bot

import (
	"github.com/example/mathquiz/internal/quiz"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Difficulty used when /quiz has no argument and no button was pressed
	DefaultDifficulty quiz.Difficulty
	// Number of questions per session
	QuestionCount int
	// Number of players shown by /leaderboard and in reports
	LeaderboardSize int
	// Chats that receive the scheduled leaderboard report
	AdminChatIDs []int64
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		DefaultDifficulty: quiz.Medium,
		QuestionCount:     10,
		LeaderboardSize:   quiz.DefaultLeaderboardSize,
	}
}
