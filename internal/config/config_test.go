package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/mathquiz/internal/quiz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeCLI, cfg.Mode)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Quiz.QuestionCount)
	assert.Equal(t, quiz.DefaultLeaderboardSize, cfg.Quiz.LeaderboardSize)

	d, err := cfg.Quiz.DifficultyTier()
	require.NoError(t, err)
	assert.Equal(t, quiz.Medium, d)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_MODE", "BOT")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_IDS", "11, 22")
	t.Setenv("QUIZ_DIFFICULTY", "hard")
	t.Setenv("QUIZ_QUESTION_COUNT", "5")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://quiz@localhost/quiz?sslmode=disable")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeBot, cfg.Mode)
	assert.Equal(t, 5, cfg.Quiz.QuestionCount)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://quiz@localhost/quiz?sslmode=disable", cfg.Database.DSN)

	ids, err := cfg.Telegram.AdminIDs()
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 22}, ids)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mathquiz.yaml")
	content := "quiz:\n  difficulty: easy\n  question_count: 3\nexport:\n  dir: /tmp/exports\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "easy", cfg.Quiz.Difficulty)
	assert.Equal(t, 3, cfg.Quiz.QuestionCount)
	assert.Equal(t, "/tmp/exports", cfg.Export.Dir)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown difficulty", env: map[string]string{"QUIZ_DIFFICULTY": "insane"}},
		{name: "zero questions", env: map[string]string{"QUIZ_QUESTION_COUNT": "0"}},
		{name: "unknown mode", env: map[string]string{"APP_MODE": "gui"}},
		{name: "bot without token", env: map[string]string{"APP_MODE": "bot", "TELEGRAM_BOT_TOKEN": ""}},
		{name: "bad admin id", env: map[string]string{"ADMIN_CHAT_IDS": "12,abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
