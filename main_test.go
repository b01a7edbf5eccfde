package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_ReturnsExitCodeOnConfigError(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, 1, run())
}

func TestRun_ReturnsExitCodeOnDatabaseError(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("APP_MODE", "cli")
	t.Setenv("DB_DRIVER", "oracle")

	assert.Equal(t, 1, run())
}

func TestRun_ReturnsExitCodeOnSchedulerError(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("APP_MODE", "bot")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("ADMIN_CHAT_IDS", "")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", filepath.Join(t.TempDir(), "quiz.db"))
	t.Setenv("EXPORT_DIR", t.TempDir())
	t.Setenv("EXPORT_SCHEDULE", "not a schedule")

	assert.Equal(t, 1, run())
}
