package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/mathquiz/internal/excel"
	"github.com/example/mathquiz/internal/quiz"
	"github.com/example/mathquiz/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Constants for callback data
const (
	callbackDifficulty  = "difficulty:"
	callbackLeaderboard = "leaderboard"
	callbackStats       = "stats"
)

const helpText = "🧮 Math Master Quiz\n\n" +
	"/quiz [easy|medium|hard] - Start a new quiz\n" +
	"/stop - Abandon the current quiz\n" +
	"/retry - Retry saving a finished quiz\n" +
	"/leaderboard - Show the top players\n" +
	"/stats - Show your statistics\n" +
	"/export - Download the leaderboard as a spreadsheet\n" +
	"/help - Show this help\n\n" +
	"While a quiz is running, just send the answer as a number."

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.From != nil && update.Message.Chat != nil:
		defer b.release(sessionKey{chatID: update.Message.Chat.ID, userID: update.Message.From.ID})
		if update.Message.IsCommand() {
			err = b.HandleCommand(ctx, update.Message)
		} else {
			err = b.handleAnswer(ctx, update.Message)
		}
	case update.CallbackQuery != nil:
		if cb := update.CallbackQuery; cb.From != nil && cb.Message != nil && cb.Message.Chat != nil {
			defer b.release(sessionKey{chatID: cb.Message.Chat.ID, userID: cb.From.ID})
		}
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		log.Printf("Error handling update %d: %v", update.UpdateID, err)
	}
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start", "help":
		msg := tgbotapi.NewMessage(chatID, helpText)
		msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
		return b.sendMessage(msg)
	case "quiz":
		return b.handleQuiz(ctx, chatID, message.From, message.CommandArguments())
	case "stop":
		return b.handleStop(chatID, message.From)
	case "retry":
		return b.handleRetry(ctx, chatID, message.From)
	case "leaderboard":
		return b.handleLeaderboard(ctx, chatID)
	case "stats":
		return b.handleStats(ctx, chatID, message.From)
	case "export":
		return b.handleExport(ctx, chatID)
	default:
		msg := tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see the available commands.")
		return b.sendMessage(msg)
	}
}

// HandleCallback handles presses on inline keyboard buttons
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.Message.Chat == nil || callback.From == nil {
		return fmt.Errorf("invalid callback: required fields are missing")
	}

	// Acknowledge the press so the client stops the spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}

	chatID := callback.Message.Chat.ID
	data := callback.Data
	switch {
	case strings.HasPrefix(data, callbackDifficulty):
		return b.handleQuiz(ctx, chatID, callback.From, strings.TrimPrefix(data, callbackDifficulty))
	case data == callbackLeaderboard:
		return b.handleLeaderboard(ctx, chatID)
	case data == callbackStats:
		return b.handleStats(ctx, chatID, callback.From)
	default:
		return fmt.Errorf("unknown callback data %q", data)
	}
}

func (b *Bot) handleQuiz(ctx context.Context, chatID int64, from *tgbotapi.User, arg string) error {
	difficulty := b.config.DefaultDifficulty
	if arg = strings.TrimSpace(arg); arg != "" {
		d, err := quiz.ParseDifficulty(arg)
		if err != nil {
			msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Unknown difficulty %q. Choose one:", arg))
			msg.ReplyMarkup = createKeyboard(b.MainMenuButtons()[:1])
			return b.sendMessage(msg)
		}
		difficulty = d
	}

	coord := b.coordinator(sessionKey{chatID: chatID, userID: from.ID})
	session, err := coord.Start(ctx, username(from), difficulty, b.config.QuestionCount)
	if err != nil {
		log.Printf("Error starting quiz for chat %d: %v", chatID, err)
		return b.sendMessage(tgbotapi.NewMessage(chatID, "❌ Could not start the quiz, please try again later."))
	}

	text := fmt.Sprintf("Quiz started: %d %s questions.\n\n%s", session.Len(), session.Difficulty, questionText(session))
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) handleAnswer(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	coord := b.coordinator(sessionKey{chatID: chatID, userID: message.From.ID})

	session := coord.Session()
	if session == nil || session.State() != quiz.InProgress {
		msg := tgbotapi.NewMessage(chatID, "No quiz is running. Pick a difficulty to start one:")
		msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
		return b.sendMessage(msg)
	}

	value, err := quiz.ParseAnswer(message.Text)
	if err != nil {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "Please enter a valid number.\n\n"+questionText(session)))
	}

	res, err := coord.Submit(ctx, value)
	if err != nil && !errors.Is(err, quiz.ErrReconciliationFailed) {
		return err
	}

	var text strings.Builder
	if res.Correct {
		text.WriteString("🎉 Correct!")
	} else {
		text.WriteString(fmt.Sprintf("❌ Sorry, the correct answer was %d.", res.Expected))
	}
	text.WriteString("\n\n")

	if !res.Completed {
		text.WriteString(questionText(session))
		return b.sendMessage(tgbotapi.NewMessage(chatID, text.String()))
	}

	text.WriteString(resultText(session))
	if err != nil {
		log.Printf("Error saving result for chat %d: %v", chatID, err)
		text.WriteString("\n\n⚠️ Your result could not be saved. Use /retry to try again.")
	}
	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleStop(chatID int64, from *tgbotapi.User) error {
	b.coordinator(sessionKey{chatID: chatID, userID: from.ID}).Abandon()

	msg := tgbotapi.NewMessage(chatID, "Quiz stopped. Nothing was saved.")
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleRetry(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	err := b.coordinator(sessionKey{chatID: chatID, userID: from.ID}).Retry(ctx)

	switch {
	case errors.Is(err, quiz.ErrReconciliationFailed):
		return b.sendMessage(tgbotapi.NewMessage(chatID, "⚠️ Saving failed again, please retry later."))
	case err != nil:
		return b.sendMessage(tgbotapi.NewMessage(chatID, "There is no finished quiz to save."))
	default:
		return b.sendMessage(tgbotapi.NewMessage(chatID, "✅ Result saved."))
	}
}

func (b *Bot) handleLeaderboard(ctx context.Context, chatID int64) error {
	entries, err := b.store.TopPlayers(ctx, b.config.LeaderboardSize)
	if err != nil {
		log.Printf("Error loading leaderboard: %v", err)
		return b.sendMessage(tgbotapi.NewMessage(chatID, "❌ Could not load the leaderboard."))
	}
	return b.sendMessage(tgbotapi.NewMessage(chatID, formatLeaderboard(entries)))
}

func (b *Bot) handleStats(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	player, err := b.store.Player(ctx, username(from))
	if err != nil || player.TotalGames == 0 {
		return b.sendMessage(tgbotapi.NewMessage(chatID, "You have no statistics yet. Start a quiz with /quiz!"))
	}

	text := fmt.Sprintf("📊 Statistics for %s\n\nGames played: %d\nTotal score: %d\nHighest score: %d\nAverage score: %.2f",
		player.Username, player.TotalGames, player.TotalScore, player.HighestScore, player.AverageScore())
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) handleExport(ctx context.Context, chatID int64) error {
	entries, err := b.store.TopPlayers(ctx, b.config.LeaderboardSize)
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}
	history, err := b.store.RecentResults(ctx, 500)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	var buf bytes.Buffer
	if err := excel.Write(&buf, excel.Report{Leaderboard: entries, History: history}); err != nil {
		return err
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  excel.FileName(time.Now()),
		Bytes: buf.Bytes(),
	})
	return b.sendMessage(doc)
}

// username identifies a Telegram user as a quiz player. Users without a
// username get "#<id>"; '#' is not allowed in Telegram usernames.
func username(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return u.UserName
	}
	return fmt.Sprintf("#%d", u.ID)
}

func questionText(s *quiz.Session) string {
	p, ok := s.Current()
	if !ok {
		return ""
	}
	return fmt.Sprintf("Question %d/%d:\n%s = ?", s.Index()+1, s.Len(), p)
}

func resultText(s *quiz.Session) string {
	return fmt.Sprintf("🏆 Quiz complete!\nPlayer: %s\nScore: %d/%d\nPercentage: %.2f%%",
		s.Username, s.Correct(), s.Len(), s.Percentage())
}

func formatLeaderboard(entries []models.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "🏆 Leaderboard\n\nNo games played yet."
	}
	var text strings.Builder
	text.WriteString("🏆 Leaderboard\n")
	for _, e := range entries {
		text.WriteString(fmt.Sprintf("\n%d. %s - best %d, games %d", e.Rank, e.Username, e.HighestScore, e.TotalGames))
	}
	return text.String()
}
