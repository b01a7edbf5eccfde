package bot

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/example/mathquiz/internal/quiz"
	"github.com/example/mathquiz/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot talks to
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Store is the persistence the bot needs: the quiz store plus player reads
type Store interface {
	quiz.Store
	Player(ctx context.Context, username string) (*models.Player, error)
	RecentResults(ctx context.Context, limit int) ([]models.QuizResult, error)
}

// sessionKey identifies one player in one chat. Group members each get
// their own session.
type sessionKey struct {
	chatID int64
	userID int64
}

// chatQueue holds the updates of one chat that are waiting to be handled.
// At most one worker drains a queue, so a chat's updates run in arrival order.
type chatQueue struct {
	pending []tgbotapi.Update
	running bool
}

// Bot represents the Telegram front end of the quiz
type Bot struct {
	api    sender
	botAPI *tgbotapi.BotAPI
	token  string
	store  Store
	gen    *quiz.Generator
	config *BotConfig

	mu       sync.Mutex
	queues   map[int64]*chatQueue
	sessions map[sessionKey]*quiz.Coordinator
	workers  sync.WaitGroup
}

// New creates a new bot instance
func New(token string, store Store, gen *quiz.Generator, config *BotConfig) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	return newBot(nil, store, gen, config, token), nil
}

func newBot(api sender, store Store, gen *quiz.Generator, config *BotConfig, token string) *Bot {
	if config == nil {
		config = DefaultConfig()
	}
	if gen == nil {
		gen = quiz.NewGenerator(nil)
	}
	return &Bot{
		api:      api,
		token:    token,
		store:    store,
		gen:      gen,
		config:   config,
		queues:   make(map[int64]*chatQueue),
		sessions: make(map[sessionKey]*quiz.Coordinator),
	}
}

// Start connects to Telegram and handles updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %v", err)
	}

	b.botAPI = botAPI
	b.api = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	// Set up the update configuration
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.wait()
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

// Stop stops polling for updates
func (b *Bot) Stop() {
	if b.botAPI != nil {
		b.botAPI.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
}

// PostLeaderboard implements the scheduler.Notifier interface
func (b *Bot) PostLeaderboard(entries []models.LeaderboardEntry) error {
	if b.api == nil {
		return fmt.Errorf("bot is not connected")
	}

	var firstErr error
	for _, chatID := range b.config.AdminChatIDs {
		msg := tgbotapi.NewMessage(chatID, formatLeaderboard(entries))
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("Error sending leaderboard to chat %d: %v", chatID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Printf("Leaderboard report sent to chat %d", chatID)
	}
	return firstErr
}

// dispatch queues an update behind the earlier updates of its chat and
// starts a worker for the chat if none is running
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	chatID, ok := updateChatID(update)
	if !ok {
		return
	}

	b.mu.Lock()
	q, ok := b.queues[chatID]
	if !ok {
		q = &chatQueue{}
		b.queues[chatID] = q
	}
	q.pending = append(q.pending, update)
	if q.running {
		b.mu.Unlock()
		return
	}
	q.running = true
	b.mu.Unlock()

	b.workers.Add(1)
	go b.drain(ctx, chatID, q)
}

// drain handles the queued updates of one chat until the queue is empty,
// then drops the queue
func (b *Bot) drain(ctx context.Context, chatID int64, q *chatQueue) {
	defer b.workers.Done()
	for {
		b.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			delete(b.queues, chatID)
			b.mu.Unlock()
			return
		}
		update := q.pending[0]
		q.pending = q.pending[1:]
		b.mu.Unlock()

		b.handleUpdate(ctx, update)
	}
}

// wait blocks until every queued update has been handled
func (b *Bot) wait() {
	b.workers.Wait()
}

func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	default:
		return 0, false
	}
}

// coordinator returns the coordinator of a player in a chat, creating it on
// first use. Only the chat's queue worker may use it.
func (b *Bot) coordinator(key sessionKey) *quiz.Coordinator {
	b.mu.Lock()
	defer b.mu.Unlock()

	coord, ok := b.sessions[key]
	if !ok {
		coord = quiz.NewCoordinator(b.store, b.gen)
		b.sessions[key] = coord
	}
	return coord
}

// release forgets a coordinator that holds nothing worth keeping: no session,
// or a session that is finished and recorded. Unrecorded sessions stay for /retry.
func (b *Bot) release(key sessionKey) {
	b.mu.Lock()
	defer b.mu.Unlock()

	coord, ok := b.sessions[key]
	if !ok {
		return
	}
	s := coord.Session()
	if s == nil || (s.State() == quiz.Completed && s.Recorded()) {
		delete(b.sessions, key)
	}
}

// sendMessage sends a message and logs failures
func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
		return err
	}
	return nil
}

// MainMenuButtons returns the buttons of the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "Easy", CallbackData: callbackDifficulty + string(quiz.Easy)},
			{Text: "Medium", CallbackData: callbackDifficulty + string(quiz.Medium)},
			{Text: "Hard", CallbackData: callbackDifficulty + string(quiz.Hard)},
		},
		{
			{Text: "🏆 Leaderboard", CallbackData: callbackLeaderboard},
			{Text: "📊 My stats", CallbackData: callbackStats},
		},
	}
}
