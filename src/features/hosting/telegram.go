package hosting

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/polaMikhail/directory-sync/src/features/config"
	"github.com/polaMikhail/directory-sync/src/features/history"
	"github.com/polaMikhail/directory-sync/src/features/jobs"
	"github.com/polaMikhail/directory-sync/src/features/syncing"
)

// TelegramCommandHandler is implemented by each feature that exposes
// bot commands.
type TelegramCommandHandler interface {
	HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error
	GetCommands() map[string]string // command -> description
}

// TelegramBot handles Telegram bot operations
type TelegramBot struct {
	bot      *tgbotapi.BotAPI
	config   *config.Manager
	handlers map[string]TelegramCommandHandler // command -> owning handler
	commands map[string]string                 // command -> description
	updates  tgbotapi.UpdatesChannel
	stopChan chan struct{}
}

// NewTelegramBot creates a new Telegram bot instance
func NewTelegramBot(cfg *config.Manager, syncService *syncing.Service, jobService *jobs.Service, historyService *history.Service) (*TelegramBot, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram bot is disabled in configuration")
	}
	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot initialized", "username", bot.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	telegramBot := &TelegramBot{
		bot:      bot,
		config:   cfg,
		handlers: make(map[string]TelegramCommandHandler),
		commands: make(map[string]string),
		updates:  bot.GetUpdatesChan(updateConfig),
		stopChan: make(chan struct{}),
	}

	telegramBot.register(syncing.NewTelegramHandler(syncService))
	telegramBot.register(jobs.NewTelegramHandler(jobService))
	telegramBot.register(history.NewTelegramHandler(historyService))

	return telegramBot, nil
}

// register wires every command a feature handler exposes.
func (t *TelegramBot) register(handler TelegramCommandHandler) {
	for command, description := range handler.GetCommands() {
		t.handlers[command] = handler
		t.commands[command] = description
	}
}

// Start processes incoming updates until Stop is called.
func (t *TelegramBot) Start() {
	for {
		select {
		case update := <-t.updates:
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			t.handleCommand(update.Message)
		case <-t.stopChan:
			return
		}
	}
}

// Stop shuts the bot down.
func (t *TelegramBot) Stop() {
	t.bot.StopReceivingUpdates()
	close(t.stopChan)
}

func (t *TelegramBot) handleCommand(message *tgbotapi.Message) {
	username := message.From.UserName
	if !slices.Contains(t.config.Get().Telegram.AllowedUsers, username) {
		slog.Warn("Telegram command from unauthorized user", "user", username)
		t.bot.Send(tgbotapi.NewMessage(message.Chat.ID, "🚫 You are not allowed to use this bot."))
		return
	}

	command := message.Command()
	args := message.CommandArguments()
	slog.Debug("Telegram command received", "user", username, "command", command)

	if command == "help" || command == "start" {
		t.sendHelp(message.Chat.ID)
		return
	}

	handler, ok := t.handlers[command]
	if !ok {
		t.bot.Send(tgbotapi.NewMessage(message.Chat.ID, "❌ Unknown command. Use /help"))
		return
	}

	if err := handler.HandleCommand(t.bot, message.Chat.ID, command, args); err != nil {
		slog.Error("Telegram command failed", "command", command, "error", err)
	}
}

func (t *TelegramBot) sendHelp(chatID int64) {
	names := make([]string, 0, len(t.commands))
	for command := range t.commands {
		names = append(names, command)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("🤖 *DirSync bot*\n\n")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("/%s - %s\n", name, t.commands[name]))
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	t.bot.Send(msg)
}
