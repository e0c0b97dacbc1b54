package syncing

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles Telegram commands for the syncing feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the syncing feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"status": "Show sync configuration and state",
		"sync":   "Trigger a sync run now",
	}
}

// HandleCommand processes sync-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "status":
		return h.handleStatus(bot, chatID)
	case "sync":
		return h.handleSync(bot, chatID)
	default:
		msg := tgbotapi.NewMessage(chatID, "❌ Unknown sync command. Use /status or /sync")
		bot.Send(msg)
		return nil
	}
}

// handleStatus shows the sync configuration and state
func (h *TelegramHandler) handleStatus(bot *tgbotapi.BotAPI, chatID int64) error {
	status := h.service.Status()
	state := "idle"
	if status.InProgress {
		state = "running"
	}

	message := fmt.Sprintf("🔄 *Sync status*\n\nSource: `%s`\nDestination: `%s`\nSchedule: `%s`\nState: %s",
		status.SourcePath, status.DestinationPath, status.Schedule, state)

	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}

// handleSync triggers a sync run
func (h *TelegramHandler) handleSync(bot *tgbotapi.BotAPI, chatID int64) error {
	jobID, err := h.service.StartSyncJob(TriggerManual)
	if err != nil {
		text := "❌ Failed to start sync job"
		if errors.Is(err, ErrSyncInProgress) {
			text = "⏳ A sync is already in progress"
		}
		bot.Send(tgbotapi.NewMessage(chatID, text))
		return err
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🚀 Sync job started: `%s`", jobID))
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}
