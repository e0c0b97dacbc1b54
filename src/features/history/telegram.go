package history

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/polaMikhail/directory-sync/src/mirror"
)

// TelegramHandler handles Telegram commands for the history feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the history feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"history": "Show recent sync runs",
	}
}

// HandleCommand processes history-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "history":
		return h.handleHistory(bot, chatID)
	default:
		msg := tgbotapi.NewMessage(chatID, "❌ Unknown history command. Use /history")
		bot.Send(msg)
		return nil
	}
}

// handleHistory shows the latest sync runs
func (h *TelegramHandler) handleHistory(bot *tgbotapi.BotAPI, chatID int64) error {
	runs, err := h.service.Recent(context.Background(), 10)
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "❌ Failed to load run history")
		bot.Send(msg)
		return err
	}

	if len(runs) == 0 {
		msg := tgbotapi.NewMessage(chatID, "📋 *No sync runs recorded yet*")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	message := "📋 *Recent sync runs*\n\n"
	for _, run := range runs {
		message += fmt.Sprintf("%s `%s` %s: %d copied, %d deleted, %d failed\n",
			statusEmoji(run.Status),
			run.StartedAt.Format("01-02 15:04"),
			run.Trigger,
			run.Copied, run.Deleted, run.Failed)
	}

	msg := tgbotapi.NewMessage(chatID, message)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
	return nil
}

func statusEmoji(status mirror.RunStatus) string {
	switch status {
	case mirror.RunCompleted:
		return "✅"
	case mirror.RunPartial:
		return "⚠️"
	case mirror.RunFailed:
		return "❌"
	default:
		return "❔"
	}
}
