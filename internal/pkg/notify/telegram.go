package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/nbaprops/internal/pkg/config"
	"github.com/Vodeneev/nbaprops/internal/pkg/interfaces"
	"github.com/Vodeneev/nbaprops/internal/pkg/performance"
)

// Telegram rejects longer messages.
const maxMessageLen = 4096

// TelegramNotifier posts run summaries to one chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

var _ interfaces.RunNotifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier connects to the Bot API and checks the token with getMe.
func NewTelegramNotifier(token string, chatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	return newTelegramNotifier(token, chatID, tgbotapi.APIEndpoint, &http.Client{Timeout: 15 * time.Second}, logger)
}

func newTelegramNotifier(token string, chatID int64, endpoint string, client tgbotapi.HTTPClient, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("Telegram notifier initialized", "bot", bot.Self.UserName, "chat_id", chatID)
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

// NewFromConfig returns nil without error when Telegram is not configured.
func NewFromConfig(cfg config.TelegramConfig, logger *slog.Logger) (interfaces.RunNotifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		return nil, nil
	}
	n, err := NewTelegramNotifier(cfg.BotToken, cfg.ChatID, logger)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// truncateMessage cuts text to at most limit characters, never inside a multi-byte rune.
func truncateMessage(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit-3]) + "..."
}

// NotifyRun sends the plain-text run summary.
func (n *TelegramNotifier) NotifyRun(ctx context.Context, report *performance.RunReport) error {
	msg := tgbotapi.NewMessage(n.chatID, truncateMessage(report.Text(), maxMessageLen))
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	n.logger.Debug("run summary sent to telegram", "run_id", report.RunID)
	return nil
}
