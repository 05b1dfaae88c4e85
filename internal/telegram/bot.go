// Package telegram is an optional front-end that forwards Telegram text and
// voice messages through the gateway dispatcher.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/saathi-ai/saathi/internal/auth"
	"github.com/saathi-ai/saathi/internal/gateway"
	"github.com/saathi-ai/saathi/internal/logger"
)

const maxVoiceBytes = 10 << 20

// MessageHandler processes one inbound message. Satisfied by
// *gateway.Dispatcher.
type MessageHandler interface {
	Handle(ctx context.Context, req gateway.Request) (gateway.Result, error)
}

// Bot represents a Telegram bot.
type Bot struct {
	bot        *bot.Bot
	dispatcher MessageHandler
	policy     *auth.PolicyService
	httpClient *http.Client
}

// NewBot creates a new bot instance.
func NewBot(token string, dispatcher MessageHandler, policy *auth.PolicyService) (*Bot, error) {
	b := &Bot{
		dispatcher: dispatcher,
		policy:     policy,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	botAPI, err := bot.New(token, bot.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	b.bot = botAPI
	return b, nil
}

// Start starts the bot. It blocks until ctx is canceled.
func (b *Bot) Start(ctx context.Context) {
	b.bot.Start(ctx)
}

// handleUpdate handles a Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, tgbot *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	message := update.Message
	chatID := message.Chat.ID
	userID := message.From.ID

	if !b.policy.IsAllowed(userID) {
		logger.Info("Chat[%d] User[%d]: Rejected by allow list.", chatID, userID)
		b.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Sorry, you are not allowed to use this bot.",
		})
		return
	}

	if message.Text != "" && message.Text[0] == '/' {
		b.handleCommand(ctx, message)
		return
	}

	req := gateway.Request{Sender: fmt.Sprintf("tg-%d", userID)}

	switch {
	case message.Text != "":
		req.Message = message.Text
	case message.Voice != nil:
		audio, err := b.downloadVoice(ctx, message.Voice.FileID)
		if err != nil {
			logger.Error("Chat[%d]: Error downloading voice note: %v", chatID, err)
			b.bot.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "Sorry, I couldn't fetch your voice message.",
			})
			return
		}
		req.Audio = audio
	default:
		logger.Info("Chat[%d] User[%d]: Ignored unhandled message type.", chatID, userID)
		return
	}

	b.respond(ctx, chatID, req)
}

func (b *Bot) respond(ctx context.Context, chatID int64, req gateway.Request) {
	result, err := b.dispatcher.Handle(ctx, req)
	if err != nil {
		var rej *gateway.Rejection
		if errors.As(err, &rej) {
			b.bot.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   rej.Message,
			})
			return
		}
		logger.Error("Chat[%d]: Dispatcher error: %v", chatID, err)
		b.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Sorry, I encountered an error while processing your request.",
		})
		return
	}

	b.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   result.Response,
	})
}

// downloadVoice fetches the raw bytes of a voice note via the file API.
func (b *Bot) downloadVoice(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.bot.GetFile(ctx, &bot.GetFileParams{
		FileID: fileID,
	})
	if err != nil {
		return nil, fmt.Errorf("get file info: %w", err)
	}

	fileURL := b.bot.FileDownloadLink(file)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download voice file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voice download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxVoiceBytes))
}

// handleCommand handles commands sent to the bot.
func (b *Bot) handleCommand(ctx context.Context, message *models.Message) {
	command := message.Text[1:]
	for i, r := range command {
		if r == ' ' || r == '@' {
			command = command[:i]
			break
		}
	}

	switch command {
	case "start":
		text := "Hello! Ask me anything, by text or voice."
		text += "\n\nCommands:"
		text += "\n/help - Show this help message"

		b.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: message.Chat.ID,
			Text:   text,
		})

	case "help":
		text := "Send me a question in any supported language, or record a voice note."
		text += "\n/start - Start or restart the bot"
		text += "\n/help - Show this help message"

		b.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: message.Chat.ID,
			Text:   text,
		})

	default:
		b.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: message.Chat.ID,
			Text:   "Unknown command. Try /help to see available commands.",
		})
	}
}
