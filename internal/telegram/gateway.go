package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"tg_shop_bot/internal/conversation"
)

// botAPI captures the subset of bot.Bot behavior we rely on to allow
// lightweight stubbing in tests without a live Telegram connection.
type botAPI interface {
	Start(ctx context.Context)
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// gateway adapts the Telegram bot API to the conversation.Gateway boundary.
type gateway struct {
	api botAPI
}

// NewGateway wraps a bot API in the messenger boundary consumed by the
// conversation handlers.
func NewGateway(api botAPI) conversation.Gateway {
	return &gateway{api: api}
}

func (g *gateway) SendMessage(ctx context.Context, chatID int64, text string, keyboard conversation.Keyboard) (int, error) {
	msg, err := g.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: toReplyMarkup(keyboard),
	})
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	if msg == nil {
		return 0, errors.New("send message: empty response")
	}
	return msg.ID, nil
}

func (g *gateway) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, keyboard conversation.Keyboard) (int, error) {
	msg, err := g.api.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      chatID,
		Photo:       &models.InputFileString{Data: photoURL},
		Caption:     caption,
		ReplyMarkup: toReplyMarkup(keyboard),
	})
	if err != nil {
		return 0, fmt.Errorf("send photo: %w", err)
	}
	if msg == nil {
		return 0, errors.New("send photo: empty response")
	}
	return msg.ID, nil
}

func (g *gateway) EditMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard conversation.Keyboard) error {
	_, err := g.api.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: toReplyMarkup(keyboard),
	})
	if err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

func (g *gateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if _, err := g.api.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	}); err != nil {
		return fmt.Errorf("delete message %d: %w", messageID, err)
	}
	return nil
}

func toReplyMarkup(keyboard conversation.Keyboard) models.ReplyMarkup {
	if len(keyboard) == 0 {
		return nil
	}

	rows := make([][]models.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, models.InlineKeyboardButton{
				Text:         btn.Label,
				CallbackData: btn.Data,
			})
		}
		rows = append(rows, buttons)
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
