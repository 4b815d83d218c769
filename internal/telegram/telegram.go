// Package telegram hosts the Telegram client, the update dispatcher, and the
// gateway adapter used by the conversation handlers.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"tg_shop_bot/internal/config"
	"tg_shop_bot/internal/conversation"
	"tg_shop_bot/internal/logging"
)

var (
	defaultAllowedUpdates = bot.AllowedUpdates{
		"message",
		"callback_query",
	}

	createBot = func(token string, options ...bot.Option) (botAPI, error) {
		return bot.New(token, options...)
	}
)

// Client wraps the Telegram bot instance and forwards every polled update to
// the dispatcher. The dispatcher is attached after construction because it
// needs the gateway this client provides; attach it before calling Start.
type Client struct {
	api        botAPI
	dispatcher *Dispatcher
	logger     *logrus.Entry
}

// NewClient initializes the Telegram bot with long polling.
func NewClient(cfg config.Config, logger *logrus.Entry) (*Client, error) {
	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, errors.New("telegram token is required")
	}
	if logger == nil {
		logger = logging.Logger()
	}

	client := &Client{logger: logger}

	api, err := createBot(cfg.TelegramToken,
		bot.WithAllowedUpdates(defaultAllowedUpdates),
		bot.WithDefaultHandler(client.handleUpdate),
		bot.WithErrorsHandler(errorHandler(logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot client: %w", err)
	}

	client.api = api
	return client, nil
}

// AttachDispatcher wires the update dispatcher. Updates arriving before a
// dispatcher is attached are dropped.
func (c *Client) AttachDispatcher(dispatcher *Dispatcher) {
	c.dispatcher = dispatcher
}

// Gateway returns the messenger boundary backed by this client's bot API.
func (c *Client) Gateway() conversation.Gateway {
	return NewGateway(c.api)
}

// Start begins receiving updates via long polling until the context is canceled.
func (c *Client) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger.WithFields(logging.Fields{
		"event":           "telegram_listen",
		"allowed_updates": defaultAllowedUpdates,
	}).Info("starting telegram long polling")

	c.api.Start(ctx)

	c.logger.WithField("event", "telegram_stopped").Info("telegram polling stopped")
}

func (c *Client) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update == nil {
		return
	}

	if cb := update.CallbackQuery; cb != nil && c.api != nil {
		// Acknowledge first so the button stops spinning even when the
		// handler path fails.
		if _, err := c.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: cb.ID,
		}); err != nil {
			c.logger.WithField("event", "callback_answer_failed").
				WithError(err).Warn("failed to answer callback query")
		}
	}

	if c.dispatcher == nil {
		c.logger.WithField("event", "dispatcher_missing").
			Warn("dropping update received before dispatcher attach")
		return
	}

	c.dispatcher.Handle(ctx, update)
}

func errorHandler(logger *logrus.Entry) bot.ErrorsHandler {
	if logger == nil {
		logger = logging.Logger()
	}

	return func(err error) {
		if err == nil {
			return
		}

		logger.WithField("event", "telegram_error").WithError(err).Error("telegram polling error")
	}
}
