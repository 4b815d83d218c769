package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"tg_shop_bot/internal/conversation"
)

type fakeBotAPI struct {
	startedWith context.Context

	sendMessageParams *bot.SendMessageParams
	sendPhotoParams   *bot.SendPhotoParams
	editParams        *bot.EditMessageTextParams
	deleteParams      *bot.DeleteMessageParams
	answerParams      *bot.AnswerCallbackQueryParams

	nextMessageID int
	sendErr       error
	editErr       error
	deleteErr     error
	answerErr     error
}

func (f *fakeBotAPI) Start(ctx context.Context) {
	f.startedWith = ctx
}

func (f *fakeBotAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.sendMessageParams = params
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextMessageID++
	return &models.Message{ID: f.nextMessageID}, nil
}

func (f *fakeBotAPI) SendPhoto(_ context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	f.sendPhotoParams = params
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextMessageID++
	return &models.Message{ID: f.nextMessageID}, nil
}

func (f *fakeBotAPI) EditMessageText(_ context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	f.editParams = params
	if f.editErr != nil {
		return nil, f.editErr
	}
	return &models.Message{ID: params.MessageID}, nil
}

func (f *fakeBotAPI) DeleteMessage(_ context.Context, params *bot.DeleteMessageParams) (bool, error) {
	f.deleteParams = params
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	return true, nil
}

func (f *fakeBotAPI) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.answerParams = params
	if f.answerErr != nil {
		return false, f.answerErr
	}
	return true, nil
}

func TestGatewaySendMessageMapsKeyboard(t *testing.T) {
	api := &fakeBotAPI{nextMessageID: 100}
	g := NewGateway(api)

	keyboard := conversation.Keyboard{
		{{Label: "Herring", Data: "p1"}},
		{{Label: "Cart", Data: "cart"}},
	}

	id, err := g.SendMessage(context.Background(), 55, "Choose an available fish:", keyboard)
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if id != 101 {
		t.Fatalf("expected message id 101, got %d", id)
	}

	params := api.sendMessageParams
	if params == nil {
		t.Fatalf("expected SendMessage to reach the bot API")
	}
	if params.ChatID != int64(55) || params.Text != "Choose an available fish:" {
		t.Fatalf("unexpected params: %+v", params)
	}

	markup, ok := params.ReplyMarkup.(*models.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("expected inline keyboard markup, got %T", params.ReplyMarkup)
	}
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 keyboard rows, got %d", len(markup.InlineKeyboard))
	}
	if markup.InlineKeyboard[0][0].Text != "Herring" || markup.InlineKeyboard[0][0].CallbackData != "p1" {
		t.Fatalf("unexpected first button: %+v", markup.InlineKeyboard[0][0])
	}
}

func TestGatewaySendMessageWithoutKeyboardOmitsMarkup(t *testing.T) {
	api := &fakeBotAPI{}
	g := NewGateway(api)

	if _, err := g.SendMessage(context.Background(), 55, "hi", nil); err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if api.sendMessageParams.ReplyMarkup != nil {
		t.Fatalf("expected no reply markup, got %+v", api.sendMessageParams.ReplyMarkup)
	}
}

func TestGatewaySendPhotoUsesURL(t *testing.T) {
	api := &fakeBotAPI{}
	g := NewGateway(api)

	id, err := g.SendPhoto(context.Background(), 55, "https://cdn.example.com/fish.jpg", "Herring\n\nFresh.", nil)
	if err != nil {
		t.Fatalf("SendPhoto returned error: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected message id 1, got %d", id)
	}

	photo, ok := api.sendPhotoParams.Photo.(*models.InputFileString)
	if !ok {
		t.Fatalf("expected InputFileString photo, got %T", api.sendPhotoParams.Photo)
	}
	if photo.Data != "https://cdn.example.com/fish.jpg" {
		t.Fatalf("unexpected photo url %q", photo.Data)
	}
	if api.sendPhotoParams.Caption != "Herring\n\nFresh." {
		t.Fatalf("unexpected caption %q", api.sendPhotoParams.Caption)
	}
}

func TestGatewaySendFailuresWrapError(t *testing.T) {
	sendErr := errors.New("telegram: 429")
	api := &fakeBotAPI{sendErr: sendErr}
	g := NewGateway(api)

	if _, err := g.SendMessage(context.Background(), 55, "hi", nil); !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
	if _, err := g.SendPhoto(context.Background(), 55, "u", "c", nil); !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped photo error, got %v", err)
	}
}

func TestGatewayEditMessage(t *testing.T) {
	api := &fakeBotAPI{}
	g := NewGateway(api)

	keyboard := conversation.Keyboard{{{Label: "Pay", Data: "pay"}}}
	if err := g.EditMessage(context.Background(), 55, 17, "Total: $6.00", keyboard); err != nil {
		t.Fatalf("EditMessage returned error: %v", err)
	}

	params := api.editParams
	if params.ChatID != int64(55) || params.MessageID != 17 || params.Text != "Total: $6.00" {
		t.Fatalf("unexpected edit params: %+v", params)
	}
	if _, ok := params.ReplyMarkup.(*models.InlineKeyboardMarkup); !ok {
		t.Fatalf("expected inline keyboard markup on edit")
	}

	api.editErr = errors.New("message is not modified")
	if err := g.EditMessage(context.Background(), 55, 17, "Total: $6.00", keyboard); !errors.Is(err, api.editErr) {
		t.Fatalf("expected wrapped edit error, got %v", err)
	}
}

func TestGatewayDeleteMessage(t *testing.T) {
	api := &fakeBotAPI{}
	g := NewGateway(api)

	if err := g.DeleteMessage(context.Background(), 55, 17); err != nil {
		t.Fatalf("DeleteMessage returned error: %v", err)
	}
	if api.deleteParams.ChatID != int64(55) || api.deleteParams.MessageID != 17 {
		t.Fatalf("unexpected delete params: %+v", api.deleteParams)
	}

	api.deleteErr = errors.New("message to delete not found")
	if err := g.DeleteMessage(context.Background(), 55, 17); !errors.Is(err, api.deleteErr) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
}
