// Package telegram implements the gateway.Gateway interface over the
// Telegram Bot API using long polling.
package telegram

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spravuz/spravbot/internal/gateway"
)

// Gateway bridges spravbot dialogues to Telegram.
type Gateway struct {
	token       string
	pollTimeout int
	api         *tgbotapi.BotAPI
}

// Opts holds parameters for creating a Telegram gateway.
type Opts struct {
	Token          string
	PollTimeoutSec int // defaults to 60
}

// New creates a Telegram gateway. The connection is established in Connect.
func New(opts Opts) (*Gateway, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}
	timeout := opts.PollTimeoutSec
	if timeout <= 0 {
		timeout = 60
	}
	return &Gateway{token: opts.Token, pollTimeout: timeout}, nil
}

// Connect authorizes against the Telegram Bot API.
func (g *Gateway) Connect(ctx context.Context) error {
	api, err := tgbotapi.NewBotAPI(g.token)
	if err != nil {
		return fmt.Errorf("telegram: authorize: %w", err)
	}
	g.api = api
	log.Printf("telegram: authorized as %s", api.Self.UserName)
	return nil
}

// Listen starts long polling and converts Telegram updates to inbound
// events. The returned channel closes when the context is cancelled.
func (g *Gateway) Listen(ctx context.Context) (<-chan gateway.InboundEvent, error) {
	if g.api == nil {
		return nil, fmt.Errorf("telegram: not connected")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = g.pollTimeout
	updates := g.api.GetUpdatesChan(u)

	out := make(chan gateway.InboundEvent, 100)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil {
					continue
				}
				out <- convert(update.Message)
			}
		}
	}()
	return out, nil
}

// convert maps a Telegram message to an InboundEvent.
func convert(msg *tgbotapi.Message) gateway.InboundEvent {
	ev := gateway.InboundEvent{
		Identity:  msg.Chat.ID,
		Timestamp: time.Unix(int64(msg.Date), 0),
	}
	switch {
	case msg.Contact != nil:
		ev.Kind = gateway.KindContact
		contact := &gateway.ContactPayload{
			Phone:     msg.Contact.PhoneNumber,
			NumericID: msg.Contact.UserID,
		}
		if msg.From != nil {
			contact.Handle = msg.From.UserName
			// Some clients omit the contact owner's id; fall back to
			// the sender, matching the original bot.
			if contact.NumericID == 0 {
				contact.NumericID = msg.From.ID
			}
		}
		ev.Contact = contact
	case msg.IsCommand():
		ev.Kind = gateway.KindCommand
		ev.Text = msg.Command()
	default:
		ev.Kind = gateway.KindText
		ev.Text = msg.Text
	}
	return ev
}

// Send delivers a prompt, translating the keyboard spec into a Telegram
// reply keyboard.
func (g *Gateway) Send(ctx context.Context, prompt gateway.OutboundPrompt) error {
	if g.api == nil {
		return fmt.Errorf("telegram: not connected")
	}

	msg := tgbotapi.NewMessage(prompt.Identity, prompt.Text)
	if markup, ok := keyboardMarkup(prompt.Keyboard); ok {
		msg.ReplyMarkup = markup
	}
	if _, err := g.api.Send(msg); err != nil {
		return fmt.Errorf("telegram: send to %d: %w", prompt.Identity, err)
	}
	return nil
}

// keyboardMarkup converts a KeyboardSpec to a tgbotapi reply markup.
func keyboardMarkup(spec gateway.KeyboardSpec) (interface{}, bool) {
	if spec.Remove {
		return tgbotapi.NewRemoveKeyboard(true), true
	}
	if len(spec.Buttons) == 0 {
		return nil, false
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(spec.Buttons))
	for _, specRow := range spec.Buttons {
		row := make([]tgbotapi.KeyboardButton, 0, len(specRow))
		for _, b := range specRow {
			if b.RequestContact {
				row = append(row, tgbotapi.NewKeyboardButtonContact(b.Label))
			} else {
				row = append(row, tgbotapi.NewKeyboardButton(b.Label))
			}
		}
		rows = append(rows, row)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.OneTimeKeyboard = spec.OneTime
	return markup, true
}

// Close stops the long-polling loop.
func (g *Gateway) Close() error {
	if g.api != nil {
		g.api.StopReceivingUpdates()
	}
	return nil
}
