package notify

import (
	"encoding/json"
	"fmt"

	"lendit/internal/config"
	"lendit/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender abstracts the Telegram API for testing.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier pushes booking and comment events into a Telegram
// chat, typically one watched by the platform operators.
type TelegramNotifier struct {
	sender Sender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	botAPI.Debug = cfg.Debug

	return &TelegramNotifier{sender: botAPI, chatID: cfg.ChatID, logger: logger}, nil
}

// NewWithSender wires a notifier over an existing sender.
func NewWithSender(sender Sender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID, logger: logger}
}

// Subscribe attaches the notifier to the event bus.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handleBookingEvent)
	bus.Subscribe(events.EventBookingApproved, n.handleBookingEvent)
	bus.Subscribe(events.EventBookingRejected, n.handleBookingEvent)
	bus.Subscribe(events.EventCommentAdded, n.handleCommentEvent)
}

func (n *TelegramNotifier) handleBookingEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event_type", event.Type).Msg("failed to decode booking event")
		return err
	}

	var text string
	switch event.Type {
	case events.EventBookingCreated:
		text = fmt.Sprintf("📦 New booking #%d: item %d, %s — %s",
			payload.BookingID, payload.ItemID,
			payload.Start.Format("2006-01-02 15:04"), payload.End.Format("2006-01-02 15:04"))
	case events.EventBookingApproved:
		text = fmt.Sprintf("✅ Booking #%d approved", payload.BookingID)
	case events.EventBookingRejected:
		text = fmt.Sprintf("❌ Booking #%d rejected", payload.BookingID)
	default:
		return nil
	}

	return n.send(text)
}

func (n *TelegramNotifier) handleCommentEvent(event *events.Event) error {
	var payload events.CommentEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Msg("failed to decode comment event")
		return err
	}

	return n.send(fmt.Sprintf("💬 New comment #%d on item %d", payload.CommentID, payload.ItemID))
}

func (n *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("failed to send telegram notification")
		return err
	}
	return nil
}
