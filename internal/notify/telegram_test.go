package notify

import (
	"errors"
	"io"
	"testing"
	"time"

	"lendit/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, msg)
	}
	return tgbotapi.Message{}, s.err
}

func newTestNotifier(sender *fakeSender) *TelegramNotifier {
	logger := zerolog.New(io.Discard)
	return NewWithSender(sender, 42, &logger)
}

func TestNotifierBookingEvents(t *testing.T) {
	sender := &fakeSender{}
	notifier := newTestNotifier(sender)

	bus := events.NewEventBus()
	notifier.Subscribe(bus)

	payload := events.BookingEventPayload{
		BookingID: 5, ItemID: 10, BookerID: 2, Status: "WAITING",
		Start: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 3, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, bus.PublishJSON(events.EventBookingCreated, payload))
	require.NoError(t, bus.PublishJSON(events.EventBookingApproved, payload))
	require.NoError(t, bus.PublishJSON(events.EventBookingRejected, payload))

	require.Len(t, sender.sent, 3)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "New booking #5")
	assert.Contains(t, sender.sent[1].Text, "approved")
	assert.Contains(t, sender.sent[2].Text, "rejected")
}

func TestNotifierCommentEvent(t *testing.T) {
	sender := &fakeSender{}
	notifier := newTestNotifier(sender)

	bus := events.NewEventBus()
	notifier.Subscribe(bus)

	require.NoError(t, bus.PublishJSON(events.EventCommentAdded, events.CommentEventPayload{
		CommentID: 6, ItemID: 10, AuthorID: 2,
	}))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "comment #6")
	assert.Contains(t, sender.sent[0].Text, "item 10")
}

func TestNotifierBadPayload(t *testing.T) {
	sender := &fakeSender{}
	notifier := newTestNotifier(sender)

	err := notifier.handleBookingEvent(&events.Event{
		Type:    events.EventBookingCreated,
		Payload: []byte("not json"),
	})
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestNotifierSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("network down")}
	notifier := newTestNotifier(sender)

	err := notifier.send("hello")
	assert.Error(t, err)
}
