package service

import (
	"errors"
	"testing"
	"time"

	"shareit/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTelegramService_SendMessage(t *testing.T) {
	bot := new(mockSender)
	logger := zerolog.Nop()
	s := NewTelegramService(bot, nil, &logger)

	bot.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 42 && msg.Text == "hello"
	})).Return(tgbotapi.Message{MessageID: 1}, nil)

	msg, err := s.SendMessage(42, "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, msg.MessageID)
}

func TestTelegramService_NotifiesOnBookingEvents(t *testing.T) {
	bot := new(mockSender)
	logger := zerolog.Nop()
	s := NewTelegramService(bot, []int64{100, 200}, &logger)

	bus := events.NewEventBus(&logger)
	s.Subscribe(bus)

	var texts []string
	bot.On("Send", mock.Anything).Run(func(args mock.Arguments) {
		texts = append(texts, args.Get(0).(tgbotapi.MessageConfig).Text)
	}).Return(tgbotapi.Message{}, nil)

	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, bus.PublishJSON(events.EventBookingApproved, events.BookingEventPayload{
		BookingID: 5, ItemName: "Tent", Start: start, End: start.Add(time.Hour),
	}))
	require.NoError(t, bus.PublishJSON(events.EventItemCreated, events.ItemEventPayload{ItemID: 1}))

	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "Booking #5 approved")
	assert.Contains(t, texts[0], "2025-06-02T10:00:00")
}

func TestTelegramService_ReportsSendErrors(t *testing.T) {
	bot := new(mockSender)
	logger := zerolog.Nop()
	s := NewTelegramService(bot, []int64{100}, &logger)
	bot.On("Send", mock.Anything).Return(tgbotapi.Message{}, errors.New("telegram down"))

	event, err := events.NewJSONEvent(events.EventBookingCreated, events.BookingEventPayload{BookingID: 1})
	require.NoError(t, err)
	assert.Error(t, s.HandleBookingEvent(&event))

	bad := events.Event{Type: events.EventBookingCreated, Payload: []byte("{")}
	assert.Error(t, s.HandleBookingEvent(&bad))
}

func TestFormatBookingNotification(t *testing.T) {
	p := events.BookingEventPayload{BookingID: 3, ItemName: "Kayak", BookerName: "Bob", BookerID: 2, ItemID: 9}
	assert.Contains(t, FormatBookingNotification(events.EventBookingCreated, p), "New booking #3")
	assert.Contains(t, FormatBookingNotification(events.EventBookingRejected, p), "rejected")
	assert.Empty(t, FormatBookingNotification("other", p))
}
