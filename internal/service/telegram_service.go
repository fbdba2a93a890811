package service

import (
	"errors"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramService pushes booking lifecycle notifications to operator chats.
type TelegramService struct {
	bot     domain.TelegramSender
	chatIDs []int64
	logger  *zerolog.Logger
}

func NewTelegramService(bot domain.TelegramSender, chatIDs []int64, logger *zerolog.Logger) *TelegramService {
	return &TelegramService{
		bot:     bot,
		chatIDs: chatIDs,
		logger:  logger,
	}
}

func (s *TelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	return s.bot.Send(msg)
}

// Subscribe attaches the notifier to booking events.
func (s *TelegramService) Subscribe(bus *events.EventBus) {
	for _, eventType := range []string{events.EventBookingCreated, events.EventBookingApproved, events.EventBookingRejected} {
		bus.Subscribe(eventType, s.HandleBookingEvent)
	}
}

func (s *TelegramService) HandleBookingEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := event.Decode(&payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.Type, err)
	}

	text := FormatBookingNotification(event.Type, payload)
	if text == "" {
		return nil
	}

	var errs []error
	for _, chatID := range s.chatIDs {
		if _, err := s.SendMessage(chatID, text); err != nil {
			s.logger.Warn().Err(err).Int64("chat_id", chatID).Int64("booking_id", payload.BookingID).Msg("telegram notification failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func FormatBookingNotification(eventType string, p events.BookingEventPayload) string {
	period := fmt.Sprintf("%s .. %s", p.Start.Format(models.TimeLayout), p.End.Format(models.TimeLayout))
	switch eventType {
	case events.EventBookingCreated:
		return fmt.Sprintf("New booking #%d\nItem: %s (#%d)\nBooker: %s (#%d)\nPeriod: %s",
			p.BookingID, p.ItemName, p.ItemID, p.BookerName, p.BookerID, period)
	case events.EventBookingApproved:
		return fmt.Sprintf("Booking #%d approved\nItem: %s\nPeriod: %s", p.BookingID, p.ItemName, period)
	case events.EventBookingRejected:
		return fmt.Sprintf("Booking #%d rejected\nItem: %s\nPeriod: %s", p.BookingID, p.ItemName, period)
	}
	return ""
}
