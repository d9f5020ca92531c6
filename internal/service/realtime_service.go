package service

import (
	"context"

	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/pkg/events"
	pktNats "genie-chat-be/pkg/nats"

	"github.com/google/uuid"
)

const realtimeDurable = "realtime-push"

// RealtimeDelivery pushes a frame to every live connection of a user.
// Implemented by the websocket hub.
type RealtimeDelivery interface {
	Push(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

type RealtimeService struct {
	subscriber EventSubscriber
	delivery   RealtimeDelivery
	logger     logger.ILogger
}

func NewRealtimeService(sub EventSubscriber, delivery RealtimeDelivery, log logger.ILogger) *RealtimeService {
	return &RealtimeService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start relays chat events from the bus to connected clients.
func (s *RealtimeService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, pktNats.SubjectAll, realtimeDurable, s.HandleEvent); err != nil {
		s.logger.Error("REALTIME", "Failed to start realtime subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("REALTIME", "Realtime relay started", map[string]interface{}{"subject": pktNats.SubjectAll})
	return nil
}

func (s *RealtimeService) HandleEvent(ctx context.Context, event events.Event) error {
	raw, ok := events.UserID(event)
	if !ok {
		return nil
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("REALTIME", "Event with malformed user id", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	data := make(map[string]interface{}, len(event.Payload()))
	for k, v := range event.Payload() {
		if k == events.PayloadEmail {
			continue
		}
		data[k] = v
	}

	return s.delivery.Push(ctx, userID, event.EventType(), data)
}
