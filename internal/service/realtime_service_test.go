package service

import (
	"context"
	"testing"

	"genie-chat-be/internal/pkg/logger"
	"genie-chat-be/pkg/events"
	pktNats "genie-chat-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushed struct {
	userID    uuid.UUID
	eventType string
	data      map[string]interface{}
}

type fakeDelivery struct {
	pushes []pushed
}

func (d *fakeDelivery) Push(ctx context.Context, userID uuid.UUID, eventType string, data map[string]interface{}) error {
	d.pushes = append(d.pushes, pushed{userID, eventType, data})
	return nil
}

type fakeSubscriber struct {
	subject string
	handler pktNats.EventHandler
}

func (s *fakeSubscriber) Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error {
	s.subject = subject
	s.handler = handler
	return nil
}

func TestRealtimeRelaysUserEvents(t *testing.T) {
	sub := &fakeSubscriber{}
	delivery := &fakeDelivery{}
	svc := NewRealtimeService(sub, delivery, logger.NewNopLogger())
	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, pktNats.SubjectAll, sub.subject)

	userId := uuid.New()
	err := sub.handler(context.Background(), events.NewEvent(events.TypeUserSignedUp, map[string]interface{}{
		events.PayloadUserID: userId.String(),
		events.PayloadEmail:  "secret@example.com",
	}))
	require.NoError(t, err)

	require.Len(t, delivery.pushes, 1)
	assert.Equal(t, userId, delivery.pushes[0].userID)
	assert.Equal(t, events.TypeUserSignedUp, delivery.pushes[0].eventType)
	assert.NotContains(t, delivery.pushes[0].data, events.PayloadEmail)
}

func TestRealtimeIgnoresEventsWithoutUser(t *testing.T) {
	delivery := &fakeDelivery{}
	svc := NewRealtimeService(&fakeSubscriber{}, delivery, logger.NewNopLogger())

	require.NoError(t, svc.HandleEvent(context.Background(), events.NewEvent("SYSTEM", nil)))
	require.NoError(t, svc.HandleEvent(context.Background(), events.NewEvent("SYSTEM", map[string]interface{}{events.PayloadUserID: "nope"})))
	assert.Empty(t, delivery.pushes)
}
