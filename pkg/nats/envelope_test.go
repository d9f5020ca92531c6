package nats

import (
	"testing"
	"time"

	"genie-chat-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeKeepsTypeAndTimestamp(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	in := events.BaseEvent{
		Type:       events.TypeMessageCreated,
		Data:       map[string]interface{}{"user_id": "u-1", "text": "hi"},
		OccurredAt: at,
	}

	raw, err := encode(in)
	require.NoError(t, err)

	out, err := decode(Subject(in.Type), raw)
	require.NoError(t, err)
	assert.Equal(t, events.TypeMessageCreated, out.EventType())
	assert.True(t, at.Equal(out.Timestamp()))
	assert.Equal(t, "hi", out.Payload()["text"])
}

func TestDecodeFallsBackToSubject(t *testing.T) {
	out, err := decode("events.COMPLETION_STARTED", []byte(`{"data":{"user_id":"u-2"}}`))
	require.NoError(t, err)
	assert.Equal(t, events.TypeCompletionStarted, out.EventType())
	assert.False(t, out.Timestamp().IsZero())

	uid, ok := events.UserID(out)
	assert.True(t, ok)
	assert.Equal(t, "u-2", uid)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decode("events.X", []byte("not json"))
	assert.Error(t, err)
}
