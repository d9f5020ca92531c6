package memory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOwnershipCache(t *testing.T) {
	c := NewOwnershipCache(time.Minute)
	conversationId, userId := uuid.New(), uuid.New()

	_, ok := c.Owner(conversationId)
	assert.False(t, ok)

	c.Remember(conversationId, userId)
	owner, ok := c.Owner(conversationId)
	assert.True(t, ok)
	assert.Equal(t, userId, owner)
	assert.Equal(t, 1, c.Len())

	c.Forget(conversationId)
	_, ok = c.Owner(conversationId)
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestOwnershipCacheExpires(t *testing.T) {
	c := NewOwnershipCache(20 * time.Millisecond)
	conversationId := uuid.New()
	c.Remember(conversationId, uuid.New())

	assert.Eventually(t, func() bool {
		_, ok := c.Owner(conversationId)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
