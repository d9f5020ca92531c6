package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// OwnershipCache remembers which user owns a conversation. Ownership never changes once a
// conversation exists, so entries only expire to bound memory.
type OwnershipCache struct {
	cache *cache.Cache
}

func NewOwnershipCache(ttl time.Duration) *OwnershipCache {
	return &OwnershipCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *OwnershipCache) Remember(conversationId, userId uuid.UUID) {
	r.cache.Set(conversationId.String(), userId, cache.DefaultExpiration)
}

// Owner reports the cached owner of a conversation, if known.
func (r *OwnershipCache) Owner(conversationId uuid.UUID) (uuid.UUID, bool) {
	if x, found := r.cache.Get(conversationId.String()); found {
		return x.(uuid.UUID), true
	}
	return uuid.Nil, false
}

func (r *OwnershipCache) Forget(conversationId uuid.UUID) {
	r.cache.Delete(conversationId.String())
}

func (r *OwnershipCache) Len() int {
	return r.cache.ItemCount()
}
