package auth

import (
	"time"

	"foodgram/internal/utils"
)

// Revocations remembers logged-out token ids until they expire. It owns its
// cache: entries are only ever added by Logout, never by anonymous traffic.
type Revocations struct {
	cache *utils.GlobalCache
}

func NewRevocations(size int) *Revocations {
	return &Revocations{cache: utils.NewCache(size)}
}

// Revoke marks jti as logged out for ttl. Non-positive ttl is a no-op.
func (r *Revocations) Revoke(jti string, ttl time.Duration) {
	if jti == "" || ttl <= 0 {
		return
	}
	r.cache.Set(jti, true, ttl)
}

func (r *Revocations) IsRevoked(jti string) bool {
	return r.cache.Has(jti)
}
