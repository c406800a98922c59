package utils

import (
	"context"
	"sync"
	"time"
)

var (
	revoked   = map[string]time.Time{}
	revokedMu sync.Mutex
)

// RevokeToken marks the token ID (jti) as revoked until its natural expiration.
func RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := rc.Set(ctx, RedisKey("jwt", "revoked", tokenID), "1", ttl).Err()
		if err == nil {
			return
		}
		Sugar.Warnf("redis revoke failed, using memory: %v", err)
	}

	revokedMu.Lock()
	defer revokedMu.Unlock()
	now := time.Now()
	for id, exp := range revoked {
		if now.After(exp) {
			delete(revoked, id)
		}
	}
	revoked[tokenID] = expiresAt
}

// IsTokenRevoked reports whether RevokeToken was called for tokenID before it expired.
func IsTokenRevoked(ctx context.Context, tokenID string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, RedisKey("jwt", "revoked", tokenID)).Result()
		if err == nil && n > 0 {
			return true
		}
		// the memory map may still hold ids revoked while Redis was unreachable
	}

	revokedMu.Lock()
	defer revokedMu.Unlock()
	exp, ok := revoked[tokenID]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(revoked, tokenID)
		return false
	}
	return true
}
