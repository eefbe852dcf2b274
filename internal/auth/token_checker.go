package auth

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	tokenCacheSize = 10 * 1024 * 1024 // 10 MB
	// short on purpose: a logout must not serve stale identities for long
	tokenCacheTTLSeconds = 60
)

// TokenChecker resolves tokens to user ids, with a freecache layer
// above redis so hot tokens skip the network round trip.
type TokenChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
	cache       *freecache.Cache
}

func NewTokenChecker(ttl time.Duration, redisClient *redis.Client) *TokenChecker {
	return &TokenChecker{
		ttl:         ttl,
		redisClient: redisClient,
		cache:       freecache.NewCache(tokenCacheSize),
	}
}

func (tc *TokenChecker) UserID(ctx context.Context, token string) (string, error) {
	if cached, err := tc.cache.Get([]byte(token)); err == nil {
		return string(cached), nil
	}

	sessionKey := sessionKeyPrefix + token
	cmd := tc.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", err
	}

	userID, createdAt, err := parseSessionValue(cmd.Val())
	if err != nil {
		return "", err
	}

	if time.Since(createdAt) > tc.ttl {
		return "", ErrSessionExpired
	}

	if err := tc.cache.Set([]byte(token), []byte(userID), tokenCacheTTLSeconds); err != nil {
		log.Tracef("token checker, cache set: %s", err)
	}

	return userID, nil
}

// Invalidate drops the token from the local cache (used on logout).
func (tc *TokenChecker) Invalidate(token string) {
	tc.cache.Del([]byte(token))
}
