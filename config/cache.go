package config

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

const defaultSessionTTL = 30 * time.Minute

// NewSessionCache returns the in-memory store backing UI sessions. Expired
// sessions are swept at twice the TTL.
func NewSessionCache(ttl time.Duration) *cache.Cache {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return cache.New(ttl, 2*ttl)
}

func GetCacheKey(prefix string, params ...interface{}) string {
	key := prefix
	for _, param := range params {
		key += ":" + fmt.Sprintf("%v", param)
	}
	return key
}
