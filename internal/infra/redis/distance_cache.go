package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/eventmailer/internal/distance"
)

// DistanceCache is a distance.Cache stored in Redis. Keys are scoped by a
// session id so one process never sees another session's values; the TTL
// only lets Redis reclaim finished sessions.
type DistanceCache struct {
	client  *Client
	session string
	ttl     time.Duration
}

var _ distance.Cache = (*DistanceCache)(nil)

// NewDistanceCache creates a cache for one session.
func NewDistanceCache(client *Client, session string, ttl time.Duration) *DistanceCache {
	return &DistanceCache{client: client, session: session, ttl: ttl}
}

func distanceKey(session string, p distance.Pair) string {
	return fmt.Sprintf("distance:%s:%s", session, p.String())
}

func (c *DistanceCache) Get(ctx context.Context, p distance.Pair) (int, bool, error) {
	return c.client.getInt(ctx, distanceKey(c.session, p))
}

func (c *DistanceCache) Store(ctx context.Context, p distance.Pair, d int) (int, error) {
	return c.client.setIntNX(ctx, distanceKey(c.session, p), d, c.ttl)
}
