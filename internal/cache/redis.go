package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/seoscan/internal/report"
)

// Reports is a Redis-backed cache of the most recent report per URL. It is
// best effort: a cache failure is logged and treated as a miss, never
// surfaced to the request.
type Reports struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReports(addr string, ttl time.Duration) *Reports {
	return &Reports{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (c *Reports) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Reports) Close() error {
	return c.client.Close()
}

func key(url string) string {
	return "seoscan:report:" + url
}

// Get returns the cached report for the URL, if any.
func (c *Reports) Get(ctx context.Context, url string) (*report.Report, bool) {
	blob, err := c.client.Get(ctx, key(url)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Debug().Err(err).Str("url", url).Msg("report cache read failed")
		}
		return nil, false
	}
	var r report.Report
	if err := json.Unmarshal(blob, &r); err != nil {
		log.Debug().Err(err).Str("url", url).Msg("report cache entry corrupt")
		return nil, false
	}
	return &r, true
}

// Set stores the report under its URL with the configured TTL.
func (c *Reports) Set(ctx context.Context, r *report.Report) {
	blob, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(r.URL), blob, c.ttl).Err(); err != nil {
		log.Debug().Err(err).Str("url", r.URL).Msg("report cache write failed")
	}
}
