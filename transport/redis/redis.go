// Package redis stores rendered matrices under a Redis key.
package redis

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/netsampler/fgmatrix/transport"

	"github.com/redis/go-redis/v9"
)

// Client is the part of a Redis client used by the driver.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

type RedisDriver struct {
	redisURL string
	key      string
	ttl      time.Duration
	channel  string
	timeout  time.Duration

	db Client
}

func (d *RedisDriver) Prepare() error {
	flag.StringVar(&d.redisURL, "transport.redis.url", "redis://127.0.0.1:6379/0", "Redis URL")
	flag.StringVar(&d.key, "transport.redis.key", "fgmatrix:matrix", "Key the rendered matrix is stored under")
	flag.DurationVar(&d.ttl, "transport.redis.ttl", 0, "Expiration of the stored matrix (0 keeps it)")
	flag.StringVar(&d.channel, "transport.redis.channel", "", "Channel notified with the key after each store (empty to disable)")
	flag.DurationVar(&d.timeout, "transport.redis.timeout", time.Second*5, "Timeout of each Redis command")
	return nil
}

func (d *RedisDriver) Init() error {
	opts, err := redis.ParseURL(d.redisURL)
	if err != nil {
		return err
	}
	d.db = redis.NewClient(opts)
	slog.Debug("redis client ready", slog.String("addr", opts.Addr), slog.Int("db", opts.DB))
	return nil
}

func (d *RedisDriver) target(key []byte) string {
	if len(key) == 0 {
		return d.key
	}
	return fmt.Sprintf("%s:%s", d.key, key)
}

// Send stores data, then publishes the key it was stored under when a
// channel is configured.
func (d *RedisDriver) Send(key, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	target := d.target(key)
	if err := d.db.Set(ctx, target, data, d.ttl).Err(); err != nil {
		return err
	}
	if d.channel == "" {
		return nil
	}
	return d.db.Publish(ctx, d.channel, target).Err()
}

func (d *RedisDriver) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func init() {
	d := &RedisDriver{}
	transport.RegisterTransportDriver("redis", d)
}
