package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttlAnswer = 7 * 24 * time.Hour

// Cache stores probe answers keyed by the FEN fields each service depends
// on, with a week-long TTL.
type Cache struct{ rdb *redis.Client }

func NewCache(rdb *redis.Client) *Cache { return &Cache{rdb: rdb} }

// DialCache connects to REDIS_URL and pings it.
func DialCache(ctx context.Context, redisURL string) (*Cache, error) {
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Cache{rdb: rdb}, nil
}

func (c *Cache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Book moves ignore both counters. Tablebase answers depend on the halfmove
// clock through the 50-move rule, so only the fullmove number is dropped.
func (c *Cache) keyBook(fen string) string { return "probe:book:" + fenPrefix(fen, 4) }
func (c *Cache) keyTB(fen string) string   { return "probe:tb:" + fenPrefix(fen, 5) }

// fenPrefix keeps the first n FEN fields.
func fenPrefix(fen string, n int) string {
	fields := strings.Fields(fen)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

func (c *Cache) SaveBookMove(ctx context.Context, fen, move string) error {
	return c.rdb.Set(ctx, c.keyBook(fen), move, ttlAnswer).Err()
}

// LoadBookMove returns "" without error when nothing is cached.
func (c *Cache) LoadBookMove(ctx context.Context, fen string) (string, error) {
	v, err := c.rdb.Get(ctx, c.keyBook(fen)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

func (c *Cache) SaveTB(ctx context.Context, fen string, res TBResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.keyTB(fen), raw, ttlAnswer).Err()
}

func (c *Cache) LoadTB(ctx context.Context, fen string) (*TBResult, error) {
	raw, err := c.rdb.Get(ctx, c.keyTB(fen)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res TBResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
