package inflight

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"
)

const (
	dialTimeout  = 2 * time.Second
	readTimeout  = 1500 * time.Millisecond
	writeTimeout = 1500 * time.Millisecond

	keyPrefix = "custody:inflight:"
)

// NewRedisPool connects to a redis:// url and checks the connection once.
func NewRedisPool(url string) (*redis.Pool, error) {
	opts := []redis.DialOption{
		redis.DialConnectTimeout(dialTimeout),
		redis.DialReadTimeout(readTimeout),
		redis.DialWriteTimeout(writeTimeout),
	}

	p := &redis.Pool{
		MaxIdle:     16,
		MaxActive:   64,
		Wait:        true,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(url, opts...)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Second {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	c := p.Get()
	defer c.Close()

	if _, err := c.Do("PING"); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// RedisGuard shares in-flight markers between replicas.
type RedisGuard struct {
	pool *redis.Pool
	ttl  time.Duration
}

func NewRedisGuard(pool *redis.Pool, ttl time.Duration) *RedisGuard {
	return &RedisGuard{pool: pool, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	c, err := g.pool.GetContext(ctx)
	if err != nil {
		return false, err
	}
	defer c.Close()

	reply, err := redis.String(c.Do("SET", keyPrefix+key, heldMarker, "NX", "PX", g.ttl.Milliseconds()))
	if err == redis.ErrNil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return reply == "OK", nil
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	c, err := g.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	_, err = c.Do("DEL", keyPrefix+key)
	return err
}

func (g *RedisGuard) Close() error {
	return g.pool.Close()
}
