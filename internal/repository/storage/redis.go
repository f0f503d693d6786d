package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDialTimeout = 5 * time.Second

var ErrEmptyAddr = errors.New("redis address is empty")

// RedisConfig selects the server and logical database holding the tally keys.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

type RedisStorage struct {
	Connection *redis.Client
}

func NewRedisStorage(ctx context.Context, conf RedisConfig) (*RedisStorage, error) {
	if conf.Addr == "" {
		return nil, ErrEmptyAddr
	}

	if conf.DialTimeout <= 0 {
		conf.DialTimeout = defaultDialTimeout
	}

	conn := redis.NewClient(&redis.Options{
		Addr:        conf.Addr,
		Password:    conf.Password,
		DB:          conf.DB,
		DialTimeout: conf.DialTimeout,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", conf.Addr, err)
	}

	return &RedisStorage{Connection: conn}, nil
}

func (that *RedisStorage) Close() error {
	if that == nil || that.Connection == nil {
		return nil
	}

	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}

	return nil
}
