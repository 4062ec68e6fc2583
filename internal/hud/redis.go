// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package hud

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RedisConfig holds Redis connection and publishing settings.
type RedisConfig struct {
	Addr     string        // Redis server address (host:port)
	Password string        // Redis password (optional)
	DB       int           // Redis database number
	Channel  string        // PUBLISH channel for notifications
	Key      string        // hash holding the latest notification per topic
	TTL      time.Duration // expiry of Key; zero keeps it forever
}

// Message is the JSON envelope published for each notification.
type Message struct {
	Topic string       `json:"topic"`
	At    time.Time    `json:"at"`
	Data  Notification `json:"data"`
}

// RedisSink publishes notifications to a channel and keeps the latest one
// per topic in a hash so late subscribers can catch up.
type RedisSink struct {
	client  *redis.Client
	cfg     RedisConfig
	logger  zerolog.Logger
	now     func() time.Time
	warnLog *rate.Limiter
	stats   struct {
		published atomic.Int64
		failed    atomic.Int64
	}
}

// DialRedis connects to Redis and verifies the connection.
func DialRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// NewRedisSink creates a RedisSink on an existing client.
func NewRedisSink(client *redis.Client, cfg RedisConfig, logger zerolog.Logger) *RedisSink {
	if cfg.Channel == "" {
		cfg.Channel = "obshud:events"
	}
	if cfg.Key == "" {
		cfg.Key = "obshud:state"
	}
	return &RedisSink{
		client:  client,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		warnLog: rate.NewLimiter(rate.Every(30*time.Second), 1),
	}
}

// Notify publishes n. Failures are logged and counted, never returned.
func (s *RedisSink) Notify(ctx context.Context, n Notification) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	msg, err := json.Marshal(Message{Topic: n.Topic(), At: s.now().UTC(), Data: n})
	if err != nil {
		s.fail(err, n.Topic(), "json marshal failed")
		return
	}

	pipe := s.client.Pipeline()
	pipe.Publish(ctx, s.cfg.Channel, msg)
	pipe.HSet(ctx, s.cfg.Key, n.Topic(), msg)
	if s.cfg.TTL > 0 {
		pipe.Expire(ctx, s.cfg.Key, s.cfg.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.fail(err, n.Topic(), "redis publish failed")
		return
	}
	s.stats.published.Add(1)
}

// Latest returns the stored message for topic.
func (s *RedisSink) Latest(ctx context.Context, topic string) ([]byte, bool, error) {
	b, err := s.client.HGet(ctx, s.cfg.Key, topic).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Published and Failed report counters for diagnostics.
func (s *RedisSink) Published() int64 { return s.stats.published.Load() }
func (s *RedisSink) Failed() int64    { return s.stats.failed.Load() }

// Client returns the underlying client for health checks.
func (s *RedisSink) Client() *redis.Client { return s.client }

// Close releases the client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}

func (s *RedisSink) fail(err error, topic, msg string) {
	s.stats.failed.Add(1)
	if !s.warnLog.Allow() {
		return
	}
	s.logger.Warn().Err(err).Str("topic", topic).Str("channel", s.cfg.Channel).Msg(msg)
}
