package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/soltixdb/tsexplorer/internal/config"
)

// Backend types
const (
	TypeNone   = "none"
	TypeMemory = "memory"
	TypeNATS   = "nats"
	TypeRedis  = "redis"
	TypeKafka  = "kafka"
)

// NewQueue creates a Queue for the configured backend.
// An empty type or "none" yields a queue that discards everything.
func NewQueue(cfg config.EventsConfig) (Queue, error) {
	switch strings.ToLower(cfg.Type) {
	case "", TypeNone:
		return nopQueue{}, nil

	case TypeMemory:
		return newMemoryQueue(), nil

	case TypeNATS:
		return newNATSQueue(cfg.URL, cfg.SubjectPrefix)

	case TypeRedis:
		return newRedisQueue(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
			Group:    cfg.RedisGroup,
		})

	case TypeKafka:
		return newKafkaQueue(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			GroupID: cfg.KafkaGroupID,
		})

	default:
		return nil, fmt.Errorf("unsupported events type: %s (supported: none, memory, nats, redis, kafka)", cfg.Type)
	}
}

// IsNop reports whether q discards all messages
func IsNop(q Queue) bool {
	_, ok := q.(nopQueue)
	return ok
}

type nopQueue struct{}

func (nopQueue) Publish(context.Context, string, []byte) error { return nil }
func (nopQueue) Subscribe(string, MessageHandler) error        { return nil }
func (nopQueue) Unsubscribe(string) error                      { return nil }
func (nopQueue) Close() error                                  { return nil }
