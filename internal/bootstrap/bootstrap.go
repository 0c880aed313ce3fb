package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rfid-attendance/internal/config"
	"rfid-attendance/internal/queue"
	"rfid-attendance/internal/store"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"

	memoryQueueSize = 64
	redisKeyPrefix  = "rfid:"
)

// Infra is the shared plumbing behind the api and the worker: the session
// storage, the export queue and the Redis client when either uses it.
type Infra struct {
	Redis   *store.Redis
	Session store.Storage
	Queue   queue.Queue
}

// Open builds Infra from cfg.
func Open(cfg config.App, logger *zap.Logger) (*Infra, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	infra := &Infra{}
	if cfg.SessionBackend == BackendRedis || cfg.QueueBackend == BackendRedis {
		infra.Redis = store.NewRedis(cfg.RedisAddr, redisKeyPrefix)
		logger.Info("redis configured", zap.String("addr", cfg.RedisAddr))
	}

	switch cfg.SessionBackend {
	case BackendMemory:
		infra.Session = store.NewMemory()
	case BackendFile, "":
		f, err := store.NewFile(cfg.SessionFile, logger.Named("session"))
		if err != nil {
			_ = infra.Close()
			return nil, err
		}
		infra.Session = f
	case BackendRedis:
		infra.Session = infra.Redis
	default:
		_ = infra.Close()
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}

	switch cfg.QueueBackend {
	case BackendMemory, "":
		infra.Queue = queue.NewInMemory(memoryQueueSize)
	case BackendRedis:
		infra.Queue = queue.NewRedisQueue(infra.Redis.Client, cfg.QueueKey, logger)
	default:
		_ = infra.Close()
		return nil, fmt.Errorf("unknown queue backend %q", cfg.QueueBackend)
	}

	logger.Info("infrastructure ready",
		zap.String("session_backend", cfg.SessionBackend),
		zap.String("queue_backend", cfg.QueueBackend),
	)
	return infra, nil
}

// InProcessQueue reports whether export jobs must be consumed by the api
// process itself.
func (i *Infra) InProcessQueue() bool {
	_, ok := i.Queue.(*queue.InMemory)
	return ok
}

// Checks returns the health probes for /healthz.
func (i *Infra) Checks() map[string]func(context.Context) bool {
	checks := map[string]func(context.Context) bool{}
	if i.Redis != nil {
		checks["redis"] = i.Redis.Healthy
	}
	return checks
}

func (i *Infra) Close() error {
	if i.Redis != nil {
		return i.Redis.Close()
	}
	return nil
}
