package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rfid-attendance/internal/config"
	"rfid-attendance/internal/queue"
	"rfid-attendance/internal/store"
)

func TestOpen_Defaults(t *testing.T) {
	cfg := config.App{
		SessionBackend: BackendFile,
		SessionFile:    filepath.Join(t.TempDir(), "session.json"),
		QueueBackend:   BackendMemory,
	}
	infra, err := Open(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer infra.Close()

	assert.Nil(t, infra.Redis)
	assert.IsType(t, &store.File{}, infra.Session)
	assert.IsType(t, &queue.InMemory{}, infra.Queue)
	assert.True(t, infra.InProcessQueue())
	assert.Empty(t, infra.Checks())
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.App{
		SessionBackend: BackendRedis,
		RedisAddr:      mr.Addr(),
		QueueBackend:   BackendRedis,
		QueueKey:       "test:exports",
	}
	infra, err := Open(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer infra.Close()

	require.NotNil(t, infra.Redis)
	assert.False(t, infra.InProcessQueue())

	require.NoError(t, infra.Session.Set(context.Background(), "user", "v"))
	assert.True(t, mr.Exists("rfid:user"))

	checks := infra.Checks()
	require.Contains(t, checks, "redis")
	assert.True(t, checks["redis"](context.Background()))
}

func TestOpen_UnknownBackends(t *testing.T) {
	_, err := Open(config.App{SessionBackend: "etcd"}, nil)
	assert.Error(t, err)

	_, err = Open(config.App{SessionBackend: BackendMemory, QueueBackend: "kafka"}, nil)
	assert.Error(t, err)
}
