package main

import (
	"context"
	"log/slog"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albapepper/fantasy-playbook/internal/config"
	"github.com/albapepper/fantasy-playbook/internal/resolver"
)

func TestNewLogger(t *testing.T) {
	l := newLogger("debug", false)
	assert.IsType(t, &slog.TextHandler{}, l.Handler())
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))

	l = newLogger("warn", true)
	assert.IsType(t, &slog.JSONHandler{}, l.Handler())
	assert.False(t, l.Enabled(context.Background(), slog.LevelInfo))

	l = newLogger("loud", false)
	assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, l.Enabled(context.Background(), slog.LevelDebug))
}

func TestShutdownSignalsIncludeSIGTERM(t *testing.T) {
	assert.Contains(t, shutdownSignals, syscall.SIGTERM)
}

func TestMaintenanceTasks(t *testing.T) {
	a := &app{
		cfg: &config.Config{
			RegistryRefreshInterval: time.Hour,
			CacheWarmInterval:       10 * time.Minute,
		},
		registry: resolver.NewStaticRegistry(nil),
	}
	tasks := maintenanceTasks(a)
	assert.Len(t, tasks, 1)
	assert.Equal(t, "registry-refresh", tasks[0].Name)

	a.cfg.YahooClientID = "id"
	a.cfg.YahooClientSecret = "secret"
	tasks = maintenanceTasks(a)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "cache-warm", tasks[1].Name)
	assert.Equal(t, 10*time.Minute, tasks[1].Interval)
}
