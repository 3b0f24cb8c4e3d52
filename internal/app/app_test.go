package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RKPYI/novel-scraper/internal/app"
	"github.com/RKPYI/novel-scraper/internal/config"
	"github.com/RKPYI/novel-scraper/internal/storage/noop"
)

func noopConfig() config.Config {
	return config.Config{
		Source: config.SourceConfig{Name: "wuxiaworld", UserAgent: "test-agent"},
		HTTP:   config.HTTPConfig{TimeoutSeconds: 30, MaxRetries: 3},
		DB:     config.DBConfig{Provider: "noop"},
	}
}

func TestNewWithNoopStore(t *testing.T) {
	t.Parallel()

	a, err := app.New(context.Background(), noopConfig())
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Logger())
	require.IsType(t, &noop.Store{}, a.Store())
	require.Equal(t, "wuxiaworld", a.Config().Source.Name)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := noopConfig()
	cfg.DB.Provider = "mysql"
	_, err := app.New(context.Background(), cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown db provider")
}
