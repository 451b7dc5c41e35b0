package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/models"
)

func newManager(t *testing.T) *config.Manager {
	t.Helper()
	mgr, err := config.NewManager(config.WithConfigDir(t.TempDir()))
	require.NoError(t, err)
	return mgr
}

func TestBuildEngineWithoutProvider(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())
	engine, err := BuildEngine(cfg)
	require.NoError(t, err)
	assert.Nil(t, engine.Generator)
	require.NotNil(t, engine.Graph)

	txns := []models.Transaction{
		{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(30000), Kind: models.KindInflow, Category: "salary"},
		{Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(5000), Kind: models.KindOutflow, Category: "utilities"},
	}
	report, err := engine.Graph.Analyze(context.Background(), "u1", txns, models.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, "u1", report.UserID)
	assert.Empty(t, report.Errors)
}

func TestBuildEngineRejectsUnknownProvider(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())
	cfg.LLMProvider = "telepathy"
	_, err := BuildEngine(cfg)
	assert.Error(t, err)
}

func TestExternalOptions(t *testing.T) {
	cfg := *config.DefaultConfigWithRoot(t.TempDir())
	cfg.ExternalTimeoutSec = 2
	cfg.ExternalMaxRetries = 5
	opts := ExternalOptions(cfg)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, 5, opts.Retry.MaxRetries)
}

func TestRuntimeReloadsOnUpdate(t *testing.T) {
	mgr := newManager(t)

	var mu sync.Mutex
	var topics []string
	rt, err := NewRuntime(mgr, WithNotifier(func(topic, payload string) {
		mu.Lock()
		defer mu.Unlock()
		topics = append(topics, topic)
	}))
	require.NoError(t, err)
	defer rt.Close()

	first := rt.Engine()
	require.NotNil(t, first)

	cfg := rt.Config()
	cfg.CurrencySymbol = "$"
	require.NoError(t, mgr.Update(cfg))

	second := rt.Engine()
	assert.Greater(t, second.Version, first.Version)
	assert.Equal(t, "$", second.Config.CurrencySymbol)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, topics, "engine.reloaded")
}

func TestRuntimeIgnoresNonEngineKeys(t *testing.T) {
	mgr := newManager(t)
	builds := 0
	rt, err := NewRuntime(mgr, WithBuilder(func(cfg config.Config) (*Engine, error) {
		builds++
		return BuildEngine(cfg)
	}))
	require.NoError(t, err)
	defer rt.Close()

	before := rt.Engine()
	cfg := rt.Config()
	cfg.ResultsDir = t.TempDir()
	cfg.DefaultTargetSavings = 0.3
	require.NoError(t, mgr.Update(cfg))

	assert.Same(t, before, rt.Engine())
	assert.Equal(t, 1, builds)
	assert.Equal(t, 0.3, rt.Config().DefaultTargetSavings)

	require.NoError(t, rt.UpdateConfigJSON(`{"max_tokens": 1024}`))
	assert.Equal(t, 2, builds)
	assert.Equal(t, 1024, rt.Engine().Config.MaxTokens)
}

func TestRuntimeKeepsEngineWhenRebuildFails(t *testing.T) {
	mgr := newManager(t)
	calls := 0
	builder := func(cfg config.Config) (*Engine, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("boom")
		}
		return BuildEngine(cfg)
	}

	var failed string
	rt, err := NewRuntime(mgr, WithBuilder(builder), WithNotifier(func(topic, payload string) {
		if topic == "engine.reload_failed" {
			failed = payload
		}
	}))
	require.NoError(t, err)
	defer rt.Close()

	before := rt.Engine()
	cfg := rt.Config()
	cfg.CurrencySymbol = "€"
	require.NoError(t, mgr.Update(cfg))

	assert.Same(t, before, rt.Engine())
	assert.True(t, strings.Contains(failed, "boom"))
}

func TestNewRuntimeRequiresManager(t *testing.T) {
	_, err := NewRuntime(nil)
	assert.Error(t, err)
}
