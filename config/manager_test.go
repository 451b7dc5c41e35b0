package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/FinSage/internal/models"
)

func TestManagerCreatesAndUpdates(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir))
	require.NoError(t, err)

	path := filepath.Join(dir, "config.json")
	_, err = os.Stat(path)
	require.NoError(t, err, "config file not created")
	assert.Equal(t, path, mgr.Path())
	assert.Equal(t, filepath.Join(dir, "data", "finsage.db"), mgr.Get().DBPath)

	cfg := mgr.Get()
	cfg.LLMProvider = "deepseek"
	cfg.CurrencySymbol = "$"

	data, _ := json.Marshal(cfg)
	require.NoError(t, mgr.UpdateFromJSON(string(data)))

	updated := mgr.Get()
	assert.Equal(t, "deepseek", updated.LLMProvider)
	assert.Equal(t, "$", updated.CurrencySymbol)

	reopened, err := NewManager(WithConfigDir(dir))
	require.NoError(t, err)
	assert.Equal(t, "$", reopened.Get().CurrencySymbol)
}

func TestManagerRejectsInvalidUpdate(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()))
	require.NoError(t, err)

	cfg := mgr.Get()
	cfg.LLMProvider = "carrier-pigeon"
	assert.Error(t, mgr.Update(cfg))
	assert.Equal(t, "none", mgr.Get().LLMProvider)

	assert.Error(t, mgr.UpdateFromJSON("{not json"))
}

func TestManagerFillsMissingKeysWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"llm_provider": "openai"}`), 0o644))

	mgr, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)
	cfg := mgr.Get()
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, 30.0, cfg.ExternalTimeoutSec)
	assert.Equal(t, "₹", cfg.CurrencySymbol)
}

func TestManagerUpdateFromPartialJSON(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()))
	require.NoError(t, err)

	require.NoError(t, mgr.UpdateFromJSON(`{"currency_symbol": "$", "default_target_savings": 0.3}`))
	cfg := mgr.Get()
	assert.Equal(t, "$", cfg.CurrencySymbol)
	assert.Equal(t, 0.3, cfg.DefaultTargetSavings)
	assert.Equal(t, 30.0, cfg.ExternalTimeoutSec)

	err = mgr.UpdateFromJSON(`{"default_risk_tolerance": "reckless"}`)
	assert.ErrorIs(t, err, models.ErrInvalidPreferences)
	assert.Equal(t, "medium", mgr.Get().DefaultRiskTolerance)
}

func watchChanges(t *testing.T, mgr *Manager) <-chan Change {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	changes := make(chan Change, 4)
	require.NoError(t, mgr.Watch(ctx, func(c Change) {
		changes <- c
	}))
	return changes
}

func writeRaw(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestManagerUpdateReportsChangedKeys(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	changes := watchChanges(t, mgr)

	cfg := mgr.Get()
	cfg.CurrencySymbol = "$"
	cfg.LLMCacheSize = 64
	require.NoError(t, mgr.Update(cfg))

	got := <-changes
	assert.Equal(t, []string{"llm_cache_size", "currency_symbol"}, got.Keys)
	assert.True(t, got.Touches("currency_symbol"))
	assert.False(t, got.Touches("db_path"))
	assert.Equal(t, "₹", got.Previous.CurrencySymbol)
	assert.Equal(t, "$", got.Current.CurrencySymbol)

	require.NoError(t, mgr.Update(mgr.Get()))
	select {
	case c := <-changes:
		t.Fatalf("unexpected change %v", c.Keys)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestManagerWatchReloadsExternalEdits(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()), WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	changes := watchChanges(t, mgr)

	cfg := mgr.Get()
	cfg.CurrencySymbol = "€"
	writeRaw(t, mgr.Path(), cfg)

	select {
	case got := <-changes:
		assert.Equal(t, []string{"currency_symbol"}, got.Keys)
		assert.Equal(t, "€", mgr.Get().CurrencySymbol)
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}
}

func TestManagerWatchIgnoresInvalidEdits(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	changes := watchChanges(t, mgr)

	cfg := mgr.Get()
	cfg.DefaultTargetSavings = 0.9
	writeRaw(t, mgr.Path(), cfg)

	select {
	case c := <-changes:
		t.Fatalf("invalid file applied: %v", c.Keys)
	case <-time.After(300 * time.Millisecond):
	}
	assert.Equal(t, 0.2, mgr.Get().DefaultTargetSavings)
}

func TestManagerRestoresDeletedFile(t *testing.T) {
	mgr, err := NewManager(WithConfigDir(t.TempDir()), WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	watchChanges(t, mgr)
	require.NoError(t, mgr.UpdateFromJSON(`{"currency_symbol": "$"}`))

	require.NoError(t, os.Remove(mgr.Path()))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(mgr.Path())
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	reopened, err := NewManager(WithConfigPath(mgr.Path()))
	require.NoError(t, err)
	assert.Equal(t, "$", reopened.Get().CurrencySymbol)
}
