package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/FinSage/config"
)

type EngineBuilder func(config.Config) (*Engine, error)

type Option func(*Runtime)

func WithBuilder(builder EngineBuilder) Option {
	return func(r *Runtime) {
		if builder != nil {
			r.builder = builder
		}
	}
}

func WithNotifier(fn func(topic, payload string)) Option {
	return func(r *Runtime) {
		r.notify = fn
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// engineKeys are the config keys BuildEngine reads. Changes to any other
// key leave the running engine in place.
var engineKeys = []string{
	"llm_provider", "llm_model", "backend_url", "max_tokens",
	"openai_api_key", "deepseek_api_key", "anthropic_api_key", "google_api_key",
	"policy_url", "forecast_url", "external_timeout_sec", "external_max_retries",
	"llm_cache_enabled", "llm_cache_size", "currency_symbol",
}

// Runtime keeps the current engine and rebuilds it when a config change
// touches one of engineKeys. A failed rebuild keeps the previous engine.
type Runtime struct {
	cfgMgr *config.Manager
	engine atomic.Pointer[Engine]

	builder EngineBuilder
	notify  func(string, string)
	logger  zerolog.Logger
	cancel  context.CancelFunc
}

func NewRuntime(cfgMgr *config.Manager, opts ...Option) (*Runtime, error) {
	if cfgMgr == nil {
		return nil, fmt.Errorf("config manager is required")
	}

	rt := &Runtime{
		cfgMgr: cfgMgr,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(rt)
	}
	if rt.builder == nil {
		rt.builder = NewEngineBuilder(rt.logger)
	}

	if err := rt.reload(cfgMgr.Get()); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	rt.cancel = cancel
	if err := cfgMgr.Watch(ctx, rt.onConfigChange); err != nil {
		cancel()
		return nil, err
	}

	return rt, nil
}

func (r *Runtime) Engine() *Engine {
	return r.engine.Load()
}

func (r *Runtime) Config() config.Config {
	return r.cfgMgr.Get()
}

func (r *Runtime) Close() {
	if r.cancel != nil {
		r.cancel()
	}
	r.Engine().Close()
}

func (r *Runtime) UpdateConfigJSON(jsonStr string) error {
	return r.cfgMgr.UpdateFromJSON(jsonStr)
}

func (r *Runtime) onConfigChange(change config.Change) {
	if !change.Touches(engineKeys...) {
		r.logger.Debug().Strs("keys", change.Keys).Msg("config change does not affect engine")
		return
	}
	if err := r.reload(change.Current); err != nil {
		r.logger.Error().Err(err).Msg("engine reload failed, keeping previous engine")
	}
}

func (r *Runtime) reload(cfg config.Config) error {
	engine, err := r.builder(cfg)
	if err != nil {
		r.notifyFailure(err)
		return err
	}
	if old := r.engine.Swap(engine); old != nil {
		old.Close()
	}
	r.logger.Info().Uint64("version", engine.Version).Msg("engine built")
	r.notifySuccess(engine)
	return nil
}

func (r *Runtime) notifySuccess(engine *Engine) {
	if r.notify == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"version":  engine.Version,
		"built_at": engine.BuiltAt.UTC().Format(time.RFC3339),
	})
	r.notify("engine.reloaded", string(payload))
}

func (r *Runtime) notifyFailure(err error) {
	if r.notify == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{
		"error": err.Error(),
	})
	r.notify("engine.reload_failed", string(payload))
}
