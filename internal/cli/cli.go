// Package cli provides the command-line interface for FinSage
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/app"
	"github.com/dyike/FinSage/internal/storage"
	"github.com/dyike/FinSage/internal/storage/sqlite"
)

// App holds what the commands share. The engine runtime and the run store
// are opened on first use so that commands like version stay cheap.
type App struct {
	cfgMgr  *config.Manager
	logger  zerolog.Logger
	out     io.Writer
	builder app.EngineBuilder

	mu       sync.Mutex
	runtime  *app.Runtime
	store    *sqlite.Store
	recorder *storage.RunRecorder
}

type AppOption func(*App)

func WithOutput(w io.Writer) AppOption {
	return func(a *App) {
		if w != nil {
			a.out = w
		}
	}
}

func WithLogger(l zerolog.Logger) AppOption {
	return func(a *App) {
		a.logger = l
	}
}

func WithEngineBuilder(b app.EngineBuilder) AppOption {
	return func(a *App) {
		a.builder = b
	}
}

func NewApp(cfgMgr *config.Manager, opts ...AppOption) *App {
	a := &App{
		cfgMgr: cfgMgr,
		logger: zerolog.Nop(),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) Config() config.Config {
	return a.cfgMgr.Get()
}

// Runtime returns the engine runtime, building it on first call.
func (a *App) Runtime() (*app.Runtime, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtime != nil {
		return a.runtime, nil
	}
	opts := []app.Option{
		app.WithLogger(a.logger),
		app.WithNotifier(func(topic, payload string) {
			a.logger.Debug().Str("topic", topic).RawJSON("payload", []byte(payload)).Msg("engine event")
		}),
	}
	if a.builder != nil {
		opts = append(opts, app.WithBuilder(a.builder))
	}
	rt, err := app.NewRuntime(a.cfgMgr, opts...)
	if err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}
	a.runtime = rt
	return rt, nil
}

// Recorder returns the run recorder over the configured database.
func (a *App) Recorder() (*storage.RunRecorder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.recorder != nil {
		return a.recorder, nil
	}
	store, err := sqlite.Open(a.cfgMgr.Get().DBPath)
	if err != nil {
		return nil, err
	}
	rec, err := storage.NewRunRecorder(store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.store = store
	a.recorder = rec
	return rec, nil
}

func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtime != nil {
		a.runtime.Close()
		a.runtime = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close run store")
		}
		a.store = nil
		a.recorder = nil
	}
}

// Run executes the root command with the process arguments.
func Run(ctx context.Context, a *App) error {
	defer a.Close()
	return NewRootCmd(a).ExecuteContext(ctx)
}
