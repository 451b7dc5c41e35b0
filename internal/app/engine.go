package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dyike/FinSage/config"
	"github.com/dyike/FinSage/internal/agents"
	"github.com/dyike/FinSage/internal/external"
	"github.com/dyike/FinSage/internal/forecast"
	"github.com/dyike/FinSage/internal/graph"
	"github.com/dyike/FinSage/internal/llm"
	"github.com/dyike/FinSage/internal/policy"
)

// Engine is one immutable build of the analysis pipeline from a config.
type Engine struct {
	Config    config.Config
	Graph     *graph.AnalysisGraph
	Generator llm.TextGenerator
	BuiltAt   time.Time
	Version   uint64
}

var engineSeq atomic.Uint64

// Close releases the completion cache, if any.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if c, ok := e.Generator.(interface{ Close() }); ok {
		c.Close()
	}
}

// ExternalOptions derives the per-call timeout and retry budget.
func ExternalOptions(cfg config.Config) external.Options {
	opts := external.DefaultOptions()
	opts.Timeout = cfg.ExternalTimeout()
	opts.Retry.MaxRetries = cfg.ExternalMaxRetries
	return opts
}

func buildGenerator(ctx context.Context, cfg config.Config, log zerolog.Logger) (llm.TextGenerator, error) {
	provider, err := llm.ParseProvider(cfg.LLMProvider)
	if err != nil {
		return nil, err
	}
	opts := llm.Options{
		Provider:  provider,
		Model:     cfg.LLMModel,
		APIKey:    cfg.APIKeyFor(provider),
		BaseURL:   cfg.BackendURL,
		MaxTokens: cfg.MaxTokens,
	}
	if cfg.LLMCacheEnabled {
		opts.CacheSize = cfg.LLMCacheSize
	}

	gen, err := llm.NewGenerator(ctx, opts)
	if errors.Is(err, llm.ErrDisabled) {
		log.Info().Str("provider", string(provider)).Msg("text generation disabled, using rule-based narratives")
		return nil, nil
	}
	return gen, err
}

// NewEngineBuilder returns a builder that wires generators, the policy
// function and the forecaster into a fresh analysis graph.
func NewEngineBuilder(log zerolog.Logger) EngineBuilder {
	return func(cfg config.Config) (*Engine, error) {
		ctx := context.Background()
		gen, err := buildGenerator(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("build text generator: %w", err)
		}

		deps := agents.Deps{
			Generator: gen,
			External:  ExternalOptions(cfg),
			Currency:  cfg.CurrencySymbol,
			Logger:    log,
		}
		if cfg.PolicyURL != "" {
			deps.Policy = policy.NewHTTPPolicy(cfg.PolicyURL, cfg.ExternalTimeout())
		}
		if cfg.ForecastURL != "" {
			deps.Forecaster = forecast.NewHTTPForecaster(cfg.ForecastURL, cfg.ExternalTimeout())
		}

		g, err := graph.NewAnalysisGraph(ctx, deps, graph.WithCallbacks(graph.NewLoggerCallback(log)))
		if err != nil {
			return nil, err
		}
		return &Engine{
			Config:    cfg,
			Graph:     g,
			Generator: gen,
			BuiltAt:   time.Now(),
			Version:   engineSeq.Add(1),
		}, nil
	}
}

// BuildEngine builds an engine without logging.
func BuildEngine(cfg config.Config) (*Engine, error) {
	return NewEngineBuilder(zerolog.Nop())(cfg)
}
