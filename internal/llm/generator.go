package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

//go:generate mockgen -source=generator.go -destination=generator_mock.go -package=llm

// TextGenerator completes a system/user prompt pair into free text, which
// often embeds a JSON document.
type TextGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Provider string

const (
	ProviderNone      Provider = "none"
	ProviderOpenAI    Provider = "openai"
	ProviderDeepSeek  Provider = "deepseek"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

var Providers = []Provider{ProviderNone, ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderGemini}

// ErrDisabled is returned by NewGenerator when no provider is configured or
// the provider has no API key. Stages then use their rule-based fallbacks.
var ErrDisabled = errors.New("text generation disabled")

type Options struct {
	Provider  Provider
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	// CacheSize bounds the completion cache in entries; zero disables it.
	CacheSize int64
}

func ParseProvider(raw string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return ProviderNone, nil
	}
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown llm provider %q", raw)
}

func defaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderDeepSeek:
		return "deepseek-chat"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderGemini:
		return "gemini-2.0-flash"
	}
	return ""
}

// NewGenerator picks the implementation for the configured provider.
func NewGenerator(ctx context.Context, opts Options) (TextGenerator, error) {
	if opts.Provider == "" || opts.Provider == ProviderNone || opts.APIKey == "" {
		return nil, ErrDisabled
	}
	if opts.Model == "" {
		opts.Model = defaultModel(opts.Provider)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2048
	}

	var (
		gen TextGenerator
		err error
	)
	switch opts.Provider {
	case ProviderOpenAI:
		gen, err = NewOpenAIGenerator(ctx, opts)
	case ProviderDeepSeek:
		gen, err = NewDeepSeekGenerator(ctx, opts)
	case ProviderAnthropic:
		gen = NewAnthropicGenerator(opts)
	case ProviderGemini:
		gen, err = NewGeminiGenerator(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s generator: %w", opts.Provider, err)
	}

	if opts.CacheSize > 0 {
		return NewCachedGenerator(gen, opts.CacheSize)
	}
	return gen, nil
}
