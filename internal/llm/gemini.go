package llm

import (
	"context"

	"google.golang.org/genai"

	"github.com/dyike/FinSage/internal/external"
)

type GeminiGenerator struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

func NewGeminiGenerator(ctx context.Context, opts Options) (*GeminiGenerator, error) {
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{client: client, model: opts.Model, maxTokens: int32(opts.MaxTokens)}, nil
}

func (g *GeminiGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: g.maxTokens}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), cfg)
	if err != nil {
		return "", external.Classify(string(ProviderGemini), err)
	}

	text := resp.Text()
	if text == "" {
		return "", external.NewServiceError(string(ProviderGemini), external.CodeBadResponse, "empty completion", nil)
	}
	return text, nil
}
