package llm

import (
	"context"
	"errors"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/FinSage/internal/external"
)

// ChatModelGenerator adapts an eino chat model to TextGenerator.
type ChatModelGenerator struct {
	name  string
	model model.BaseChatModel
}

func NewChatModelGenerator(name string, m model.BaseChatModel) *ChatModelGenerator {
	return &ChatModelGenerator{name: name, model: m}
}

func NewOpenAIGenerator(ctx context.Context, opts Options) (*ChatModelGenerator, error) {
	maxTokens := opts.MaxTokens
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:   opts.BaseURL,
		APIKey:    opts.APIKey,
		Model:     opts.Model,
		MaxTokens: &maxTokens,
	})
	if err != nil {
		return nil, err
	}
	return NewChatModelGenerator(string(ProviderOpenAI), cm), nil
}

func NewDeepSeekGenerator(ctx context.Context, opts Options) (*ChatModelGenerator, error) {
	cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
		APIKey:    opts.APIKey,
		Model:     opts.Model,
		BaseURL:   opts.BaseURL,
		MaxTokens: opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return NewChatModelGenerator(string(ProviderDeepSeek), cm), nil
}

func (g *ChatModelGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	msgs := make([]*schema.Message, 0, 2)
	if system != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}
	msgs = append(msgs, schema.UserMessage(user))

	out, err := g.model.Generate(ctx, msgs)
	if err != nil {
		return "", external.Classify(g.name, err)
	}
	if out == nil || out.Content == "" {
		return "", external.NewServiceError(g.name, external.CodeBadResponse, "empty completion", errors.New("no content"))
	}
	return out.Content, nil
}
