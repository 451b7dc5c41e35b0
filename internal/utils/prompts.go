package utils

import (
	"context"
	"embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed prompts
var promptFiles embed.FS

// LoadPrompt loads a prompt from the embedded markdown files
func LoadPrompt(path string) (string, error) {
	content, err := promptFiles.ReadFile(fmt.Sprintf("prompts/%s.md", path))
	if err != nil {
		return "", fmt.Errorf("failed to load prompt %s: %w", path, err)
	}
	return string(content), nil
}

// RenderStagePrompt formats prompts/<stage>/system.md and user.md with vars.
// Templates use FString syntax, so literal braces are doubled.
func RenderStagePrompt(ctx context.Context, stage string, vars map[string]any) (system, user string, err error) {
	systemTpl, err := LoadPrompt(stage + "/system")
	if err != nil {
		return "", "", err
	}
	userTpl, err := LoadPrompt(stage + "/user")
	if err != nil {
		return "", "", err
	}

	tpl := prompt.FromMessages(schema.FString,
		schema.SystemMessage(systemTpl),
		schema.UserMessage(userTpl),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", "", fmt.Errorf("format %s prompt: %w", stage, err)
	}
	if len(msgs) != 2 {
		return "", "", fmt.Errorf("format %s prompt: expected 2 messages, got %d", stage, len(msgs))
	}
	return msgs[0].Content, msgs[1].Content, nil
}
