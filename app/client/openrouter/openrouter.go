package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"warelay/app/config"

	"github.com/samber/do"
	"github.com/sashabaranov/go-openai"
)

const maxGenerateDuration = 30 * time.Second

// Client talks to any OpenAI-compatible completion API (OpenRouter,
// DeepSeek, a local proxy).
type Client struct {
	client *openai.Client
	model  string
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)
	modelCfg := cfg.Generator.OpenAI

	if modelCfg.BaseURL == "" || modelCfg.Token == "" || modelCfg.Model == "" {
		return nil, fmt.Errorf("openai generator requires base_url, token and model")
	}

	clientConfig := openai.DefaultConfig(modelCfg.Token)
	clientConfig.BaseURL = modelCfg.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  modelCfg.Model,
	}, nil
}

func (c *Client) Generate(ctx context.Context, lastUser, lastAssistant, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, maxGenerateDuration)
	defer cancel()

	aiResponse, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: lastUser,
				},
				{
					Role:    openai.ChatMessageRoleAssistant,
					Content: lastAssistant,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: message,
				},
			},
			MaxCompletionTokens: 500,
			Temperature:         1,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return "", fmt.Errorf("no chat completion found")
	}

	return strings.TrimSpace(aiResponse.Choices[0].Message.Content), nil
}
