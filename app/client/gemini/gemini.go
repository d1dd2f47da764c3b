package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"warelay/app/config"

	"github.com/samber/do"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/schema"
)

const maxGenerateDuration = 30 * time.Second

type Client struct {
	cfg *config.Config
	llm *googleai.GoogleAI
}

func NewClient(di *do.Injector) (*Client, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	if cfg.Generator.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.Generator.Gemini.APIKey),
		googleai.WithDefaultModel(cfg.Generator.Gemini.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		cfg: cfg,
		llm: llm,
	}, nil
}

// Generate feeds the previous turn pair as chat history and asks the model
// to answer the new message.
func (c *Client) Generate(ctx context.Context, lastUser, lastAssistant, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, maxGenerateDuration)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, lastUser),
		llms.TextParts(schema.ChatMessageTypeAI, lastAssistant),
		llms.TextParts(schema.ChatMessageTypeHuman, message),
	}

	resp, err := c.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no generation choices found")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
