package narrative

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAICompleter struct {
	client      openai.Client
	maxTokens   int64
	temperature float64
}

func NewOpenAICompleter(apiKey, baseURL string) *OpenAICompleter {
	var client openai.Client
	if baseURL != "" {
		client = openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		)
	} else {
		client = openai.NewClient(
			option.WithAPIKey(apiKey),
		)
	}
	return &OpenAICompleter{client: client, maxTokens: 900, temperature: 0.3}
}

func (c *OpenAICompleter) Complete(ctx context.Context, model, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
