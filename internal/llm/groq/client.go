package groq

import (
	"context"
	"fmt"

	"github.com/conneroisu/groq-go"

	"jetski/internal/llm"
)

var _ llm.Client = (*Client)(nil)

type Client struct {
	client *groq.Client
	model  groq.ChatModel
}

func NewClient(apiKey, model, baseURL string) (*Client, error) {
	var (
		client *groq.Client
		err    error
	)
	if baseURL != "" {
		client, err = groq.NewClient(apiKey, groq.WithBaseURL(baseURL))
	} else {
		client, err = groq.NewClient(apiKey)
	}
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &Client{
		client: client,
		model:  groq.ChatModel(model),
	}, nil
}

// Complete sends one chat completion. Groq has no strict schema mode, so
// structured requests use json_object and rely on the prompt for shape.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	request := groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: req.System},
			{Role: groq.RoleUser, Content: req.User},
		},
		Temperature: float32(req.Temperature),
	}
	if req.WantsJSON() {
		request.ResponseFormat = &groq.ChatResponseFormat{Type: "json_object"}
	}

	resp, err := c.client.ChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response")
	}

	return content, nil
}
