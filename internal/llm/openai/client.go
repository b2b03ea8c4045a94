package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"jetski/internal/llm"
)

var _ llm.Client = (*Client)(nil)

type Client struct {
	client openai.Client
	model  string
}

func NewClient(apiKey, model, baseURL string) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Complete sends one chat completion. Structured requests use strict
// JSON schema output.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Model: openai.ChatModel(c.model),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.WantsJSON() {
		schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
			Name:   req.SchemaName,
			Schema: req.Schema,
			Strict: openai.Bool(true),
		}
		if req.SchemaDescription != "" {
			schemaParam.Description = openai.String(req.SchemaDescription)
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
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
