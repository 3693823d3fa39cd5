// Package ai proxies lesson generation and image vocabulary extraction to
// the Claude API. The proxy only shuttles prompts and responses; it never
// touches the vocabulary or history state.
package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const requestTimeout = 60 * time.Second

// Client wraps the Anthropic SDK for the two proxy endpoints
type Client struct {
	client *anthropic.Client
}

// New creates a Claude client
func New(apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{client: &client}, nil
}

// GenerateLesson asks the model for a short vocabulary lesson on a topic.
// The response is expected (not guaranteed) to be a JSON document; the
// caller decides what to do with malformed output.
func (c *Client) GenerateLesson(ctx context.Context, topic, level string) (string, error) {
	if level == "" {
		level = "A1"
	}
	prompt := fmt.Sprintf(`You are a German language teacher. Create a short vocabulary lesson for a %s-level student on the topic "%s".

Return ONLY a JSON object of this exact shape:
{"topic": "...", "level": "...", "words": [{"word_type": "...", "article": "...", "word_de": "...", "plural": "...", "word_ru": "...", "example": "..."}], "explanation": "..."}

Include 8-12 words with Russian translations and one German example sentence each. No text outside the JSON.`, level, topic)

	return c.complete(ctx, []anthropic.ContentBlockParamUnion{
		anthropic.NewTextBlock(prompt),
	})
}

// ExtractWordsFromImage asks the model to read vocabulary out of a photo,
// e.g. of a textbook page or handwritten list
func (c *Client) ExtractWordsFromImage(ctx context.Context, image []byte, mediaType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image is empty")
	}

	prompt := `Extract all German vocabulary entries visible in this image.

Return ONLY a JSON array of this exact shape:
[{"word_type": "...", "article": "...", "word_de": "...", "plural": "...", "word_ru": "...", "example": ""}]

Use an empty string for anything not visible in the image. Translate to Russian when no translation is shown. No text outside the JSON.`

	encoded := base64.StdEncoding.EncodeToString(image)
	return c.complete(ctx, []anthropic.ContentBlockParamUnion{
		anthropic.NewImageBlockBase64(mediaType, encoded),
		anthropic.NewTextBlock(prompt),
	})
}

func (c *Client) complete(ctx context.Context, blocks []anthropic.ContentBlockParamUnion) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.ModelClaudeSonnet4_5_20250929,
		MaxTokens: 2000,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call Claude API: %v", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	return stripCodeFences(b.String()), nil
}

// stripCodeFences removes an optional markdown code block wrapper from the
// model output
func stripCodeFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
