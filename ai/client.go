// Package ai generates presentation content through an OpenAI-compatible
// chat completions endpoint (OpenRouter by default).
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "google/gemma-3-27b-it:free"

	storylineMaxTokens    = 2000
	presentationMaxTokens = 3000
	slideMaxTokens        = 500
	temperature           = 0.7
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// ImageModel is used for image generation. Defaults to Model.
	ImageModel string
	Timeout    time.Duration
	Referer    string
	Title      string
	// Structured asks the model for a JSON schema constrained answer instead
	// of relying on the prompt alone.
	Structured bool
}

type Client struct {
	openai     openai.Client
	model      string
	imageModel string
	timeout    time.Duration
	structured bool
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	imageModel := cfg.ImageModel
	if imageModel == "" {
		imageModel = model
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	return &Client{
		openai:     openai.NewClient(opts...),
		model:      model,
		imageModel: imageModel,
		timeout:    timeout,
		structured: cfg.Structured,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

type chatRequest struct {
	prompt     string
	maxTokens  int64
	schemaName string
	schema     any
}

func (c *Client) chat(ctx context.Context, req chatRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(req.prompt)},
		MaxTokens:   openai.Int(req.maxTokens),
		Temperature: openai.Float(temperature),
	}
	if c.structured && req.schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.schemaName,
					Schema: req.schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	start := time.Now()
	resp, err := c.openai.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("AI provider error: status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("AI request: %w", err)
	}

	slog.DebugContext(ctx, "ai chat completed",
		"model", c.model,
		"schema", req.schemaName,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrMalformed)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) GenerateStoryline(ctx context.Context, topic string) (*Storyline, error) {
	content, err := c.chat(ctx, chatRequest{
		prompt:     storylinePrompt(topic),
		maxTokens:  storylineMaxTokens,
		schemaName: "storyline",
		schema:     storylineSchema,
	})
	if err != nil {
		return nil, err
	}

	raw := extractJSON(content)
	var s Storyline
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		slog.WarnContext(ctx, "failed to parse storyline JSON", "content", content)
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	s.Raw = json.RawMessage(raw)
	return &s, nil
}

func (c *Client) GeneratePresentation(ctx context.Context, storyline *Storyline) (*GeneratedDeck, error) {
	content, err := c.chat(ctx, chatRequest{
		prompt:     presentationPrompt(storyline),
		maxTokens:  presentationMaxTokens,
		schemaName: "presentation",
		schema:     deckSchema,
	})
	if err != nil {
		return nil, err
	}

	var deck GeneratedDeck
	if err := decodeJSON(content, &deck); err != nil {
		slog.WarnContext(ctx, "failed to parse presentation JSON", "content", content)
		return nil, err
	}
	return &deck, nil
}

func (c *Client) GenerateSlideContent(ctx context.Context, topic string, t SlideType) (*GeneratedContent, error) {
	content, err := c.chat(ctx, chatRequest{
		prompt:     slidePrompt(topic, t),
		maxTokens:  slideMaxTokens,
		schemaName: "slide_" + string(t),
		schema:     slideSchemas[t],
	})
	if err != nil {
		return nil, err
	}

	if t == SlideTitle {
		gc := decodeTitle(content)
		return &gc, nil
	}
	var gc GeneratedContent
	if err := decodeJSON(content, &gc); err != nil {
		slog.WarnContext(ctx, "failed to parse slide JSON", "slide_type", t, "content", content)
		return nil, err
	}
	return &gc, nil
}

// GenerateImage returns the URL of an image rendered from prompt.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.openai.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          c.imageModel,
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatURL,
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("AI provider error: status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("AI image request: %w", err)
	}

	slog.DebugContext(ctx, "ai image generated",
		"model", c.imageModel,
		"duration_ms", time.Since(start).Milliseconds())

	for _, img := range resp.Data {
		if img.URL != "" {
			return img.URL, nil
		}
	}
	return "", fmt.Errorf("%w: no image URL in response", ErrMalformed)
}

type titleAnswer struct {
	Title string `json:"title"`
}

type bulletsAnswer struct {
	Bullets []string `json:"bullets"`
}

type imageAnswer struct {
	ImagePrompt string `json:"image_prompt"`
}

var (
	storylineSchema = generateSchema[Storyline]()
	deckSchema      = generateSchema[GeneratedDeck]()
	slideSchemas    = map[SlideType]any{
		SlideTitle:   generateSchema[titleAnswer](),
		SlideContent: generateSchema[bulletsAnswer](),
		SlideImage:   generateSchema[imageAnswer](),
		SlideDefault: generateSchema[GeneratedSlide](),
	}
)

func generateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("AI content service is not configured")

// Disabled stands in for Client when no API key is set.
type Disabled struct{}

func (Disabled) GenerateStoryline(context.Context, string) (*Storyline, error) {
	return nil, ErrNotConfigured
}

func (Disabled) GeneratePresentation(context.Context, *Storyline) (*GeneratedDeck, error) {
	return nil, ErrNotConfigured
}

func (Disabled) GenerateSlideContent(context.Context, string, SlideType) (*GeneratedContent, error) {
	return nil, ErrNotConfigured
}

func (Disabled) GenerateImage(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
