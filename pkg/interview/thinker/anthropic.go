package thinker

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	apperrors "github.com/parley-dev/parley/pkg/interview/errors"
)

const defaultMaxTokens = 4096

type anthropicThinker struct {
	client anthropic.Client
	config ModelConfig
}

// NewAnthropic creates an Anthropic-backed Thinker
func NewAnthropic(apiKey string, cfg ModelConfig) Thinker {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &anthropicThinker{
		client: anthropic.NewClient(opts...),
		config: cfg,
	}
}

func (t *anthropicThinker) Name() string {
	return "anthropic"
}

func (t *anthropicThinker) Generate(ctx context.Context, messages []Message) (*Completion, error) {
	anthropicMessages, system := t.convertMessages(messages)

	maxTokens := t.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(t.config.Model),
		Messages:  anthropicMessages,
		MaxTokens: int64(maxTokens),
	}

	if t.config.Temperature > 0 {
		params.Temperature = anthropic.Float(t.config.Temperature)
	}

	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system},
		}
	}

	message, err := t.client.Messages.New(ctx, params)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeThinkerCall, "Anthropic API call failed", err)
	}

	return t.convertResponse(message), nil
}

func (t *anthropicThinker) ExtractStructured(ctx context.Context, schema string, messages []Message, out any) error {
	completion, err := t.Generate(ctx, structuredMessages(schema, messages))
	if err != nil {
		return err
	}
	return decodeStructured(completion.Text, out)
}

func (t *anthropicThinker) convertMessages(messages []Message) ([]anthropic.MessageParam, string) {
	var result []anthropic.MessageParam
	var systemMessage string

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			// Anthropic takes the system prompt outside the message list
			if systemMessage != "" {
				systemMessage += "\n\n"
			}
			systemMessage += msg.Content
		case "user":
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case "assistant":
			result = append(result, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	return result, systemMessage
}

func (t *anthropicThinker) convertResponse(message *anthropic.Message) *Completion {
	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &Completion{
		Text:       text,
		Model:      string(message.Model),
		StopReason: string(message.StopReason),
		Usage: Usage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
			TotalTokens:  int(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}
}
