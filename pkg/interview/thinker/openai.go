package thinker

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	apperrors "github.com/parley-dev/parley/pkg/interview/errors"
)

type openaiThinker struct {
	client openai.Client
	config ModelConfig
}

// NewOpenAI creates an OpenAI-backed Thinker
func NewOpenAI(apiKey string, cfg ModelConfig) Thinker {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &openaiThinker{
		client: openai.NewClient(opts...),
		config: cfg,
	}
}

func (t *openaiThinker) Name() string {
	return "openai"
}

func (t *openaiThinker) Generate(ctx context.Context, messages []Message) (*Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:    t.config.Model,
		Messages: t.convertMessages(messages),
	}

	if t.config.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(t.config.MaxTokens))
	}
	if t.config.Temperature > 0 {
		params.Temperature = openai.Float(t.config.Temperature)
	}

	resp, err := t.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeThinkerCall, "OpenAI API call failed", err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeThinkerCall, "OpenAI returned no choices", nil)
	}

	choice := resp.Choices[0]
	return &Completion{
		Text:       choice.Message.Content,
		Model:      resp.Model,
		StopReason: string(choice.FinishReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (t *openaiThinker) ExtractStructured(ctx context.Context, schema string, messages []Message, out any) error {
	completion, err := t.Generate(ctx, structuredMessages(schema, messages))
	if err != nil {
		return err
	}
	return decodeStructured(completion.Text, out)
}

func (t *openaiThinker) convertMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			result = append(result, openai.SystemMessage(msg.Content))
		case "user":
			result = append(result, openai.UserMessage(msg.Content))
		case "assistant":
			result = append(result, openai.AssistantMessage(msg.Content))
		}
	}

	return result
}
