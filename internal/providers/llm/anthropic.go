package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

const defaultAnthropicModel = "claude-3-sonnet-20240229"

type Anthropic struct {
	llm       *anthropic.LLM
	model     string
	maxTokens int
}

func NewAnthropic(apiKey, model string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key is not configured")
	}
	if model == "" {
		model = defaultAnthropicModel
	}

	client, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &Anthropic{llm: client, model: model, maxTokens: 2000}, nil
}

func (a *Anthropic) Analyze(ctx context.Context, system, prompt string) (string, error) {
	msgs := make([]llms.MessageContent, 0, 2)
	if system != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := a.llm.GenerateContent(ctx, msgs,
		llms.WithMaxTokens(a.maxTokens),
		llms.WithTemperature(0.1),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", errors.New("empty completion from anthropic")
	}
	return resp.Choices[0].Content, nil
}

func (a *Anthropic) Ping(ctx context.Context) error {
	resp, err := a.llm.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "Reply with the single word: ok")},
		llms.WithMaxTokens(16),
	)
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return errors.New("empty ping response from anthropic")
	}
	return nil
}

func (a *Anthropic) Close() error { return nil }
