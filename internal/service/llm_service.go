package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agri-advisor/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var ErrNoCompletion = errors.New("no response from LLM")

// Completer is the external language-completion service. Implementations may
// fail or hang; callers bound the wait with ctx.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error)
}

// NewCompleter builds the completer selected by LLM_PROVIDER. "none" returns
// nil, which makes every answer come from the rule-based fallback.
func NewCompleter(cfg *config.Config, logger *zap.Logger) (Completer, func() error, error) {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "gigachat":
		c, err := NewGigaChatCompleter(&cfg.GigaChat, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case "openai":
		return NewOpenAICompleter(&cfg.OpenAI, logger), func() error { return nil }, nil
	case "none", "":
		logger.Warn("No LLM provider configured, answers will use the rule-based fallback")
		return nil, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

// GigaChatCompleter calls GigaChat through gigago. GigaChat runs at a fixed
// temperature of 0.3 and its own token limit; the per-call values are ignored.
type GigaChatCompleter struct {
	client    *gigago.Client
	modelName string
	logger    *zap.Logger
}

func NewGigaChatCompleter(cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatCompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GIGACHAT_API_KEY is required for the gigachat provider")
	}

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(context.Background(), cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "GigaChat"
	}
	logger.Info("Using GigaChat model", zap.String("model", modelName))

	return &GigaChatCompleter{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

func (c *GigaChatCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, _ int, _ float32) (string, error) {
	// A model per call keeps SystemInstruction out of shared state.
	model := c.client.GenerativeModel(c.modelName)
	model.SystemInstruction = systemPrompt
	model.Temperature = 0.3

	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: userPrompt},
	}

	resp, err := model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoCompletion
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *GigaChatCompleter) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

// OpenAICompleter calls any OpenAI-compatible chat completion endpoint.
type OpenAICompleter struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func NewOpenAICompleter(cfg *config.OpenAIConfig, logger *zap.Logger) *OpenAICompleter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger.Info("Using OpenAI-compatible model", zap.String("model", cfg.ChatModel))

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.ChatModel,
		logger: logger,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoCompletion
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
