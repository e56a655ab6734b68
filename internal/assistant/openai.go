// Package assistant talks to the chat-completion provider behind the coach assistant.
package assistant

import (
	"context"
	"errors"
	"log"

	"alcyxob/gym-portal/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral completion request.
type Request struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Completer produces the next assistant turn for a conversation.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

var ErrEmptyCompletion = errors.New("assistant: provider returned no choices")

// OpenAIClient implements Completer with the OpenAI chat completions API
// (or any compatible endpoint set through ai.base_url).
type OpenAIClient struct {
	api   *openai.Client
	model string
}

func NewOpenAIClient(cfg config.AIConfig) *OpenAIClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	log.Printf("INFO: Coach assistant using model %s", model)
	return &OpenAIClient{api: openai.NewClientWithConfig(clientCfg), model: model}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		log.Printf("ERROR: Chat completion failed: %v", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
