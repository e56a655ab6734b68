package service

import (
	"context"
	"fmt"
	"strings"

	"alcyxob/gym-portal/internal/assistant"
	"alcyxob/gym-portal/internal/policy"
)

const (
	assistantTemperature = 0.7
	assistantMaxTokens   = 500
	// DefaultHistoryLimit is how many trailing chat turns are forwarded to the model.
	DefaultHistoryLimit = 10
)

// DefaultSystemPrompt frames the coach assistant.
const DefaultSystemPrompt = "You are a friendly, knowledgeable gym coach assistant. " +
	"Give practical, safe advice on training, nutrition and recovery. " +
	"Keep answers short. Recommend consulting a professional for medical issues."

type AssistantService interface {
	Chat(ctx context.Context, actor policy.Principal, history []assistant.Message) (*assistant.Message, error)
}

type assistantService struct {
	completer    assistant.Completer // nil when no AI key is configured
	systemPrompt string
	historyLimit int
}

func NewAssistantService(completer assistant.Completer, systemPrompt string, historyLimit int) AssistantService {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &assistantService{
		completer:    completer,
		systemPrompt: systemPrompt,
		historyLimit: historyLimit,
	}
}

func (s *assistantService) Chat(ctx context.Context, actor policy.Principal, history []assistant.Message) (*assistant.Message, error) {
	if err := policy.Authorize(actor, policy.UseAssistant); err != nil {
		return nil, err
	}
	if s.completer == nil {
		return nil, fmt.Errorf("%w: coach assistant", ErrFeatureDisabled)
	}

	// 1. Keep user/assistant turns only; the system prompt is ours
	turns := make([]assistant.Message, 0, len(history))
	for _, m := range history {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch m.Role {
		case assistant.RoleUser, assistant.RoleAssistant:
			turns = append(turns, assistant.Message{Role: m.Role, Content: content})
		default:
			return nil, fmt.Errorf("%w: message role must be user or assistant", ErrValidation)
		}
	}
	if len(turns) == 0 {
		return nil, fmt.Errorf("%w: at least one message is required", ErrValidation)
	}
	if len(turns) > s.historyLimit {
		turns = turns[len(turns)-s.historyLimit:]
	}

	// 2. Complete
	msgs := append([]assistant.Message{{Role: assistant.RoleSystem, Content: s.systemPrompt}}, turns...)
	reply, err := s.completer.Complete(ctx, assistant.Request{
		Messages:    msgs,
		Temperature: assistantTemperature,
		MaxTokens:   assistantMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return &assistant.Message{Role: assistant.RoleAssistant, Content: reply}, nil
}
