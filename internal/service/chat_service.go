package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/pmalov/spravka/internal/ai"
	"github.com/pmalov/spravka/internal/model"
)

// HistoryStore is the slice of the history repository the chat flow uses.
type HistoryStore interface {
	Append(ctx context.Context, sessionID, role, content string) error
	Recent(ctx context.Context, sessionID string, limit int) ([]model.ConversationTurn, error)
}

// AnswerRunner produces an assistant answer from the accumulated turns.
type AnswerRunner interface {
	Run(ctx context.Context, history []ai.Message) (string, error)
}

type ChatService struct {
	history     HistoryStore
	runner      AnswerRunner
	historyKeep int
}

func NewChatService(history HistoryStore, runner AnswerRunner, historyKeep int) *ChatService {
	return &ChatService{
		history:     history,
		runner:      runner,
		historyKeep: historyKeep,
	}
}

// Ask answers one user question within a session. The user turn is
// persisted before the agent runs; the assistant turn is persisted only
// when the answer is non-empty, so failed or silent runs never pollute
// the history.
func (s *ChatService) Ask(ctx context.Context, sessionID, query string) (string, error) {
	turns, err := s.history.Recent(ctx, sessionID, s.historyKeep)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	messages := make([]ai.Message, 0, len(turns)+1)
	for _, turn := range turns {
		messages = append(messages, ai.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, ai.Message{Role: model.RoleUser, Content: query})

	if err := s.history.Append(ctx, sessionID, model.RoleUser, query); err != nil {
		return "", fmt.Errorf("persist user turn: %w", err)
	}

	answer, err := s.runner.Run(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("run agent: %w", err)
	}
	if answer == "" {
		logutil.GetLogger(ctx).Warn("agent produced empty answer, not persisting", zap.String("session_id", sessionID))
		return "", nil
	}
	if err := s.history.Append(ctx, sessionID, model.RoleAssistant, answer); err != nil {
		return "", fmt.Errorf("persist assistant turn: %w", err)
	}
	return answer, nil
}
