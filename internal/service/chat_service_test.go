package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pmalov/spravka/internal/ai"
	"github.com/pmalov/spravka/internal/model"
)

type fakeHistory struct {
	turns     []model.ConversationTurn
	appended  []model.ConversationTurn
	appendErr error
	recentErr error
	lastLimit int
}

func (f *fakeHistory) Append(_ context.Context, sessionID, role, content string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, model.ConversationTurn{SessionID: sessionID, Role: role, Content: content})
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, _ string, limit int) ([]model.ConversationTurn, error) {
	f.lastLimit = limit
	return f.turns, f.recentErr
}

type fakeRunner struct {
	answer   string
	err      error
	received []ai.Message
}

func (f *fakeRunner) Run(_ context.Context, history []ai.Message) (string, error) {
	f.received = history
	return f.answer, f.err
}

func TestAskPersistsBothTurns(t *testing.T) {
	history := &fakeHistory{turns: []model.ConversationTurn{
		{Role: model.RoleUser, Content: "первый вопрос"},
		{Role: model.RoleAssistant, Content: "первый ответ"},
	}}
	runner := &fakeRunner{answer: "второй ответ"}
	svc := NewChatService(history, runner, 14)

	answer, err := svc.Ask(context.Background(), "s1", "второй вопрос")
	require.NoError(t, err)
	require.Equal(t, "второй ответ", answer)
	require.Equal(t, 14, history.lastLimit)

	require.Len(t, runner.received, 3)
	require.Equal(t, "первый вопрос", runner.received[0].Content)
	require.Equal(t, "второй вопрос", runner.received[2].Content)

	require.Len(t, history.appended, 2)
	require.Equal(t, model.RoleUser, history.appended[0].Role)
	require.Equal(t, "второй вопрос", history.appended[0].Content)
	require.Equal(t, model.RoleAssistant, history.appended[1].Role)
	require.Equal(t, "второй ответ", history.appended[1].Content)
}

func TestAskEmptyAnswerNotPersisted(t *testing.T) {
	history := &fakeHistory{}
	svc := NewChatService(history, &fakeRunner{answer: ""}, 14)

	answer, err := svc.Ask(context.Background(), "s1", "вопрос")
	require.NoError(t, err)
	require.Empty(t, answer)
	require.Len(t, history.appended, 1)
	require.Equal(t, model.RoleUser, history.appended[0].Role)
}

func TestAskRunnerErrorPropagates(t *testing.T) {
	history := &fakeHistory{}
	svc := NewChatService(history, &fakeRunner{err: errors.New("backend down")}, 14)
	_, err := svc.Ask(context.Background(), "s1", "вопрос")
	require.Error(t, err)
	require.Len(t, history.appended, 1)
}

func TestAskHistoryLoadErrorPropagates(t *testing.T) {
	history := &fakeHistory{recentErr: errors.New("db down")}
	svc := NewChatService(history, &fakeRunner{answer: "ответ"}, 14)
	_, err := svc.Ask(context.Background(), "s1", "вопрос")
	require.Error(t, err)
	require.Empty(t, history.appended)
}
