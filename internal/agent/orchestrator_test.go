package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pmalov/spravka/internal/ai"
)

type scriptedChatter struct {
	script   []*ai.ChatResult
	err      error
	received [][]ai.Message
}

func (s *scriptedChatter) Chat(_ context.Context, messages []ai.Message, _ []ai.ToolSpec) (*ai.ChatResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := make([]ai.Message, len(messages))
	copy(cp, messages)
	s.received = append(s.received, cp)
	result := s.script[0]
	s.script = s.script[1:]
	return result, nil
}

func newTestOrchestrator(chatter ai.IChatter, searcher Searcher, maxRounds int) *Orchestrator {
	return NewOrchestrator(chatter, NewRetrieverTool(searcher), maxRounds, time.Minute)
}

func TestRunDirectAnswer(t *testing.T) {
	chatter := &scriptedChatter{script: []*ai.ChatResult{
		{Content: "Уточните, пожалуйста, о какой льготе идет речь?"},
	}}
	o := newTestOrchestrator(chatter, &fakeSearcher{}, 6)
	answer, err := o.Run(context.Background(), []ai.Message{{Role: "user", Content: "льгота?"}})
	require.NoError(t, err)
	require.Equal(t, "Уточните, пожалуйста, о какой льготе идет речь?", answer)

	first := chatter.received[0]
	require.Equal(t, "system", first[0].Role)
	require.Equal(t, "user", first[1].Role)
}

func TestRunToolRoundTrip(t *testing.T) {
	chatter := &scriptedChatter{script: []*ai.ChatResult{
		{ToolCalls: []ai.ToolCall{{ID: "call_1", Name: RetrieverToolName, Arguments: `{"query": "льгота X"}`}}},
		{Content: "Согласно статье 5, льгота X положена ветеранам."},
	}}
	searcher := &fakeSearcher{results: []string{"Статья 5: льгота X"}}
	o := newTestOrchestrator(chatter, searcher, 6)

	answer, err := o.Run(context.Background(), []ai.Message{{Role: "user", Content: "Кому положена льгота X?"}})
	require.NoError(t, err)
	require.Equal(t, "Согласно статье 5, льгота X положена ветеранам.", answer)
	require.Equal(t, "льгота X", searcher.lastQuery)

	second := chatter.received[1]
	last := second[len(second)-1]
	require.Equal(t, "tool", last.Role)
	require.Equal(t, "call_1", last.ToolCallID)
	require.Equal(t, "Статья 5: льгота X", last.Content)
	require.Equal(t, "assistant", second[len(second)-2].Role)
}

func TestRunRoundCap(t *testing.T) {
	call := &ai.ChatResult{ToolCalls: []ai.ToolCall{{ID: "c", Name: RetrieverToolName, Arguments: `{"query": "опять"}`}}}
	chatter := &scriptedChatter{script: []*ai.ChatResult{call, call, call}}
	o := newTestOrchestrator(chatter, &fakeSearcher{results: []string{"что-то"}}, 3)

	answer, err := o.Run(context.Background(), []ai.Message{{Role: "user", Content: "вопрос"}})
	require.NoError(t, err)
	require.Equal(t, NotFoundAnswer, answer)
	require.Len(t, chatter.received, 3)
}

func TestRunUnknownToolDoesNotBreakLoop(t *testing.T) {
	chatter := &scriptedChatter{script: []*ai.ChatResult{
		{ToolCalls: []ai.ToolCall{{ID: "c1", Name: "weather", Arguments: `{}`}}},
		{Content: "готово"},
	}}
	o := newTestOrchestrator(chatter, &fakeSearcher{}, 6)
	answer, err := o.Run(context.Background(), []ai.Message{{Role: "user", Content: "вопрос"}})
	require.NoError(t, err)
	require.Equal(t, "готово", answer)

	second := chatter.received[1]
	require.Contains(t, second[len(second)-1].Content, "неизвестный инструмент")
}

func TestRunProviderError(t *testing.T) {
	o := newTestOrchestrator(&scriptedChatter{err: errors.New("backend down")}, &fakeSearcher{}, 6)
	_, err := o.Run(context.Background(), []ai.Message{{Role: "user", Content: "вопрос"}})
	require.Error(t, err)
}

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<think>размышления</think>ответ", "ответ"},
		{"<think>a</think>середина<think>b</think> конец", "середина конец"},
		{"без маркеров", "без маркеров"},
		{"  обрезать пробелы  ", "обрезать пробелы"},
		{"<think>только размышления</think>", ""},
		{"<think>незакрытый маркер", "<think>незакрытый маркер"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, StripReasoning(tc.in))
	}
}
