package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/pmalov/spravka/internal/ai"
)

const systemInstruction = `Ты — вежливый и точный ассистент-справочник.
Твоя задача — отвечать на вопросы пользователя, основываясь ИСКЛЮЧИТЕЛЬНО на предоставленной информации из документов.

Правила работы:
1. Внимательно проанализируй вопрос пользователя. Если он кажется тебе неполным или двусмысленным, задай уточняющий вопрос, прежде чем использовать инструменты.
2. Для поиска информации всегда вызывай инструмент ` + "`helpdesk_retriever`" + `.
3. Внимательно изучи полученный из инструмента контекст.
4. Сформулируй четкий и ясный ответ на основе этого контекста.
5. Если в контексте нет информации для ответа, честно скажи: "К сожалению, я не нашел информации по вашему вопросу в документах."
НИКОГДА не придумывай информацию.`

// NotFoundAnswer is what the user sees when the agent gives up.
const NotFoundAnswer = "К сожалению, я не нашел информации по вашему вопросу в документах."

var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Orchestrator drives the bounded tool-calling loop: ask the model,
// execute whatever tool calls come back, feed results in, repeat until
// the model answers in plain text or the round cap trips.
type Orchestrator struct {
	chatter      ai.IChatter
	tool         *RetrieverTool
	maxRounds    int
	roundTimeout time.Duration
}

func NewOrchestrator(chatter ai.IChatter, tool *RetrieverTool, maxRounds int, roundTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		chatter:      chatter,
		tool:         tool,
		maxRounds:    maxRounds,
		roundTimeout: roundTimeout,
	}
}

// Run produces the assistant's answer for one user request. history holds
// the prior turns of the session, already in chronological order, and the
// final element is the new user turn. The returned answer has reasoning
// segments stripped; it may be empty when the model produced nothing.
func (o *Orchestrator) Run(ctx context.Context, history []ai.Message) (string, error) {
	logger := logutil.GetLogger(ctx)
	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{Role: "system", Content: systemInstruction})
	messages = append(messages, history...)
	tools := []ai.ToolSpec{o.tool.Spec()}

	for round := 0; round < o.maxRounds; round++ {
		result, err := o.chatRound(ctx, messages, tools)
		if err != nil {
			return "", fmt.Errorf("chat round %d: %w", round+1, err)
		}
		if len(result.ToolCalls) == 0 {
			return StripReasoning(result.Content), nil
		}
		messages = append(messages, ai.Message{
			Role:      "assistant",
			Content:   result.Content,
			ToolCalls: result.ToolCalls,
		})
		for _, call := range result.ToolCalls {
			logger.Info("tool call",
				zap.Int("round", round+1),
				zap.String("tool", call.Name),
				zap.String("arguments", call.Arguments))
			output := o.dispatch(ctx, call)
			messages = append(messages, ai.Message{
				Role:       "tool",
				Content:    output,
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})
		}
	}
	logger.Warn("tool round cap reached without a final answer", zap.Int("max_rounds", o.maxRounds))
	return NotFoundAnswer, nil
}

func (o *Orchestrator) chatRound(ctx context.Context, messages []ai.Message, tools []ai.ToolSpec) (*ai.ChatResult, error) {
	if o.roundTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.roundTimeout)
		defer cancel()
	}
	return o.chatter.Chat(ctx, messages, tools)
}

func (o *Orchestrator) dispatch(ctx context.Context, call ai.ToolCall) string {
	if call.Name != RetrieverToolName {
		return fmt.Sprintf("Ошибка: неизвестный инструмент %q.", call.Name)
	}
	return o.tool.Call(ctx, call.Arguments)
}

// StripReasoning removes every <think>...</think> span and trims the
// remainder. Unpaired markers are left as-is.
func StripReasoning(content string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(content, ""))
}
