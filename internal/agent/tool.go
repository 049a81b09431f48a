package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/pmalov/spravka/internal/ai"
)

const (
	RetrieverToolName = "helpdesk_retriever"

	chunkSeparator = "\n---\n"

	msgEmptyQuery        = "Ошибка: не удалось извлечь поисковый запрос из параметров LLM."
	msgSearchUnavailable = "Ошибка: поиск по базе знаний временно недоступен."
	msgNothingFound      = "По запросу ничего не найдено в базе знаний."
)

// Searcher is the slice of the vector index the retriever needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// RetrieverTool wraps vector search as the agent's single tool. Models
// produce arguments in whatever shape they feel like, so every failure
// mode here turns into a fixed message string for the model, never an
// error to the loop.
type RetrieverTool struct {
	searcher Searcher
}

func NewRetrieverTool(searcher Searcher) *RetrieverTool {
	return &RetrieverTool{searcher: searcher}
}

func (t *RetrieverTool) Spec() ai.ToolSpec {
	return ai.ToolSpec{
		Name:        RetrieverToolName,
		Description: "Ищет релевантную информацию в базе знаний по документам для ответа на вопрос пользователя.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Вопрос пользователя",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Call runs one retrieval round. The returned string is always safe to
// feed back to the model as the tool result.
func (t *RetrieverTool) Call(ctx context.Context, arguments string) string {
	logger := logutil.GetLogger(ctx)
	query := parseQuery(ctx, arguments)
	if query == "" {
		return msgEmptyQuery
	}
	chunks, err := t.searcher.Search(ctx, query)
	if err != nil {
		logger.Error("knowledge base search failed", zap.String("query", query), zap.Error(err))
		return msgSearchUnavailable
	}
	if len(chunks) == 0 {
		return msgNothingFound
	}
	return strings.Join(chunks, chunkSeparator)
}

// parseQuery recovers the search string from whatever the model sent:
// an object with a "query" field, an array whose first element is the
// query, a bare JSON string, or plain unparseable text.
func parseQuery(ctx context.Context, arguments string) string {
	var query string
	var parsed interface{}
	if err := json.Unmarshal([]byte(arguments), &parsed); err != nil {
		logutil.GetLogger(ctx).Warn("tool arguments are not valid json, using raw string", zap.String("arguments", arguments))
		query = arguments
	} else {
		switch v := parsed.(type) {
		case map[string]interface{}:
			if s, ok := v["query"].(string); ok {
				query = s
			}
		case []interface{}:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					query = s
				} else {
					query = fmt.Sprint(v[0])
				}
			}
		case string:
			query = v
		default:
			query = arguments
		}
	}
	return trimQuoteLayer(query)
}

func trimQuoteLayer(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}
