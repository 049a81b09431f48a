package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	lastQuery string
	results   []string
	err       error
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]string, error) {
	f.lastQuery = query
	return f.results, f.err
}

func TestRetrieverToolArgumentShapes(t *testing.T) {
	tests := []struct {
		name      string
		arguments string
		want      string
	}{
		{"json object", `{"query": "льготы ветеранам"}`, "льготы ветеранам"},
		{"json array", `["льготы ветеранам", "мусор"]`, "льготы ветеранам"},
		{"bare json string", `"льготы ветеранам"`, "льготы ветеранам"},
		{"raw text", `льготы ветеранам`, "льготы ветеранам"},
		{"quoted inside object", `{"query": "\"льготы ветеранам\""}`, "льготы ветеранам"},
		{"padded raw text", "  льготы ветеранам \n", "льготы ветеранам"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			searcher := &fakeSearcher{results: []string{"контекст"}}
			tool := NewRetrieverTool(searcher)
			out := tool.Call(context.Background(), tc.arguments)
			require.Equal(t, "контекст", out)
			require.Equal(t, tc.want, searcher.lastQuery)
		})
	}
}

func TestRetrieverToolEmptyQuery(t *testing.T) {
	tool := NewRetrieverTool(&fakeSearcher{})
	for _, arguments := range []string{``, `""`, `{}`, `{"query": ""}`, `[]`, `   `} {
		out := tool.Call(context.Background(), arguments)
		require.Equal(t, msgEmptyQuery, out, "arguments: %q", arguments)
	}
}

func TestRetrieverToolJoinsChunks(t *testing.T) {
	searcher := &fakeSearcher{results: []string{"Статья 5: льгота X", "Статья 6: льгота Y"}}
	tool := NewRetrieverTool(searcher)
	out := tool.Call(context.Background(), `{"query": "льгота"}`)
	require.Equal(t, "Статья 5: льгота X\n---\nСтатья 6: льгота Y", out)
}

func TestRetrieverToolNoResults(t *testing.T) {
	tool := NewRetrieverTool(&fakeSearcher{})
	out := tool.Call(context.Background(), `{"query": "несуществующая тема"}`)
	require.Equal(t, msgNothingFound, out)
}

func TestRetrieverToolSearchFailureIsContained(t *testing.T) {
	tool := NewRetrieverTool(&fakeSearcher{err: errors.New("connection refused")})
	out := tool.Call(context.Background(), `{"query": "льгота"}`)
	require.Equal(t, msgSearchUnavailable, out)
}
