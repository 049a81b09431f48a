package ingest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractMarkdownTextStripsFormatting(t *testing.T) {
	src := "# Заголовок\n\nПервый **жирный** абзац со [ссылкой](https://example.com).\n\n- пункт один\n- пункт два\n"
	out := extractMarkdownText([]byte(src))
	require.Contains(t, out, "Заголовок")
	require.Contains(t, out, "жирный")
	require.Contains(t, out, "ссылкой")
	require.NotContains(t, out, "**")
	require.NotContains(t, out, "https://example.com")
	require.Contains(t, out, "пункт один")
}

func TestExtractMarkdownTextKeepsCodeBlocks(t *testing.T) {
	src := "Настройка:\n\n```\nport: 8080\nhost: localhost\n```\n"
	out := extractMarkdownText([]byte(src))
	require.Contains(t, out, "port: 8080")
	require.Contains(t, out, "host: localhost")
}

func TestExtractMarkdownTextJoinsBlocksWithBlankLine(t *testing.T) {
	src := "Первый абзац.\n\nВторой абзац."
	out := extractMarkdownText([]byte(src))
	require.Contains(t, out, "Первый абзац.\n\nВторой абзац.")
}

func TestExtractMarkdownTextEmpty(t *testing.T) {
	require.Equal(t, "", extractMarkdownText(nil))
}
