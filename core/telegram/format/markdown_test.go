package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeMarkdownV1(t *testing.T) {
	got, err := EscapeMarkdown("ivan_petrov *vip* [site] `x`", MarkdownV1)
	require.NoError(t, err)
	assert.Equal(t, "ivan\\_petrov \\*vip\\* \\[site] \\`x\\`", got)
	assert.Equal(t, got, Markdown("ivan_petrov *vip* [site] `x`"))
	assert.Equal(t, "plain text", Markdown("plain text"))
}

func TestEscapeMarkdownV2(t *testing.T) {
	got, err := EscapeMarkdown("example.com (yes)!", MarkdownV2)
	require.NoError(t, err)
	assert.Equal(t, "example\\.com \\(yes\\)\\!", got)
}

func TestEscapeMarkdownUnknownVersion(t *testing.T) {
	_, err := EscapeMarkdown("x", 3)
	assert.Error(t, err)
}

func TestEscapeMarkdownV2KeepsDigits(t *testing.T) {
	got, err := EscapeMarkdown("100k - 1 month", MarkdownV2)
	require.NoError(t, err)
	assert.Equal(t, "100k \\- 1 month", got)
}
