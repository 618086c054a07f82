package utils

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens("   "))
	assert.Equal(t, 13, EstimateTokens(strings.Repeat("word ", 10)))
}

func TestTruncateTokens(t *testing.T) {
	text := strings.Repeat("word ", 100)

	assert.Equal(t, text, TruncateTokens(text, 0))
	assert.Equal(t, text, TruncateTokens(text, 1000))

	cut := TruncateTokens(text, 14)
	assert.Equal(t, 10, CountWords(cut))
	assert.LessOrEqual(t, EstimateTokens(cut), 14)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "blank", in: "  ", max: 5, want: "Unknown"},
		{name: "short", in: "Plan", max: 5, want: "Plan"},
		{name: "long", in: "Financiación", max: 5, want: "Finan..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.max))
		})
	}
}

func TestCleanCodeBlock(t *testing.T) {
	assert.Equal(t, "Hola.", CleanCodeBlock("```text\nHola.\n```"))
	assert.Equal(t, `{"a":1}`, CleanCodeBlock("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "plain", CleanCodeBlock("  plain  "))
}

func TestRequestID(t *testing.T) {
	assert.Nil(t, RequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "abc")
	id := RequestID(ctx)
	if assert.NotNil(t, id) {
		assert.Equal(t, "abc", *id)
	}
}
