package processor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sentencesOfLength(n, chars int) []Sentence {
	out := make([]Sentence, n)
	for i := range out {
		out[i] = Sentence{Index: i, Text: strings.Repeat("a", chars)}
	}
	return out
}

func TestTargetCount(t *testing.T) {
	tests := []struct {
		name      string
		sentences []Sentence
		length    Length
		ratio     float64
		want      int
	}{
		{name: "short clamps to max", sentences: sentencesOfLength(50, 60), length: LengthShort, want: 15},
		{name: "short budget", sentences: sentencesOfLength(50, 300), length: LengthShort, want: 5},
		{name: "short clamps to min", sentences: sentencesOfLength(50, 1000), length: LengthShort, want: 3},
		{name: "medium", sentences: sentencesOfLength(100, 250), length: LengthMedium, want: 20},
		{name: "long clamps to max", sentences: sentencesOfLength(100, 50), length: LengthLong, want: 60},
		{name: "never above n", sentences: sentencesOfLength(4, 100), length: LengthMedium, want: 4},
		{name: "ratio overrides", sentences: sentencesOfLength(10, 100), length: LengthShort, ratio: 0.25, want: 3},
		{name: "full ratio", sentences: sentencesOfLength(10, 100), length: LengthShort, ratio: 1, want: 10},
		{name: "tiny ratio keeps one", sentences: sentencesOfLength(10, 100), length: LengthShort, ratio: 0.01, want: 1},
		{name: "out of range ratio ignored", sentences: sentencesOfLength(50, 60), length: LengthShort, ratio: 1.5, want: 15},
		{name: "unknown length is medium", sentences: sentencesOfLength(100, 250), length: Length("huge"), want: 20},
		{name: "empty", sentences: nil, length: LengthShort, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TargetCount(tt.sentences, tt.length, tt.ratio))
		})
	}
}

func TestShouldPassthrough(t *testing.T) {
	assert.True(t, ShouldPassthrough(1))
	assert.True(t, ShouldPassthrough(3))
	assert.False(t, ShouldPassthrough(4))
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, 0.75, PolicyFor(LengthShort).Lambda)
	assert.Equal(t, 0.7, PolicyFor(LengthMedium).Lambda)
	assert.Equal(t, 0.6, PolicyFor(LengthLong).Lambda)
}
