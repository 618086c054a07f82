package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTFIDF_Vectorize(t *testing.T) {
	sentences := []string{
		"Funding increased sharply this year.",
		"Hospitals funded new clinics in rural areas.",
		"Vaccination campaigns reached remote villages.",
	}

	v, err := NewTFIDF(DefaultTFIDFOptions()).Vectorize(context.Background(), sentences)
	require.NoError(t, err)
	require.Equal(t, 3, v.Len())

	for i := range v.Len() {
		assert.InDelta(t, 1.0, v.Cosine(i, i), 1e-9, "row %d is not unit length", i)
	}

	// "funding" and "funded" share a stem
	assert.Greater(t, v.Cosine(0, 1), 0.0)
	assert.Equal(t, 0.0, v.Cosine(0, 2))
}

func TestTFIDF_WithoutStemming(t *testing.T) {
	sentences := []string{
		"Funding increased sharply this year.",
		"Hospitals funded new clinics in rural areas.",
	}

	v, err := NewTFIDF(TFIDFOptions{MaxNgram: 1, MaxDF: 1, Stem: false}).Vectorize(context.Background(), sentences)
	require.NoError(t, err)

	assert.Equal(t, 0.0, v.Cosine(0, 1))
}

func TestTFIDF_StopwordsOnly(t *testing.T) {
	_, err := NewTFIDF(DefaultTFIDFOptions()).Vectorize(context.Background(), []string{
		"It is what it is and was.",
		"They were there with us.",
	})

	require.ErrorIs(t, err, ErrDegenerateVocabulary)
}

func TestTFIDF_IdenticalSentencesKeepVocabulary(t *testing.T) {
	sentence := "Budget allocation rises again."

	v, err := NewTFIDF(DefaultTFIDFOptions()).Vectorize(context.Background(), []string{sentence, sentence, sentence})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, v.Cosine(0, 1), 1e-9)
	assert.InDelta(t, 1.0, v.Cosine(1, 2), 1e-9)
}

func TestTFIDF_Terms(t *testing.T) {
	tfidf := NewTFIDF(TFIDFOptions{MaxNgram: 2, MaxDF: 1, Stem: false})

	assert.Equal(t,
		[]string{"budget", "grows", "fast", "budget grows", "grows fast"},
		tfidf.terms("The budget grows fast."),
	)
}

func TestNewTFIDF_ClampsOptions(t *testing.T) {
	tfidf := NewTFIDF(TFIDFOptions{MaxNgram: 9, MaxDF: 2})
	assert.Equal(t, 3, tfidf.opts.MaxNgram)
	assert.Equal(t, 1.0, tfidf.opts.MaxDF)

	tfidf = NewTFIDF(TFIDFOptions{})
	assert.Equal(t, 1, tfidf.opts.MaxNgram)
}

func TestDenseVectors(t *testing.T) {
	v := NewDenseVectors([][]float64{{3, 4}, {4, 3}, {0, 0}, {1}})

	assert.InDelta(t, 0.96, v.Cosine(0, 1), 1e-9)
	assert.Equal(t, 0.0, v.Cosine(0, 2))
	assert.Equal(t, 0.0, v.Cosine(0, 3), "mismatched dimensions")
	assert.InDelta(t, 1.0, v.Cosine(0, 0), 1e-9)
}
