package processor

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/kljensen/snowball"
	"gonum.org/v1/gonum/floats"
)

// Vectors is a set of sentence vectors that can be compared pairwise.
type Vectors interface {
	Len() int
	Cosine(i, j int) float64
}

type Vectorizer interface {
	Vectorize(ctx context.Context, sentences []string) (Vectors, error)
}

// DenseVectors holds L2-normalized dense rows, e.g. sentence embeddings.
type DenseVectors [][]float64

// NewDenseVectors copies and L2-normalizes rows. Zero rows stay zero.
func NewDenseVectors(rows [][]float64) DenseVectors {
	out := make(DenseVectors, len(rows))
	for i, row := range rows {
		v := slices.Clone(row)
		if n := floats.Norm(v, 2); n > 0 {
			floats.Scale(1/n, v)
		}
		out[i] = v
	}
	return out
}

func (d DenseVectors) Len() int { return len(d) }

func (d DenseVectors) Cosine(i, j int) float64 {
	if len(d[i]) != len(d[j]) || len(d[i]) == 0 {
		return 0
	}
	return floats.Dot(d[i], d[j])
}

type sparseRow struct {
	indices []int
	values  []float64
}

type sparseVectors []sparseRow

func (s sparseVectors) Len() int { return len(s) }

func (s sparseVectors) Cosine(i, j int) float64 {
	a, b := s[i], s[j]
	dot := 0.0
	for x, y := 0, 0; x < len(a.indices) && y < len(b.indices); {
		switch {
		case a.indices[x] == b.indices[y]:
			dot += a.values[x] * b.values[y]
			x++
			y++
		case a.indices[x] < b.indices[y]:
			x++
		default:
			y++
		}
	}
	return dot
}

type TFIDFOptions struct {
	MaxNgram int
	MaxDF    float64
	Stem     bool
}

func DefaultTFIDFOptions() TFIDFOptions {
	return TFIDFOptions{MaxNgram: 2, MaxDF: 0.85, Stem: true}
}

// TFIDF vectorizes sentences in-process, treating each sentence as a
// document.
type TFIDF struct {
	opts TFIDFOptions
}

func NewTFIDF(opts TFIDFOptions) *TFIDF {
	if opts.MaxNgram < 1 {
		opts.MaxNgram = 1
	}
	if opts.MaxNgram > 3 {
		opts.MaxNgram = 3
	}
	if opts.MaxDF <= 0 || opts.MaxDF > 1 {
		opts.MaxDF = 1
	}
	return &TFIDF{opts: opts}
}

var reWordToken = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’]\p{L}+)*`)

func (t *TFIDF) Vectorize(_ context.Context, sentences []string) (Vectors, error) {
	docs := make([][]string, len(sentences))
	df := make(map[string]int)
	for i, s := range sentences {
		docs[i] = t.terms(s)
		seen := make(map[string]struct{}, len(docs[i]))
		for _, term := range docs[i] {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := keptTerms(df, len(sentences), t.opts.MaxDF)
	if len(terms) == 0 && t.opts.MaxDF < 1 {
		terms = keptTerms(df, len(sentences), 1)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("tf-idf over %d sentences: %w", len(sentences), ErrDegenerateVocabulary)
	}

	n := float64(len(sentences))
	columns := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		columns[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make(sparseVectors, len(sentences))
	for i, doc := range docs {
		tf := make(map[int]int)
		for _, term := range doc {
			if col, ok := columns[term]; ok {
				tf[col]++
			}
		}

		row := sparseRow{indices: make([]int, 0, len(tf))}
		for col := range tf {
			row.indices = append(row.indices, col)
		}
		slices.Sort(row.indices)

		row.values = make([]float64, len(row.indices))
		for k, col := range row.indices {
			row.values[k] = (1 + math.Log(float64(tf[col]))) * idf[col]
		}
		if norm := floats.Norm(row.values, 2); norm > 0 {
			floats.Scale(1/norm, row.values)
		}
		rows[i] = row
	}

	return rows, nil
}

func (t *TFIDF) terms(sentence string) []string {
	var words []string
	for _, tok := range reWordToken.FindAllString(strings.ToLower(sentence), -1) {
		tok = strings.ReplaceAll(tok, "’", "'")
		if len([]rune(tok)) < 2 || isStopword(tok) {
			continue
		}
		if t.opts.Stem {
			if stemmed, err := snowball.Stem(tok, "english", true); err == nil && stemmed != "" {
				tok = stemmed
			}
		}
		words = append(words, tok)
	}

	terms := slices.Clone(words)
	for size := 2; size <= t.opts.MaxNgram; size++ {
		for i := 0; i+size <= len(words); i++ {
			terms = append(terms, strings.Join(words[i:i+size], " "))
		}
	}
	return terms
}

// keptTerms returns the sorted terms whose document frequency ratio is at
// most maxDF. Column order follows this sort.
func keptTerms(df map[string]int, docs int, maxDF float64) []string {
	var kept []string
	for term, count := range df {
		if float64(count)/float64(docs) <= maxDF {
			kept = append(kept, term)
		}
	}
	slices.Sort(kept)
	return kept
}
