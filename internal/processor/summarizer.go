package processor

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/wgomg/precis/internal/config"
	"github.com/wgomg/precis/internal/utils"
)

// Options are the per-request knobs. Zero values fall back to the
// configured defaults.
type Options struct {
	Length Length
	Mode   Mode
	// Ratio in (0, 1] overrides the length policy.
	Ratio               float64
	SimilarityThreshold *float64
}

type Summarizer struct {
	vectorizer Vectorizer
	tfidf      *TFIDF
	taxonomy   *Taxonomy
	cfg        *config.SummaryConfig
	logger     *utils.Logger
}

// NewSummarizer builds a summarizer. A nil vectorizer selects the in-process
// TF-IDF vectorizer.
func NewSummarizer(vectorizer Vectorizer, cfg *config.SummaryConfig, logger *utils.Logger) (*Summarizer, error) {
	tfidf := NewTFIDF(TFIDFOptions{MaxNgram: cfg.MaxNgram, MaxDF: cfg.MaxDF, Stem: cfg.Stem})
	if vectorizer == nil {
		vectorizer = tfidf
	}

	taxonomy := DefaultTaxonomy()
	if cfg.TaxonomyFile != "" {
		t, err := LoadTaxonomy(cfg.TaxonomyFile)
		if err != nil {
			return nil, err
		}
		taxonomy = t
		logger.Info(nil, "Loaded keyword taxonomy from %s", cfg.TaxonomyFile)
	}

	return &Summarizer{
		vectorizer: vectorizer,
		tfidf:      tfidf,
		taxonomy:   taxonomy,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

func (s *Summarizer) Summarize(ctx context.Context, raw string, opts Options) (*Summary, error) {
	reqID := utils.RequestID(ctx)
	opts = s.withDefaults(opts)

	normalized := Normalize(raw)
	if normalized == "" {
		return nil, ErrEmptyInput
	}

	segmenter := SegmentOptions{MinChars: s.cfg.MinSentenceChars, MinWords: s.cfg.MinSentenceWords}
	sentences := segmenter.SegmentDocument(raw)
	if len(sentences) == 0 {
		return nil, ErrSegmentationFailure
	}

	texts := make([]string, len(sentences))
	for i, sentence := range sentences {
		texts[i] = sentence.Text
	}

	if ShouldPassthrough(len(sentences)) {
		s.logger.Debug(reqID, "Document has %d sentences, returning them verbatim", len(sentences))

		summary := Structure(texts, opts.Mode, StructureOptions{Taxonomy: s.taxonomy, Cleanup: false})
		summary.SelectedIndices = leadingIndices(len(texts), len(texts))
		summary.Stats = computeStats(normalized, len(sentences), texts)
		return &summary, nil
	}

	k := TargetCount(sentences, opts.Length, opts.Ratio)
	s.logger.Debug(reqID, "Selecting %d of %d sentences (length=%s, ratio=%.2f)", k, len(sentences), opts.Length, opts.Ratio)

	selected, err := s.selectSentences(ctx, sentences, texts, k, opts)
	if err != nil {
		return nil, err
	}

	chosen := make([]string, len(selected))
	for i, idx := range selected {
		chosen[i] = texts[idx]
	}

	summary := Structure(chosen, opts.Mode, StructureOptions{Taxonomy: s.taxonomy, Cleanup: true})
	summary.SelectedIndices = selected
	summary.Stats = computeStats(normalized, len(sentences), chosen)

	return &summary, nil
}

func (s *Summarizer) selectSentences(
	ctx context.Context,
	sentences []Sentence,
	texts []string,
	k int,
	opts Options,
) ([]int, error) {
	reqID := utils.RequestID(ctx)

	vectors, err := s.vectorizer.Vectorize(ctx, texts)
	if err != nil && !errors.Is(err, ErrDegenerateVocabulary) && s.vectorizer != Vectorizer(s.tfidf) {
		s.logger.Warn(reqID, "Vectorizer failed, falling back to TF-IDF: %v", err)
		vectors, err = s.tfidf.Vectorize(ctx, texts)
	}
	if errors.Is(err, ErrDegenerateVocabulary) {
		s.logger.Warn(reqID, "Returning leading sentences: %v", err)
		return leadingIndices(k, len(texts)), nil
	}
	if err != nil {
		return nil, err
	}

	graph := BuildGraph(vectors, *opts.SimilarityThreshold)
	s.logger.Debug(reqID, "Similarity graph: %d nodes, %d edges", graph.Len(), graph.Edges())

	result := Rank(graph, RankOptions{
		Damping:        s.cfg.Damping,
		MaxIterations:  s.cfg.MaxIterations,
		Tolerance:      s.cfg.Tolerance,
		PositionWeight: s.cfg.PositionWeight,
		EndWeight:      s.cfg.EndWeight,
		SectionWeight:  s.cfg.SectionWeight,
	}, sentences)

	switch r := result.(type) {
	case Converged:
		s.logger.Debug(reqID, "PageRank converged after %d iterations", r.Iterations)
	case Fallback:
		s.logger.Warn(reqID, "Using fallback ranking: %v", r.Reason)
	}

	scores := result.Scores()
	selected := SelectMMR(scores, graph.Matrix, k, PolicyFor(opts.Length).Lambda)
	if s.cfg.ForceGoals {
		selected = ForceGoal(selected, scores, texts)
	}

	return selected, nil
}

func (s *Summarizer) withDefaults(opts Options) Options {
	if opts.Length == "" {
		opts.Length, _ = ParseLength(s.cfg.DefaultLength)
	}
	if opts.Mode == "" {
		opts.Mode, _ = ParseMode(s.cfg.DefaultTone)
	}
	if opts.Ratio < 0 || opts.Ratio > 1 {
		opts.Ratio = 0
	}
	if opts.SimilarityThreshold == nil {
		threshold := s.cfg.SimilarityThreshold
		opts.SimilarityThreshold = &threshold
	}
	return opts
}

func leadingIndices(k, n int) []int {
	out := make([]int, min(k, n))
	for i := range out {
		out[i] = i
	}
	return out
}

func computeStats(normalized string, originalCount int, chosen []string) Stats {
	ratio := 0.0
	if originalCount > 0 {
		ratio = math.Round(float64(len(chosen))/float64(originalCount)*1e4) / 1e4
	}

	return Stats{
		OriginalSentenceCount: originalCount,
		SummarySentenceCount:  len(chosen),
		CompressionRatio:      ratio,
		OriginalCharacters:    utf8.RuneCountInString(normalized),
		SummaryCharacters:     utf8.RuneCountInString(strings.Join(chosen, " ")),
	}
}
