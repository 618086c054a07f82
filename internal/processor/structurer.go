package processor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reCitation         = regexp.MustCompile(`\s*\[\d+(?:\s*[,–-]\s*\d+)*\]`)
	reParenthetical    = regexp.MustCompile(`\s*\([^()]*\)`)
	reSpaceBeforePunct = regexp.MustCompile(`\s+([,.;:!?])`)
	reConnective       = regexp.MustCompile(
		`^(?i:however|therefore|thus|hence|moreover|furthermore|additionally|in addition|in conclusion|in summary|to conclude|overall|consequently|as a result|finally|lastly|meanwhile|nevertheless|nonetheless|similarly|likewise|also|in particular|for example|for instance|on the other hand|in contrast)\s*,\s+`,
	)
)

type StructureOptions struct {
	Taxonomy *Taxonomy
	// AbstractSentences caps how many sentences make up the abstract.
	AbstractSentences int
	// Cleanup strips citations, parentheticals and leading connectives.
	// Passthrough documents are structured without it.
	Cleanup bool
}

func DefaultStructureOptions() StructureOptions {
	return StructureOptions{
		Taxonomy:          DefaultTaxonomy(),
		AbstractSentences: 3,
		Cleanup:           true,
	}
}

// Structure shapes selected sentences, already in document order, into a
// summary. Stats are left for the caller.
func Structure(sentences []string, mode Mode, opts StructureOptions) Summary {
	if opts.Taxonomy == nil {
		opts.Taxonomy = DefaultTaxonomy()
	}
	if opts.AbstractSentences <= 0 {
		opts.AbstractSentences = 3
	}

	summary := Summary{Sentences: sentences}

	switch mode {
	case ModeSimple:
		summary.Abstract, summary.Body = structureParagraph(sentences, opts)
	default:
		summary.Abstract, summary.Body = structureSections(sentences, opts)
	}

	return summary
}

func structureSections(sentences []string, opts StructureOptions) (string, Sections) {
	var groups [categoryCount][]string
	var seen [categoryCount]map[string]struct{}

	for _, s := range sentences {
		bullet := s
		if opts.Cleanup {
			bullet = stripAsides(s)
		}
		// categorized on what the reader sees
		c := opts.Taxonomy.Categorize(bullet)

		if seen[c] == nil {
			seen[c] = make(map[string]struct{})
		}
		if _, dup := seen[c][bullet]; dup {
			continue
		}
		seen[c][bullet] = struct{}{}
		groups[c] = append(groups[c], bullet)
	}

	sections := Sections{}
	var lead []string
	for c := range categoryCount {
		if len(groups[c]) == 0 {
			continue
		}
		sections = append(sections, Section{Title: c.Title(), Bullets: groups[c]})
		if c != CategoryOther && len(lead) < opts.AbstractSentences {
			lead = append(lead, groups[c][0])
		}
	}

	if len(lead) == 0 {
		lead = firstN(sentences, opts.AbstractSentences)
	}

	return strings.Join(lead, " "), sections
}

func structureParagraph(sentences []string, opts StructureOptions) (string, Paragraph) {
	abstract := strings.Join(firstN(sentences, opts.AbstractSentences), " ")
	if !opts.Cleanup {
		return abstract, Paragraph(strings.Join(sentences, " "))
	}

	parts := make([]string, 0, len(sentences))
	for i, s := range sentences {
		text := stripParentheticals(s)
		if i > 0 {
			text = reConnective.ReplaceAllString(text, "")
		}
		text = capitalize(strings.TrimSpace(text))
		if text == "" {
			text = s
		}
		parts = append(parts, text)
	}

	return abstract, Paragraph(strings.Join(parts, " "))
}

// stripAsides removes citation brackets and parentheticals, keeping s when
// nothing readable would remain.
func stripAsides(s string) string {
	out := stripParentheticals(reCitation.ReplaceAllString(s, ""))
	if !strings.ContainsFunc(out, unicode.IsLetter) {
		return s
	}
	return out
}

func stripParentheticals(s string) string {
	out := reParenthetical.ReplaceAllString(s, "")
	out = reSpaceBeforePunct.ReplaceAllString(out, "$1")
	out = strings.Join(strings.Fields(out), " ")
	if !strings.ContainsFunc(out, unicode.IsLetter) {
		return s
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func firstN(items []string, n int) []string {
	return items[:min(n, len(items))]
}
