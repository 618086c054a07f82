package processor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maskRune stands in for abbreviation periods while splitting.
const maskRune = '\uE000'

var (
	reAbbreviation = regexp.MustCompile(
		`\b(?:Dr|Mr|Mrs|Ms|Prof|Sr|Jr|St|Fig|Figs|No|Nos|Vol|Vols|vs|etc|approx|Inc|Ltd|Co|Dept|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.|(?i:\be\.g\.|\bi\.e\.)|\b(?:\p{Lu}\.){2,}`,
	)
	reLeadingBullet  = regexp.MustCompile(`^[-•*–—·▪●◦]+\s*`)
	reLeadingOutline = regexp.MustCompile(`^(?:\(?\d+(?:\.\d+)*[.)]|\([A-Za-z]{1,4}\)|[A-Za-z][.)]|[ivxlc]{1,5}[.)])\s+`)
	reContents       = regexp.MustCompile(`(?i)\bcontents\b`)

	reMarkdownHeading = regexp.MustCompile(`^#{1,6}\s+\S`)
	reNumberedHeading = regexp.MustCompile(`^(?:\d+(?:\.\d+)*\.|\d+(?:\.\d+)+|[IVX]+\.)\s+\p{Lu}`)
)

var actionVerbs = map[string]struct{}{
	"is": {}, "are": {}, "was": {}, "were": {}, "will": {}, "shall": {}, "must": {},
	"should": {}, "can": {}, "has": {}, "have": {}, "aims": {}, "aim": {}, "provide": {},
	"provides": {}, "ensure": {}, "ensures": {}, "improve": {}, "improves": {},
	"increase": {}, "increases": {}, "reduce": {}, "reduces": {}, "develop": {},
	"support": {}, "supports": {}, "strengthen": {}, "include": {}, "includes": {},
}

type SegmentOptions struct {
	MinChars int
	MinWords int
}

func DefaultSegmentOptions() SegmentOptions {
	return SegmentOptions{MinChars: 20, MinWords: 3}
}

// Segment splits text into sentences with the default options.
func Segment(text string) []string {
	return DefaultSegmentOptions().Segment(text)
}

// Segment normalizes text and returns its usable sentences in document order.
func (o SegmentOptions) Segment(text string) []string {
	masked := maskAbbreviations(Normalize(text))

	var sentences []string
	for _, candidate := range splitCandidates(masked) {
		s := cleanCandidate(unmask(candidate))
		if o.keep(s) {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

// SegmentDocument splits raw text at heading lines and segments each block,
// tagging sentences with the block they came from.
func (o SegmentOptions) SegmentDocument(raw string) []Sentence {
	var sentences []Sentence

	for sectionIndex, block := range splitSections(raw) {
		for _, text := range o.Segment(block) {
			sentences = append(sentences, Sentence{
				Index:        len(sentences),
				Text:         text,
				SectionIndex: sectionIndex,
			})
		}
	}

	return sentences
}

func maskAbbreviations(text string) string {
	return reAbbreviation.ReplaceAllStringFunc(text, func(m string) string {
		return strings.ReplaceAll(m, ".", string(maskRune))
	})
}

func unmask(text string) string {
	return strings.ReplaceAll(text, string(maskRune), ".")
}

func splitCandidates(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}

		end := i + 1
		for end < len(runes) && (isTerminal(runes[end]) || isCloser(runes[end])) {
			end++
		}

		next := end
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}

		if next > end && next < len(runes) && isSentenceStart(runes[next]) {
			out = append(out, string(runes[start:end]))
			start = next
		}
		i = end - 1
	}

	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}

	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', '”', '’', ')', ']', '»':
		return true
	}
	return false
}

func isSentenceStart(r rune) bool {
	switch r {
	case '"', '\'', '“', '‘', '«', '(':
		return true
	case '-', '•', '*', '–', '—', '·', '▪', '●', '◦':
		// bullet markers flattened onto one line by normalization
		return true
	}
	return unicode.IsUpper(r) || unicode.IsDigit(r)
}

func cleanCandidate(s string) string {
	s = strings.TrimSpace(s)
	s = reLeadingBullet.ReplaceAllString(s, "")
	s = reLeadingOutline.ReplaceAllString(s, "")
	s = reLeadingBullet.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func (o SegmentOptions) keep(s string) bool {
	if !endsWithTerminal(s) {
		return false
	}
	if utf8.RuneCountInString(s) < o.MinChars {
		return false
	}
	if len(strings.Fields(s)) < o.MinWords {
		return false
	}
	if !strings.ContainsFunc(s, unicode.IsLetter) {
		return false
	}
	return !looksLikeTableOfContents(s)
}

func endsWithTerminal(s string) bool {
	trimmed := strings.TrimRightFunc(s, isCloser)
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	return isTerminal(r)
}

func looksLikeTableOfContents(s string) bool {
	if reContents.MatchString(s) {
		return true
	}

	total := utf8.RuneCountInString(s)
	if total <= 80 {
		return false
	}

	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if float64(digits)/float64(total) < 0.15 {
		return false
	}

	for _, w := range strings.Fields(strings.ToLower(s)) {
		if _, ok := actionVerbs[strings.Trim(w, ".,;:!?()\"'")]; ok {
			return false
		}
	}
	return true
}

// splitSections returns text blocks separated by heading lines. Text before
// the first heading is block 0.
func splitSections(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	var blocks []string
	var current []string
	flush := func() {
		if len(current) > 0 || len(blocks) == 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
		}
		current = nil
	}

	for i, line := range lines {
		if isHeading(lines, i) {
			flush()
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}

	return blocks
}

func isHeading(lines []string, i int) bool {
	line := strings.TrimSpace(lines[i])
	if line == "" || utf8.RuneCountInString(line) > 80 {
		return false
	}
	if reMarkdownHeading.MatchString(line) {
		return true
	}
	if !headingShaped(line) {
		return false
	}

	// a wrapped sentence line is not a heading, whatever it looks like
	if !closesPrevious(lines, i) || continuesNext(lines, i) {
		return false
	}

	if reNumberedHeading.MatchString(line) || isAllCaps(line) {
		return true
	}
	return isTitleLike(strings.Fields(line)) && isIsolated(lines, i)
}

func headingShaped(line string) bool {
	last, _ := utf8.DecodeLastRuneInString(line)
	if strings.ContainsRune(".!?:;,", last) {
		return false
	}

	words := strings.Fields(line)
	if len(words) > 10 {
		return false
	}
	return reNumberedHeading.MatchString(line) || isAllCaps(line) || isTitleLike(words)
}

// closesPrevious reports whether the line before i leaves no sentence open.
func closesPrevious(lines []string, i int) bool {
	if i == 0 {
		return true
	}
	prev := strings.TrimSpace(lines[i-1])
	if prev == "" || endsWithTerminal(prev) || reMarkdownHeading.MatchString(prev) {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(prev)
	if last == ':' {
		return true
	}
	return utf8.RuneCountInString(prev) <= 80 && headingShaped(prev)
}

// continuesNext reports whether the next non-blank line starts in lowercase.
func continuesNext(lines []string, i int) bool {
	for _, next := range lines[i+1:] {
		next = strings.TrimSpace(next)
		if next == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(next)
		return unicode.IsLower(r)
	}
	return false
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 3
}

func isTitleLike(words []string) bool {
	capitalized := 0
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if unicode.IsUpper(r) {
			capitalized++
		}
	}
	first, _ := utf8.DecodeRuneInString(words[0])
	return unicode.IsUpper(first) && float64(capitalized)/float64(len(words)) >= 0.6
}

func isIsolated(lines []string, i int) bool {
	blankBefore := i == 0 || strings.TrimSpace(lines[i-1]) == ""
	blankAfter := i == len(lines)-1 || strings.TrimSpace(lines[i+1]) == ""
	return blankBefore || blankAfter
}
