package processor

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Sentence struct {
	Index        int
	Text         string
	SectionIndex int
}

// ScoreMap holds one importance score per sentence index.
type ScoreMap []float64

func (s ScoreMap) At(i int) float64 {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

func ParseLength(s string) (Length, error) {
	switch l := Length(strings.ToLower(strings.TrimSpace(s))); l {
	case LengthShort, LengthMedium, LengthLong:
		return l, nil
	case "":
		return LengthMedium, nil
	default:
		return "", fmt.Errorf("unknown length %q (want short, medium or long)", s)
	}
}

// Mode selects the output shape. "structured" produces titled bullet
// sections, "simple" a single paragraph.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeSimple     Mode = "simple"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeStructured, ModeSimple:
		return m, nil
	case "bullets":
		return ModeStructured, nil
	case "paragraph":
		return ModeSimple, nil
	case "":
		return ModeStructured, nil
	default:
		return "", fmt.Errorf("unknown tone %q (want structured or simple)", s)
	}
}

type Section struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// Body is either Sections or Paragraph.
type Body interface {
	isBody()
}

type Sections []Section

type Paragraph string

func (Sections) isBody()  {}
func (Paragraph) isBody() {}

type Stats struct {
	OriginalSentenceCount int     `json:"original_sentence_count"`
	SummarySentenceCount  int     `json:"summary_sentence_count"`
	CompressionRatio      float64 `json:"compression_ratio"`
	OriginalCharacters    int     `json:"original_characters"`
	SummaryCharacters     int     `json:"summary_characters"`
}

type Summary struct {
	Abstract  string
	Sentences []string
	// SelectedIndices are the positions of Sentences among the segmented
	// source sentences, ascending.
	SelectedIndices []int
	Body            Body
	Stats           Stats
	// Translation is filled in by callers that translate Text().
	Translation string
}

func (s *Summary) MarshalJSON() ([]byte, error) {
	out := struct {
		Abstract        string    `json:"abstract"`
		Sentences       []string  `json:"sentences"`
		SelectedIndices []int     `json:"selected_indices"`
		Sections        []Section `json:"sections,omitempty"`
		Paragraph       *string   `json:"paragraph,omitempty"`
		Stats           Stats     `json:"stats"`
		Translation     string    `json:"translation,omitempty"`
	}{
		Abstract:        s.Abstract,
		Sentences:       s.Sentences,
		SelectedIndices: s.SelectedIndices,
		Stats:           s.Stats,
		Translation:     s.Translation,
	}
	if out.SelectedIndices == nil {
		out.SelectedIndices = []int{}
	}

	switch b := s.Body.(type) {
	case Sections:
		out.Sections = b
		if out.Sections == nil {
			out.Sections = []Section{}
		}
	case Paragraph:
		p := string(b)
		out.Paragraph = &p
	}

	return json.Marshal(out)
}

// Text renders the summary as plain text for terminals and translation.
func (s *Summary) Text() string {
	var b strings.Builder
	if s.Abstract != "" {
		b.WriteString(s.Abstract)
		b.WriteString("\n\n")
	}

	switch body := s.Body.(type) {
	case Sections:
		for i, sec := range body {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(sec.Title)
			b.WriteString("\n")
			for _, bullet := range sec.Bullets {
				b.WriteString("- ")
				b.WriteString(bullet)
				b.WriteString("\n")
			}
		}
	case Paragraph:
		b.WriteString(string(body))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
