package api

import (
	"context"

	"github.com/wgomg/precis/internal/paperless"
	"github.com/wgomg/precis/internal/processor"
)

type Summarizer interface {
	Summarize(ctx context.Context, raw string, opts processor.Options) (*processor.Summary, error)
}

// DocumentSource fetches stored documents by id.
type DocumentSource interface {
	GetDocument(ctx context.Context, documentID int) (*paperless.Document, error)
}

type Assistant interface {
	Ask(ctx context.Context, document, question string) (string, error)
	Translate(ctx context.Context, text, language string) (string, error)
}

type SummarizeRequest struct {
	Text                string   `json:"text"`
	Length              string   `json:"length"`
	Tone                string   `json:"tone"`
	Ratio               *float64 `json:"ratio,omitempty"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
	TranslateTo         string   `json:"translate_to,omitempty"`
}

type AskRequest struct {
	Text       string `json:"text"`
	DocumentID int    `json:"document_id,omitempty"`
	Question   string `json:"question"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Paperless bool   `json:"paperless"`
	Llm       bool   `json:"llm"`
}
