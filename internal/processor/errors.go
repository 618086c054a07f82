package processor

import "errors"

var (
	ErrEmptyInput            = errors.New("normalized text is empty")
	ErrSegmentationFailure   = errors.New("no usable sentences found")
	ErrDegenerateVocabulary  = errors.New("no features could be built from the sentences")
	ErrRankingNonConvergence = errors.New("pagerank did not converge")
)

const (
	MessageNoText   = "No extractable text was found in the document."
	MessageTooShort = "The document is too short to summarize."
	MessageNoRank   = "The content could not be ranked."
)

// UserMessage maps a pipeline error to a message fit for end users.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return MessageNoText
	case errors.Is(err, ErrSegmentationFailure):
		return MessageTooShort
	default:
		return MessageNoRank
	}
}
