package api

import (
	"errors"
	"net/http"

	"github.com/wgomg/precis/internal/ingest"
	"github.com/wgomg/precis/internal/llm"
	"github.com/wgomg/precis/internal/paperless"
	"github.com/wgomg/precis/internal/processor"
	"github.com/wgomg/precis/internal/utils/httputils"
)

// toHTTPError maps pipeline and collaborator errors onto status codes.
// Anything unrecognised is returned unchanged and ends up as a 500.
func toHTTPError(err error) error {
	var httpErr *httputils.HTTPError
	var paperlessErr *paperless.APIError
	var llmErr *llm.APIError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &maxBytesErr):
		return httputils.NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, processor.ErrEmptyInput),
		errors.Is(err, processor.ErrSegmentationFailure),
		errors.Is(err, processor.ErrDegenerateVocabulary):
		return httputils.NewHTTPError(http.StatusUnprocessableEntity, processor.UserMessage(err))
	case errors.Is(err, ingest.ErrNoText):
		return httputils.NewHTTPError(http.StatusUnprocessableEntity, processor.MessageNoText)
	case errors.Is(err, ingest.ErrUnsupportedType):
		return httputils.NewHTTPError(http.StatusBadRequest, "Only PDF and TXT files are supported.")
	case errors.As(err, &paperlessErr):
		if paperlessErr.StatusCode == http.StatusNotFound {
			return httputils.NewHTTPError(http.StatusNotFound, "Document not found")
		}
		return httputils.NewHTTPError(http.StatusBadGateway, "Document store request failed")
	case errors.As(err, &llmErr):
		return httputils.NewHTTPError(http.StatusBadGateway, "Language model request failed")
	}
	return err
}
