package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/wgomg/precis/internal/config"
	"github.com/wgomg/precis/internal/ingest"
	"github.com/wgomg/precis/internal/processor"
	"github.com/wgomg/precis/internal/utils"
	"github.com/wgomg/precis/internal/utils/httputils"
)

type Handler struct {
	logger     *utils.Logger
	summarizer Summarizer
	documents  DocumentSource
	assistant  Assistant
	cfg        *config.Config
}

// NewHandler wires the HTTP front end. documents and assistant may be nil
// when Paperless or the LLM are not configured.
func NewHandler(
	logger *utils.Logger,
	summarizer Summarizer,
	documents DocumentSource,
	assistant Assistant,
	cfg *config.Config,
) *Handler {
	return &Handler{
		logger:     logger,
		summarizer: summarizer,
		documents:  documents,
		assistant:  assistant,
		cfg:        cfg,
	}
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputils.JSONResponse(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Paperless: h.documents != nil,
		Llm:       h.assistant != nil,
	})
}

// HandleSummarize accepts either a JSON body or a multipart form with a
// "file" upload or a "text" field.
func (h *Handler) HandleSummarize(w http.ResponseWriter, r *http.Request) {
	reqID := utils.RequestID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var req SummarizeRequest
	var err error
	if mediaType == "multipart/form-data" {
		req, err = h.parseMultipart(r)
	} else {
		if _, err = httputils.LogRequestBody(r, h.logger, reqID); err == nil {
			err = httputils.DecodeJSON(r, &req)
		}
	}
	if err != nil {
		h.logger.Error(reqID, "Failed to read summarize request: %v", err)
		httputils.HandleError(w, toHTTPError(err))
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		httputils.HandleError(w, httputils.NewHTTPError(
			http.StatusBadRequest,
			"No file or text provided. Please upload a PDF/TXT or paste text.",
		))
		return
	}

	h.summarize(w, r, req)
}

func (h *Handler) HandleDocumentSummarize(w http.ResponseWriter, r *http.Request) {
	reqID := utils.RequestID(r.Context())

	if h.documents == nil {
		httputils.HandleError(w, httputils.NewHTTPError(http.StatusServiceUnavailable, "Paperless is not configured"))
		return
	}

	documentID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || documentID <= 0 {
		httputils.HandleError(w, httputils.NewHTTPError(http.StatusBadRequest, "Invalid document id"))
		return
	}

	var req SummarizeRequest
	if r.ContentLength > 0 {
		if err := httputils.DecodeJSON(r, &req); err != nil {
			h.logger.Error(reqID, "JSON decode error: %v", err)
			httputils.HandleError(w, err)
			return
		}
	}

	document, err := h.documents.GetDocument(r.Context(), documentID)
	if err != nil {
		h.logger.Error(reqID, "Failed to fetch document %d: %v", documentID, err)
		httputils.HandleError(w, toHTTPError(err))
		return
	}

	h.logger.Info(reqID, "Summarizing Paperless document %d (%q)", document.ID, utils.Truncate(document.Title, 80))
	req.Text = document.Content
	h.summarize(w, r, req)
}

func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	reqID := utils.RequestID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())

	if h.assistant == nil {
		httputils.HandleError(w, httputils.NewHTTPError(http.StatusServiceUnavailable, "LLM is not configured"))
		return
	}

	var req AskRequest
	if err := httputils.DecodeJSON(r, &req); err != nil {
		h.logger.Error(reqID, "JSON decode error: %v", err)
		httputils.HandleError(w, err)
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		httputils.HandleError(w, httputils.NewHTTPError(http.StatusBadRequest, "A question is required"))
		return
	}

	if req.DocumentID > 0 {
		if h.documents == nil {
			httputils.HandleError(w, httputils.NewHTTPError(http.StatusServiceUnavailable, "Paperless is not configured"))
			return
		}
		document, err := h.documents.GetDocument(r.Context(), req.DocumentID)
		if err != nil {
			h.logger.Error(reqID, "Failed to fetch document %d: %v", req.DocumentID, err)
			httputils.HandleError(w, toHTTPError(err))
			return
		}
		req.Text = document.Content
	}

	if strings.TrimSpace(req.Text) == "" {
		httputils.HandleError(w, httputils.NewHTTPError(http.StatusUnprocessableEntity, processor.MessageNoText))
		return
	}

	answer, err := h.assistant.Ask(r.Context(), req.Text, req.Question)
	if err != nil {
		h.logger.Error(reqID, "LLM request failed: %v", err)
		httputils.HandleError(w, toHTTPError(err))
		return
	}

	if err := httputils.JSONResponse(w, http.StatusOK, AskResponse{Answer: answer}); err != nil {
		h.logger.Error(reqID, "Error sending response: %v", err)
	}
}

func (h *Handler) summarize(w http.ResponseWriter, r *http.Request, req SummarizeRequest) {
	ctx := r.Context()
	reqID := utils.RequestID(ctx)

	opts, err := summarizeOptions(req)
	if err != nil {
		httputils.HandleError(w, err)
		return
	}

	if req.TranslateTo != "" && h.assistant == nil {
		httputils.HandleError(w, httputils.NewHTTPError(http.StatusServiceUnavailable, "Translation requires the LLM to be configured"))
		return
	}

	summary, err := h.summarizer.Summarize(ctx, req.Text, opts)
	if err != nil {
		h.logger.Warn(reqID, "Summarization failed: %v", err)
		httputils.HandleError(w, toHTTPError(err))
		return
	}

	h.logger.Info(reqID, "Summarized %d sentences into %d (ratio=%.4f)",
		summary.Stats.OriginalSentenceCount,
		summary.Stats.SummarySentenceCount,
		summary.Stats.CompressionRatio)

	if req.TranslateTo != "" {
		translation, err := h.assistant.Translate(ctx, summary.Text(), req.TranslateTo)
		if err != nil {
			h.logger.Warn(reqID, "Translation to %s failed, returning summary only: %v", req.TranslateTo, err)
		} else {
			summary.Translation = translation
		}
	}

	if err := httputils.JSONResponse(w, http.StatusOK, summary); err != nil {
		h.logger.Error(reqID, "Error sending response: %v", err)
	}
}

func (h *Handler) parseMultipart(r *http.Request) (SummarizeRequest, error) {
	if err := r.ParseMultipartForm(h.maxUploadBytes()); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return SummarizeRequest{}, httputils.NewHTTPError(http.StatusRequestEntityTooLarge, "Upload too large")
		}
		return SummarizeRequest{}, httputils.NewHTTPError(http.StatusBadRequest, "Invalid multipart form: "+err.Error())
	}

	req := SummarizeRequest{
		Text:        r.FormValue("text"),
		Length:      r.FormValue("length"),
		Tone:        r.FormValue("tone"),
		TranslateTo: r.FormValue("translate_to"),
	}

	if v := r.FormValue("ratio"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, httputils.NewHTTPError(http.StatusBadRequest, "ratio must be a number")
		}
		req.Ratio = &ratio
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return req, fmt.Errorf("reading upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return req, fmt.Errorf("reading upload: %w", err)
	}

	text, err := ingest.Extract(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		return req, err
	}
	req.Text = text

	return req, nil
}

func summarizeOptions(req SummarizeRequest) (processor.Options, error) {
	var opts processor.Options

	if req.Length != "" {
		length, err := processor.ParseLength(req.Length)
		if err != nil {
			return opts, httputils.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		opts.Length = length
	}

	if req.Tone != "" {
		mode, err := processor.ParseMode(req.Tone)
		if err != nil {
			return opts, httputils.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		opts.Mode = mode
	}

	if req.Ratio != nil {
		if *req.Ratio <= 0 || *req.Ratio > 1 {
			return opts, httputils.NewHTTPError(http.StatusBadRequest, "ratio must be within (0, 1]")
		}
		opts.Ratio = *req.Ratio
	}

	if req.SimilarityThreshold != nil {
		if *req.SimilarityThreshold < 0 {
			return opts, httputils.NewHTTPError(http.StatusBadRequest, "similarity_threshold must not be negative")
		}
		opts.SimilarityThreshold = req.SimilarityThreshold
	}

	return opts, nil
}

func (h *Handler) maxUploadBytes() int64 {
	return int64(max(h.cfg.Server.MaxUploadMB, 1)) << 20
}
