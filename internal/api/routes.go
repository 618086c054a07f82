package api

import "net/http"

func RegisterRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /health", handler.HandleHealth)
	mux.HandleFunc("POST /summarize", handler.HandleSummarize)
	mux.HandleFunc("POST /documents/{id}/summarize", handler.HandleDocumentSummarize)
	mux.HandleFunc("POST /ask", handler.HandleAsk)
}

// NewRouter registers the routes behind the request id, logging and rate
// limiting middleware.
func NewRouter(handler *Handler) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, handler)

	server := handler.cfg.Server
	var h http.Handler = mux
	h = RateLimit(server.RateLimitPerSec, server.RateLimitBurst)(h)
	h = Logging(handler.logger)(h)
	h = RequestID(h)
	return h
}
