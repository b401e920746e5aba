package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mkrashin/document-insight/internal/config"
	"github.com/mkrashin/document-insight/internal/core/ports"
)

// Router wires the inbound ports onto the versioned HTTP surface. The
// caller identity arrives in the X-User-Id header; authentication itself
// is terminated upstream.
type Router struct {
	cfg      config.Config
	ingestor ports.DocumentIngestor
	analyzer ports.AnalysisService
	chat     ports.ChatService
	docs     ports.DocumentReader
	results  ports.AnalysisReader

	analysisObserver AnalysisObserver
}

// AnalysisObserver records analysis request outcomes. Nil disables it.
type AnalysisObserver interface {
	FinishAnalysis(duration time.Duration, err error)
}

func NewRouter(
	cfg config.Config,
	ingestor ports.DocumentIngestor,
	analyzer ports.AnalysisService,
	chat ports.ChatService,
	docs ports.DocumentReader,
	results ports.AnalysisReader,
) *Router {
	return &Router{
		cfg:      cfg,
		ingestor: ingestor,
		analyzer: analyzer,
		chat:     chat,
		docs:     docs,
		results:  results,
	}
}

func (rt *Router) WithAnalysisObserver(observer AnalysisObserver) *Router {
	rt.analysisObserver = observer
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/projects/{projectID}/documents", rt.uploadDocument)
	mux.HandleFunc("POST /v1/documents/{documentID}/analyze", rt.analyzeDocument)
	mux.HandleFunc("GET /v1/documents/{documentID}", rt.getDocument)
	mux.HandleFunc("POST /v1/projects/{projectID}/chat", rt.askChat)
	mux.HandleFunc("GET /v1/projects/{projectID}/chat/history", rt.chatHistory)

	var handler http.Handler = mux
	if rt.cfg.APIMaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, 50*time.Millisecond)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func callerID(r *http.Request) string {
	return r.Header.Get("X-User-Id")
}
