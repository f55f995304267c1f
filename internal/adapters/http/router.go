package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coastalins/broker-engine/internal/config"
	"github.com/coastalins/broker-engine/internal/core/domain"
	"github.com/coastalins/broker-engine/internal/core/ports"
	"github.com/coastalins/broker-engine/internal/observability/metrics"
)

const serviceName = "api"

// Lifecycle bundles the inbound submission contracts the router needs.
type Lifecycle interface {
	ports.SubmissionIntake
	ports.SubmissionDriver
	ports.SubmissionReader
}

type Router struct {
	cfg       config.Config
	lifecycle Lifecycle
	ranker    ports.CandidateRanker
	resolver  ports.ContactResolver
	metrics   *metrics.APIMetrics
	now       func() time.Time
}

func NewRouter(
	cfg config.Config,
	lifecycle Lifecycle,
	ranker ports.CandidateRanker,
	resolver ports.ContactResolver,
	m *metrics.APIMetrics,
) *Router {
	return &Router{
		cfg:       cfg,
		lifecycle: lifecycle,
		ranker:    ranker,
		resolver:  resolver,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock swaps the clock for tests.
func (rt *Router) WithClock(now func() time.Time) *Router {
	rt.now = now
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/submissions", rt.createSubmission)
	mux.HandleFunc("/v1/submissions/", rt.submissionSubtree)
	mux.HandleFunc("/v1/routing/rank", rt.rankCandidates)
	mux.HandleFunc("/v1/schedule/resolve", rt.resolveWindow)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, 100*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createSubmission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var mapped domain.MappedFormOutput
	if err := json.NewDecoder(r.Body).Decode(&mapped); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(mapped.BusinessName) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "business_name is required"})
		return
	}

	sub, err := rt.lifecycle.Intake(r.Context(), mapped)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

// submissionSubtree routes /v1/submissions/{id} and
// /v1/submissions/{id}/events.
func (rt *Router) submissionSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/submissions/")
	if id, ok := strings.CutSuffix(rest, "/events"); ok {
		rt.applyEvent(w, r, id)
		return
	}
	rt.getSubmission(w, r, rest)
}

func (rt *Router) getSubmission(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "submission id is required"})
		return
	}

	sub, err := rt.lifecycle.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (rt *Router) applyEvent(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "submission id is required"})
		return
	}

	var req struct {
		Event string `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Event) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "event is required"})
		return
	}

	event := domain.SubmissionEvent(req.Event)
	sub, err := rt.lifecycle.Apply(r.Context(), id, event)
	if rt.metrics != nil {
		rt.metrics.RecordTransition(serviceName, req.Event, err)
	}
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (rt *Router) rankCandidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Profile domain.RiskProfile `json:"profile"`
		TopN    int                `json:"top_n"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	topN := req.TopN
	if topN <= 0 {
		topN = rt.cfg.RoutingTopN
	}

	ranked, err := rt.ranker.Rank(r.Context(), req.Profile, topN)
	if rt.metrics != nil {
		rt.metrics.RecordRoutingRun(serviceName, len(ranked), err)
	}
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": ranked})
}

func (rt *Router) resolveWindow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Notes string     `json:"notes"`
		Now   *time.Time `json:"now,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	now := rt.now()
	if req.Now != nil {
		now = req.Now.UTC()
	}
	window := rt.resolver.Resolve(now, req.Notes)
	if rt.metrics != nil {
		rt.metrics.RecordResolverRule(serviceName, window.Rule)
	}
	writeJSON(w, http.StatusOK, window)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
