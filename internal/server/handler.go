// Package server is the browser front-end and JSON API for code analysis.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ogulcanaydogan/ai-bug-detector/internal/analyzer"
	"github.com/ogulcanaydogan/ai-bug-detector/internal/hash"
	"github.com/ogulcanaydogan/ai-bug-detector/pkg/types"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// analyzeTimeout bounds a shared model call once it no longer follows the
// request that started it.
const analyzeTimeout = 2 * time.Minute

type Server struct {
	cfg      Config
	analyzer analyzer.Analyzer
	gen      analyzer.Generator
	cache    *resultCache
	group    singleflight.Group
	limiter  *rate.Limiter
	log      *zap.Logger
}

// New wires a front-end around a. gen may be nil, in which case fix
// suggestions are unavailable.
func New(cfg Config, a analyzer.Analyzer, gen analyzer.Generator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:      cfg,
		analyzer: a,
		gen:      gen,
		cache:    newResultCache(time.Duration(cfg.CacheTTLSeconds) * time.Second),
		log:      log,
	}
	if cfg.RateLimit > 0 {
		burst := max(cfg.Burst, 1)
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", s.withRequestID(http.HandlerFunc(s.handleIndex)))
	mux.Handle("/analyze", s.withRequestID(s.limited(http.HandlerFunc(s.handleAnalyze))))
	mux.Handle("/suggest-fix", s.withRequestID(s.limited(http.HandlerFunc(s.handleSuggestFix))))
	mux.Handle("/healthz", HealthHandler())
	return mux
}

// HealthHandler returns an HTTP handler for liveness and readiness probes.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) limited(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Too many requests, slow down"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, pageData{Languages: languages}); err != nil {
		s.log.Error("render index", zap.Error(err))
	}
}

type analyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type suggestRequest struct {
	Code  string `json:"code"`
	Issue string `json:"issue"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req analyzeRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No code provided"})
		return
	}
	if req.Language == "" {
		req.Language = analyzer.DefaultLanguage
	}

	res, err := s.analyze(r.Context(), req.Code, req.Language)
	if err != nil && r.Context().Err() != nil {
		s.log.Debug("client went away", zap.Error(err))
		return
	}
	if err != nil {
		s.log.Warn("analysis degraded", zap.String("language", req.Language), zap.Error(err))
		res = analyzer.DegradedResult(err)
	}
	writeJSON(w, http.StatusOK, res)
}

// analyze serves from the cache or joins the in-flight call for the same
// key. The shared call outlives any single caller; each caller stops
// waiting when its own context ends.
func (s *Server) analyze(ctx context.Context, code, language string) (types.AnalysisResult, error) {
	key := hash.Key(language, code)
	if res, ok := s.cache.get(key, time.Now()); ok {
		return res, nil
	}
	ch := s.group.DoChan(key, func() (any, error) {
		if res, ok := s.cache.get(key, time.Now()); ok {
			return res, nil
		}
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), analyzeTimeout)
		defer cancel()
		res, err := s.analyzer.Analyze(callCtx, code, language)
		if err != nil {
			return nil, err
		}
		s.cache.put(key, res, time.Now())
		return res, nil
	})
	select {
	case <-ctx.Done():
		return types.AnalysisResult{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return types.AnalysisResult{}, r.Err
		}
		return r.Val.(types.AnalysisResult), nil
	}
}

func (s *Server) handleSuggestFix(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req suggestRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No code provided"})
		return
	}
	if req.Issue == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No issue provided"})
		return
	}
	if s.gen == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "fix suggestions need a model; server is running offline"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"suggestion": analyzer.SuggestFix(r.Context(), s.gen, req.Code, req.Issue),
	})
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	return false
}

func decodeBody(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
