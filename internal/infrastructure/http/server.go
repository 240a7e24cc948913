package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fvsutils/closings/internal/application"
	"github.com/fvsutils/closings/internal/domain"
	"github.com/fvsutils/closings/internal/infrastructure/logx"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 30
	latestCacheKey      = "closings:latest"
)

// Cache is the read-through cache in front of the latest-closings query.
type Cache interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

type Server struct {
	repo   application.ClosingReader
	cache  Cache
	ping   func(ctx context.Context) error
	apiKey string
}

func NewServer(repo application.ClosingReader, cache Cache, ping func(ctx context.Context) error, apiKey string) *Server {
	return &Server{repo: repo, cache: cache, ping: ping, apiKey: apiKey}
}

// GET /api/closings/latest
func (s *Server) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var closings []domain.Closing
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, latestCacheKey, &closings); err == nil && hit {
			writeList(w, closings)
			return
		} else if err != nil {
			logx.L().Warn("latest cache read failed", zap.Error(err))
		}
	}

	closings, err := s.repo.Latest(ctx)
	if err != nil {
		internalError(w)
		return
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, latestCacheKey, closings); err != nil {
			logx.L().Warn("latest cache write failed", zap.Error(err))
		}
	}
	writeList(w, closings)
}

// GET /api/closings/{code}?limit=N
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	if !domain.ValidCode(code) {
		writeError(w, http.StatusBadRequest, "invalid instrument code")
		return
	}
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	closings, err := s.repo.History(r.Context(), code, limit)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no data for "+code)
			return
		}
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  closings,
		"count": len(closings),
		"code":  code,
	})
}

// GET /api/closings/{code}/stats
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	if !domain.ValidCode(code) {
		writeError(w, http.StatusBadRequest, "invalid instrument code")
		return
	}

	stats, err := s.repo.Stats(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no data for "+code)
			return
		}
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": stats})
}

// GET /api/stocks
func (s *Server) GetCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := s.repo.Codes(r.Context())
	if err != nil {
		internalError(w)
		return
	}
	if codes == nil {
		codes = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  codes,
		"count": len(codes),
	})
}

func writeList(w http.ResponseWriter, closings []domain.Closing) {
	if closings == nil {
		closings = []domain.Closing{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  closings,
		"count": len(closings),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
