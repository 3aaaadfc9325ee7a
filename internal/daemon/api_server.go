package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"animewatch/internal/api"
	"animewatch/internal/catalog"
	"animewatch/internal/config"
	"animewatch/internal/logging"
	"animewatch/internal/tracker"
)

const (
	maxRequestBytes    = 8 << 20
	defaultHistorySize = 50
	requestIDHeader    = "X-Request-ID"
)

type apiServer struct {
	bind         string
	logger       *slog.Logger
	daemon       *Daemon
	historyLimit int

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:         strings.TrimSpace(cfg.Paths.APIBind),
		logger:       logging.NewComponentLogger(logger, "api-server"),
		daemon:       d,
		historyLimit: cfg.Recognition.HistoryLimit,
	}
	if srv.historyLimit <= 0 {
		srv.historyLimit = defaultHistorySize
	}
	srv.server = &http.Server{
		Handler:           srv.handler(cfg.Paths.APIToken),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) handler(token string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/recognize", s.handleRecognize)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/anime", s.handleListAnime)
	mux.HandleFunc("POST /api/anime", s.handleAddAnime)
	mux.HandleFunc("POST /api/anime/import", s.handleImport)
	mux.HandleFunc("POST /api/anime/{id}/external-ids", s.handleLinkExternalIDs)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("POST /api/recognition/invalidate", s.handleInvalidate)
	return s.withCorrelation(authMiddleware(token, mux))
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

// withCorrelation tags each request with a correlation id, reusing the caller's X-Request-ID.
func (s *apiServer) withCorrelation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logging.WithCorrelationID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *apiServer) handleRecognize(w http.ResponseWriter, r *http.Request) {
	var req api.RecognizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	obs, err := s.daemon.tracker.Recognize(r.Context(), req.Title)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromObservation(obs))
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		StartedAt:    api.FormatTime(status.StartedAt),
		Stats:        api.FromStats(status.Stats),
	})
}

func (s *apiServer) handleListAnime(w http.ResponseWriter, r *http.Request) {
	items, err := s.daemon.store.AllAnime(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.AnimeListResponse{Items: api.FromAnimeList(items)})
}

func (s *apiServer) handleAddAnime(w http.ResponseWriter, r *http.Request) {
	var anime catalog.Anime
	if !s.decode(w, r, &anime) {
		return
	}
	stored, err := s.daemon.tracker.AddAnime(r.Context(), anime)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.FromAnime(*stored))
}

func (s *apiServer) handleImport(w http.ResponseWriter, r *http.Request) {
	var req api.ImportRequest
	if !s.decode(w, r, &req) {
		return
	}
	count, err := s.daemon.tracker.Import(r.Context(), req.Items)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.ImportResponse{Imported: count})
}

func (s *apiServer) handleLinkExternalIDs(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "invalid anime id", "validation")
		return
	}
	var req api.ExternalIDsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.daemon.tracker.LinkExternalIDs(r.Context(), id, req.ExternalIDs()); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	anime, err := s.daemon.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if anime == nil {
		s.writeFailure(w, r, catalog.ErrNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromAnime(*anime))
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.historyLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer", "validation")
			return
		}
		limit = parsed
	}
	events, err := s.daemon.store.History(r.Context(), limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.HistoryResponse{Items: api.FromWatchEvents(events)})
}

func (s *apiServer) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if err := s.daemon.tracker.Invalidate(r.Context()); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "validation")
		return false
	}
	return true
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, tracker.ErrStopped):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	}
	kind := catalog.Kind(err)
	switch kind {
	case "validation":
		return http.StatusBadRequest, kind
	case "not_found":
		return http.StatusNotFound, kind
	case "conflict":
		return http.StatusConflict, kind
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *apiServer) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "api request failed", "api_request_failed",
			logging.Error(err),
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
		)
	}
	s.writeError(w, status, err.Error(), kind)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message, kind string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message, Kind: kind})
}
