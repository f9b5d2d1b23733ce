package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/weather-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 16

var validate = validator.New()

type locationRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

type unitRequest struct {
	Unit string `json:"unit" validate:"required,oneof=metric imperial"`
}

type realFeelQuery struct {
	Temp     float64 `validate:"gte=-100,lte=150"`
	Humidity float64 `validate:"gte=0,lte=100"`
	Wind     float64 `validate:"gte=0,lte=200"`
	Unit     string  `validate:"oneof=metric imperial"`
}

type realFeelResponse struct {
	RealFeel float64     `json:"real_feel"`
	Unit     domain.Unit `json:"unit"`
	Display  string      `json:"display"`
}

type insightResponse struct {
	Kind dashboard.InsightKind `json:"kind"`
	Text string                `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusCreated, s.dashboard.CreateSession())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.dashboard.Session(r.PathValue("id"))
	s.respond(w, r, sess, err)
}

func (s *Server) handleSetLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !s.decode(w, r, &req) {
		return
	}
	sess, err := s.dashboard.SetLocation(r.Context(), r.PathValue("id"), req.Query)
	s.respond(w, r, sess, err)
}

func (s *Server) handleLocateByIP(w http.ResponseWriter, r *http.Request) {
	sess, err := s.dashboard.LocateByIP(r.Context(), r.PathValue("id"))
	s.respond(w, r, sess, err)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sess, err := s.dashboard.Refresh(r.Context(), r.PathValue("id"))
	s.respond(w, r, sess, err)
}

func (s *Server) handleSetUnit(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if !s.decode(w, r, &req) {
		return
	}
	sess, err := s.dashboard.SetUnit(r.Context(), r.PathValue("id"), domain.Unit(req.Unit))
	s.respond(w, r, sess, err)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	sess, err := s.dashboard.AddFavorite(r.PathValue("id"))
	s.respond(w, r, sess, err)
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	i, ok := favoriteIndex(w, r)
	if !ok {
		return
	}
	sess, err := s.dashboard.RemoveFavorite(r.PathValue("id"), i)
	s.respond(w, r, sess, err)
}

func (s *Server) handleLoadFavorite(w http.ResponseWriter, r *http.Request) {
	i, ok := favoriteIndex(w, r)
	if !ok {
		return
	}
	sess, err := s.dashboard.LoadFavorite(r.Context(), r.PathValue("id"), i)
	s.respond(w, r, sess, err)
}

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	a, err := s.dashboard.Assistant(r.Context(), r.PathValue("id"))
	s.respond(w, r, a, err)
}

func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	kind := dashboard.InsightKind(r.PathValue("kind"))
	text, err := s.dashboard.Insight(r.Context(), r.PathValue("id"), kind)
	s.respond(w, r, insightResponse{Kind: kind, Text: text}, err)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	report, err := s.dashboard.Trends(r.PathValue("id"))
	s.respond(w, r, report, err)
}

func (s *Server) handleRealFeel(w http.ResponseWriter, r *http.Request) {
	q, err := parseRealFeelQuery(r)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	unit := domain.Unit(q.Unit)
	feel := domain.RealFeel(q.Temp, q.Humidity, q.Wind, unit)
	sharedobs.WriteJSON(w, http.StatusOK, realFeelResponse{
		RealFeel: feel,
		Unit:     unit,
		Display:  domain.FormatTemp(feel, unit),
	})
}

func parseRealFeelQuery(r *http.Request) (realFeelQuery, error) {
	values := r.URL.Query()
	q := realFeelQuery{Unit: values.Get("unit")}
	if q.Unit == "" {
		q.Unit = string(domain.UnitMetric)
	}

	fields := []struct {
		name string
		dst  *float64
	}{
		{"temp", &q.Temp},
		{"humidity", &q.Humidity},
		{"wind", &q.Wind},
	}
	for _, f := range fields {
		raw := values.Get(f.name)
		if raw == "" {
			return q, fmt.Errorf("missing query parameter %q", f.name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("invalid query parameter %q: %w", f.name, err)
		}
		*f.dst = v
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// decode reads and validates a JSON body, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

func favoriteIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: "favorite index must be an integer"})
		return 0, false
	}
	return i, true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err == nil {
		sharedobs.WriteJSON(w, http.StatusOK, v)
		return
	}
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, dashboard.ErrSessionNotFound), errors.Is(err, dashboard.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, dashboard.ErrFetchFailed):
		return http.StatusBadGateway, dashboard.Describe(err)
	case errors.Is(err, dashboard.ErrFavoriteIndex), errors.Is(err, dashboard.ErrUnknownInsight):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, dashboard.ErrNoBundle):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
