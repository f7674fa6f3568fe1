package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"villa_rates/internal/domain"
	"villa_rates/internal/rates"
)

// RateEvaluator is what the handlers need from the application layer.
type RateEvaluator interface {
	Availability(ctx context.Context, req domain.StayRequest) (rates.Availability, error)
	Quote(ctx context.Context, req domain.StayRequest) (domain.PriceBreakdown, error)
	Evaluate(ctx context.Context, req domain.StayRequest) (rates.Evaluation, error)
}

type Handlers struct{ R RateEvaluator }

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1/rooms/{id}", func(r chi.Router) {
		r.Get("/availability", h.availability)
		r.Get("/quote", h.quote)
		r.Get("/evaluation", h.evaluation)
	})
}

func writeProblem(w http.ResponseWriter, p problem) {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var cu *domain.ConfigurationUnavailableError
	switch {
	case domain.IsValidationError(err) != nil:
		writeProblem(w, problem{Title: "Invalid stay request", Status: http.StatusBadRequest,
			Errors: domain.IsValidationError(err).Fields()})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, problem{Title: "Not Found", Status: http.StatusNotFound, Detail: err.Error()})
	case errors.As(err, &cu):
		log.Error().Err(err).Str("source", cu.Source).Str("path", r.URL.Path).Msg("configuration unavailable")
		writeProblem(w, problem{Title: "Configuration unavailable", Status: http.StatusServiceUnavailable,
			Detail: "pricing configuration could not be read"})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeProblem(w, problem{Title: "Timeout", Status: http.StatusServiceUnavailable})
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("evaluation failed")
		writeProblem(w, problem{Title: "Internal Server Error", Status: http.StatusInternalServerError})
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, problem{Title: "Internal Server Error", Status: http.StatusInternalServerError})
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

// parseStay reads the stay from the path and query string. Field problems are returned together.
func parseStay(r *http.Request) (domain.StayRequest, error) {
	q := r.URL.Query()
	verr := domain.NewValidationError()
	req := domain.StayRequest{
		RoomID:     chi.URLParam(r, "id"),
		LocationID: q.Get("locationId"),
		GuestCount: 1,
	}

	parseDate := func(field string) time.Time {
		raw := strings.TrimSpace(q.Get(field))
		if raw == "" {
			verr.Add(field, "is required")
			return time.Time{}
		}
		for _, layout := range []string{"2006-01-02", time.RFC3339} {
			if t, err := time.Parse(layout, raw); err == nil {
				// keep the calendar day the caller wrote, whatever its offset
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
		}
		verr.Add(field, "must be a date in YYYY-MM-DD form")
		return time.Time{}
	}
	req.CheckIn = parseDate("checkIn")
	req.CheckOut = parseDate("checkOut")

	if g := q.Get("guests"); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil || n < 1 {
			verr.Add("guestCount", "guests must be a positive integer")
		}
		req.GuestCount = n
	}
	return req, verr.Err()
}

func (h *Handlers) availability(w http.ResponseWriter, r *http.Request) {
	req, err := parseStay(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.R.Availability(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	req, err := parseStay(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.R.Quote(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Quote-Id", uuid.NewString())
	writeJSON(w, r, out)
}

func (h *Handlers) evaluation(w http.ResponseWriter, r *http.Request) {
	req, err := parseStay(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.R.Evaluate(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Quote-Id", uuid.NewString())
	writeJSON(w, r, out)
}
