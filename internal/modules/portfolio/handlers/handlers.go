// Package handlers provides HTTP handlers for portfolio optimization.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/charts"
	"github.com/aristath/frontier/internal/modules/portfolio"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service      *portfolio.Service
	charts       *charts.Service
	tickerSuffix string
	riskFreeRate float64
	log          zerolog.Logger
}

// NewHandler creates a new portfolio handler. riskFreeRate is used when a request omits one.
func NewHandler(service *portfolio.Service, tickerSuffix string, riskFreeRate float64, log zerolog.Logger) *Handler {
	return &Handler{
		service:      service,
		charts:       charts.NewService(log),
		tickerSuffix: tickerSuffix,
		riskFreeRate: riskFreeRate,
		log:          log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetObjectives lists the supported optimization objectives
func (h *Handler) HandleGetObjectives(w http.ResponseWriter, r *http.Request) {
	objectives := make([]map[string]string, 0, len(domain.Objectives))
	for _, o := range domain.Objectives {
		objectives = append(objectives, map[string]string{
			"key":   string(o),
			"label": o.Label(),
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"objectives":             objectives,
			"default_risk_free_rate": h.riskFreeRate,
		},
		"metadata": metadata(),
	})
}

// HandleOptimize handles POST /api/portfolio/optimize and returns the full report
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	report, ok := h.run(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":     report,
		"metadata": metadata(),
	})
}

// HandleChart handles POST /api/portfolio/charts/{kind} and returns a PNG
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if !charts.ValidKind(kind) {
		h.writeError(w, http.StatusBadRequest, charts.ErrUnknownKind.Error()+": "+kind)
		return
	}

	report, ok := h.run(w, r)
	if !ok {
		return
	}

	img, err := h.charts.Render(kind, report)
	if err != nil {
		h.log.Error().Err(err).Str("kind", kind).Str("run_id", report.RunID).Msg("Failed to render chart")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Run-Id", report.RunID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		h.log.Error().Err(err).Msg("Failed to write chart response")
	}
}

// run decodes the request and executes the optimization, writing the error response on failure
func (h *Handler) run(w http.ResponseWriter, r *http.Request) (*portfolio.Report, bool) {
	req, err := decodeRequest(r)
	if err != nil {
		h.writeRunError(w, err)
		return nil, false
	}

	cfg, err := req.RunConfig(h.tickerSuffix, h.riskFreeRate)
	if err != nil {
		h.writeRunError(w, err)
		return nil, false
	}

	report, err := h.service.Run(r.Context(), cfg)
	if err != nil {
		h.writeRunError(w, err)
		return nil, false
	}
	return report, true
}

// writeRunError maps run failures to status codes
func (h *Handler) writeRunError(w http.ResponseWriter, err error) {
	var reqErr *requestError
	var partial *domain.PartialDataError

	switch {
	case errors.As(err, &reqErr):
		body := map[string]interface{}{"error": reqErr.msg}
		if len(reqErr.fields) > 0 {
			body["fields"] = reqErr.fields
		}
		h.writeJSON(w, http.StatusBadRequest, body)
	case domain.IsInvalidInput(err):
		h.writeError(w, http.StatusBadRequest, rootMessage(err))
	case errors.As(err, &partial):
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   partial.Error(),
			"missing": partial.Missing,
		})
	case errors.Is(err, domain.ErrDataUnavailable):
		h.log.Warn().Err(err).Msg("Market data unavailable")
		h.writeError(w, http.StatusBadGateway, domain.ErrDataUnavailable.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.log.Error().Err(err).Msg("Optimization run failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// rootMessage returns the user-facing validation message without wrapping detail
func rootMessage(err error) string {
	for _, target := range []error{
		domain.ErrInvalidTickers,
		domain.ErrInsufficientTickers,
		domain.ErrInvalidDateRange,
		domain.ErrUnknownObjective,
		domain.ErrInvalidRiskFreeRate,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

func metadata() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
