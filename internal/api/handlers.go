package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vega/internal/domain/tracking"
	"vega/internal/services/analysis"
	"vega/pkg/errors"
	"vega/pkg/logger"
)

// Handler holds the request handlers for the JSON API
type Handler struct {
	analysis *analysis.Service
	tracking *tracking.Service
	log      *logger.Logger
}

// NewHandler creates the API handler set
func NewHandler(analysisSvc *analysis.Service, trackingSvc *tracking.Service) *Handler {
	return &Handler{
		analysis: analysisSvc,
		tracking: trackingSvc,
		log:      logger.Get(),
	}
}

// HandleAnalyze runs the full analysis pipeline for one ticker
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")

	resp, err := h.analysis.Analyze(r.Context(), ticker)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type trackRequest struct {
	Ticker   string `json:"ticker"`
	Strategy string `json:"strategy"`

	Kind         tracking.PositionKind `json:"kind"`
	OptionSymbol string                `json:"optionSymbol,omitempty"`
	OptionKind   string                `json:"optionKind,omitempty"`
	Strike       decimal.Decimal       `json:"strike,omitempty"`
	Expiration   *time.Time            `json:"expiration,omitempty"`

	EntryPrice  decimal.Decimal `json:"entryPrice"`
	TargetPrice decimal.Decimal `json:"targetPrice,omitempty"`
	StopPrice   decimal.Decimal `json:"stopPrice,omitempty"`
	Quantity    int64           `json:"quantity"`
	Multiplier  int64           `json:"multiplier,omitempty"`

	Confidence         int    `json:"confidence,omitempty"`
	CalibrationVersion string `json:"calibrationVersion,omitempty"`
}

// HandleTrack persists a new suggestion for outcome tracking
func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.Wrap(errors.ErrInvalidInput, err.Error()))
		return
	}

	t := &tracking.TrackedSuggestion{
		Ticker:             req.Ticker,
		Strategy:           req.Strategy,
		Kind:               req.Kind,
		OptionSymbol:       req.OptionSymbol,
		OptionKind:         req.OptionKind,
		Strike:             req.Strike,
		Expiration:         req.Expiration,
		EntryPrice:         req.EntryPrice,
		TargetPrice:        req.TargetPrice,
		StopPrice:          req.StopPrice,
		Quantity:           req.Quantity,
		Multiplier:         req.Multiplier,
		Confidence:         req.Confidence,
		CalibrationVersion: req.CalibrationVersion,
	}
	if err := h.tracking.Track(r.Context(), t); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, t)
}

// HandleListTracked returns all tracked suggestions with live valuation
func (h *Handler) HandleListTracked(w http.ResponseWriter, r *http.Request) {
	valued, err := h.tracking.ListValued(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"items": valued, "count": len(valued)})
}

type patchRequest struct {
	Status      *tracking.Status `json:"status,omitempty"`
	TargetPrice *decimal.Decimal `json:"targetPrice,omitempty"`
	StopPrice   *decimal.Decimal `json:"stopPrice,omitempty"`
	ClosedPrice *decimal.Decimal `json:"closedPrice,omitempty"`
	Strategy    *string          `json:"strategy,omitempty"`
}

// HandlePatchTracked applies a partial update to a tracked suggestion
func (h *Handler) HandlePatchTracked(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, errors.Wrap(errors.ErrInvalidInput, "malformed id"))
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.Wrap(errors.ErrInvalidInput, err.Error()))
		return
	}

	t, err := h.tracking.ApplyPatch(r.Context(), id, tracking.Patch{
		Status:      req.Status,
		TargetPrice: req.TargetPrice,
		StopPrice:   req.StopPrice,
		ClosedPrice: req.ClosedPrice,
		Strategy:    req.Strategy,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, t)
}

// HandleDeleteTracked removes a tracked suggestion
func (h *Handler) HandleDeleteTracked(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, errors.Wrap(errors.ErrInvalidInput, "malformed id"))
		return
	}
	if err := h.tracking.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAggregates returns the calibration feedback aggregates
func (h *Handler) HandleAggregates(w http.ResponseWriter, r *http.Request) {
	agg, err := h.tracking.Aggregate(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, agg)
}

type errorResponse struct {
	Error       string `json:"error"`
	Remediation string `json:"remediation,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Errorf("response encode failed: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errors.ErrInvalidTransition):
		code = http.StatusConflict
	case errors.Is(err, errors.ErrNoTradableData):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrRateLimited):
		code = http.StatusTooManyRequests
	case errors.Is(err, errors.ErrUpstreamAuth), errors.Is(err, errors.ErrUpstreamUnavailable):
		code = http.StatusBadGateway
	}

	resp := errorResponse{Error: err.Error()}
	var domainErr *errors.DomainError
	if errors.As(err, &domainErr) {
		resp.Remediation = domainErr.Remediation
	}

	if code >= http.StatusInternalServerError {
		h.log.ErrorWithContext(r.Context(), err, map[string]string{"path": r.URL.Path})
	} else {
		h.log.Debugf("%s %s -> %d: %v", r.Method, r.URL.Path, code, err)
	}
	h.writeJSON(w, code, resp)
}
