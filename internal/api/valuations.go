package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/valuation-api/internal/valuation"
)

// valuationRequest is the wizard submission payload.
type valuationRequest struct {
	Category        string  `json:"category"`
	MonthlyRevenue  int64   `json:"monthly_revenue"`
	MonthlyProfit   int64   `json:"monthly_profit"`
	AudienceSize    int64   `json:"audience_size"`
	ContentCategory string  `json:"content_category"`
	AvgViews        float64 `json:"avg_views"`
	AvgLikes        float64 `json:"avg_likes"`
	AgeBucket       string  `json:"age_bucket"`
}

// valuationResponse mirrors the result page contract.
type valuationResponse struct {
	ID             string               `json:"id,omitempty"`
	Value          int64                `json:"value"`
	FormattedValue string               `json:"formatted_value"`
	Range          valuation.Range      `json:"range"`
	FormattedRange string               `json:"formatted_range"`
	Percentile     int                  `json:"percentile"`
	Confidence     valuation.Confidence `json:"confidence"`
	Method         valuation.Method     `json:"method"`
	Details        valuation.Details    `json:"details"`
}

func toValuationResponse(id string, res valuation.Result) valuationResponse {
	return valuationResponse{
		ID:             id,
		Value:          res.Value,
		FormattedValue: valuation.FormatKRW(res.Value),
		Range:          res.Range,
		FormattedRange: valuation.FormatRange(res.Range),
		Percentile:     res.Percentile,
		Confidence:     res.Confidence,
		Method:         res.Method,
		Details:        res.Details,
	}
}

// toInput canonicalizes the wire payload into a calculation input. The
// engagement metric is per-content likes for image platforms and per-content
// views everywhere else.
func (req valuationRequest) toInput() valuation.Input {
	cat := valuation.ParseCategory(req.Category)

	metric := req.AvgViews
	if cat == valuation.CategoryImageSocial {
		metric = req.AvgLikes
	}

	return valuation.Input{
		Category:         cat,
		MonthlyRevenue:   req.MonthlyRevenue,
		MonthlyProfit:    req.MonthlyProfit,
		AudienceSize:     req.AudienceSize,
		ContentCategory:  req.ContentCategory,
		EngagementMetric: metric,
		AgeBucket:        valuation.ParseAgeBucket(req.AgeBucket),
	}
}

func (req valuationRequest) validate() string {
	if req.Category == "" {
		return "category is required"
	}
	if req.MonthlyRevenue < 0 {
		return "monthly_revenue must not be negative"
	}
	if req.MonthlyProfit < 0 {
		return "monthly_profit must not be negative"
	}
	if req.AudienceSize < 0 {
		return "audience_size must not be negative"
	}
	if req.AvgViews < 0 || req.AvgLikes < 0 {
		return "engagement values must not be negative"
	}
	return ""
}

func (s *Server) handleCreateValuation(w http.ResponseWriter, r *http.Request) {
	var req valuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	in := req.toInput()
	res := s.calc.Calculate(r.Context(), in)

	rec, err := s.store.CreateValuation(r.Context(), in, res)
	if err != nil {
		s.log.Error("persist valuation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store valuation")
		return
	}

	writeJSON(w, http.StatusCreated, toValuationResponse(rec.ID, res))
}

func (s *Server) handleGetValuation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.store.GetValuation(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "valuation not found")
		return
	}

	writeJSON(w, http.StatusOK, toValuationResponse(rec.ID, rec.Result))
}
