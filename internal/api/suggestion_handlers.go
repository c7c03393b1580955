package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/driftline/driftline/internal/engine"
	"github.com/driftline/driftline/internal/middleware"
	"github.com/driftline/driftline/internal/ranking"
	"github.com/driftline/driftline/internal/validate"
)

// Suggestion request limits.
const (
	MaxSuggestionCandidates = 100
	DefaultSuggestionLimit  = 10
)

// SuggestionRequest is the request body for POST /v1/suggestions.
type SuggestionRequest struct {
	Viewer engine.Viewer          `json:"viewer"`
	Users  []engine.CandidateUser `json:"users"`
	Limit  int                    `json:"limit,omitempty"`
}

// SuggestionResponse is the response body for POST /v1/suggestions.
// Suggestions are ordered by descending similarity score.
type SuggestionResponse struct {
	Suggestions []engine.SuggestedUser `json:"suggestions"`
	Count       int                    `json:"count"`
}

// SuggestionHandlers holds dependencies for the follow suggestion endpoint.
type SuggestionHandlers struct {
	weights *ranking.Weights
	metrics *Metrics
}

// NewSuggestionHandlers creates a new SuggestionHandlers instance.
// metrics may be nil, in which case no metrics are recorded.
func NewSuggestionHandlers(weights *ranking.Weights, metrics *Metrics) *SuggestionHandlers {
	return &SuggestionHandlers{
		weights: weights,
		metrics: metrics,
	}
}

// SuggestUsers handles POST /v1/suggestions - ranks follow suggestions.
func (h *SuggestionHandlers) SuggestUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req SuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	viewerID, err := validate.UserID(req.Viewer.ID)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "viewer.id is invalid: "+err.Error())
		return
	}
	req.Viewer.ID = viewerID

	ctx := middleware.SetViewerID(r.Context(), req.Viewer.ID)
	middleware.UpdateResponseContext(w, ctx)

	if len(req.Users) > MaxSuggestionCandidates {
		ctx = middleware.SetErrorCode(ctx, ErrCodeTooManyCandidates)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeTooManyCandidates, "At most 100 candidate users are accepted")
		return
	}

	if req.Limit < 0 {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "limit must not be negative")
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultSuggestionLimit
	}

	start := time.Now()
	suggestions := engine.FindSimilarUsers(req.Viewer, req.Users, limit, h.weights)
	elapsed := time.Since(start)

	if h.metrics != nil {
		h.metrics.ObserveRanking("suggestions", "", len(req.Users), len(suggestions), elapsed)
	}

	writeJSON(w, ctx, http.StatusOK, SuggestionResponse{
		Suggestions: suggestions,
		Count:       len(suggestions),
	})
}
