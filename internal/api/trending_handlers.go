package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/driftline/driftline/internal/engine"
	"github.com/driftline/driftline/internal/middleware"
	"github.com/driftline/driftline/internal/ranking"
)

// MaxTrendingPosts bounds the candidate snapshot for trend detection.
// Trending scans a wider pool than feed ranking because it is not
// personalized and the velocity computation is cheap.
const MaxTrendingPosts = 500

// TrendingRequest is the request body for POST /v1/trending.
// WindowHours of 0 selects the default 24 hour window.
type TrendingRequest struct {
	Posts       []engine.CandidatePost `json:"posts"`
	WindowHours float64                `json:"window_hours,omitempty"`
}

// TrendingItem is one entry in the trending response.
type TrendingItem struct {
	PostID   string  `json:"post_id"`
	AuthorID string  `json:"author_id"`
	Velocity float64 `json:"velocity"`
}

// TrendingResponse is the response body for POST /v1/trending.
// Items are ordered by descending engagement velocity.
type TrendingResponse struct {
	Items       []TrendingItem `json:"items"`
	Count       int            `json:"count"`
	WindowHours float64        `json:"window_hours"`
}

// TrendingHandlers holds dependencies for the trend detection endpoint.
type TrendingHandlers struct {
	weights *ranking.Weights
	metrics *Metrics
}

// NewTrendingHandlers creates a new TrendingHandlers instance.
// metrics may be nil, in which case no metrics are recorded.
func NewTrendingHandlers(weights *ranking.Weights, metrics *Metrics) *TrendingHandlers {
	return &TrendingHandlers{
		weights: weights,
		metrics: metrics,
	}
}

// GetTrending handles POST /v1/trending - detects fast-moving posts.
func (h *TrendingHandlers) GetTrending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req TrendingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	ctx := r.Context()

	if len(req.Posts) > MaxTrendingPosts {
		ctx = middleware.SetErrorCode(ctx, ErrCodeTooManyCandidates)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeTooManyCandidates, "At most 500 candidate posts are accepted")
		return
	}

	if req.WindowHours < 0 {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "window_hours must not be negative")
		return
	}

	window := time.Duration(req.WindowHours * float64(time.Hour))
	if window <= 0 {
		window = engine.DefaultTrendingWindow
	}

	start := time.Now()
	trending := engine.TrendingPosts(req.Posts, window, time.Now(), h.weights)
	elapsed := time.Since(start)

	items := make([]TrendingItem, len(trending))
	for i, tp := range trending {
		items[i] = TrendingItem{
			PostID:   tp.Post.ID,
			AuthorID: tp.Post.AuthorID,
			Velocity: tp.Velocity,
		}
	}

	if h.metrics != nil {
		h.metrics.ObserveRanking("trending", "", len(req.Posts), len(items), elapsed)
	}

	writeJSON(w, ctx, http.StatusOK, TrendingResponse{
		Items:       items,
		Count:       len(items),
		WindowHours: window.Hours(),
	})
}
