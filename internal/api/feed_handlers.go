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

// Candidate snapshot size limits. Requests above these are rejected
// rather than truncated so callers notice oversized snapshots.
const (
	MaxFeedPosts = 200
	MaxFeedUsers = 100
)

// FeedRequest is the request body for POST /v1/feed. The caller sends a
// full candidate snapshot; the server holds no feed state of its own.
type FeedRequest struct {
	Viewer engine.Viewer          `json:"viewer"`
	Posts  []engine.CandidatePost `json:"posts"`
	Users  []engine.CandidateUser `json:"users"`
	Mode   string                 `json:"mode,omitempty"`
	Limit  int                    `json:"limit,omitempty"`
}

// FeedItem is one ranked entry in the feed response.
type FeedItem struct {
	PostID  string               `json:"post_id"`
	Score   float64              `json:"score"`
	Reasons []engine.ScoreReason `json:"reasons"`
}

// FeedResponse is the response body for POST /v1/feed. Items are in
// final feed order.
type FeedResponse struct {
	Mode  string     `json:"mode"`
	Items []FeedItem `json:"items"`
	Count int        `json:"count"`
}

// FeedHandlers holds dependencies for the feed ranking endpoint.
type FeedHandlers struct {
	weights *ranking.Weights
	metrics *Metrics
}

// NewFeedHandlers creates a new FeedHandlers instance.
// metrics may be nil, in which case no metrics are recorded.
func NewFeedHandlers(weights *ranking.Weights, metrics *Metrics) *FeedHandlers {
	return &FeedHandlers{
		weights: weights,
		metrics: metrics,
	}
}

// GenerateFeed handles POST /v1/feed - ranks a candidate snapshot into a feed.
func (h *FeedHandlers) GenerateFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req FeedRequest
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

	// Record the viewer for request logs and viewer-keyed rate limits.
	ctx := middleware.SetViewerID(r.Context(), req.Viewer.ID)
	middleware.UpdateResponseContext(w, ctx)

	if len(req.Posts) > MaxFeedPosts {
		ctx = middleware.SetErrorCode(ctx, ErrCodeTooManyCandidates)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeTooManyCandidates, "At most 200 candidate posts are accepted")
		return
	}
	if len(req.Users) > MaxFeedUsers {
		ctx = middleware.SetErrorCode(ctx, ErrCodeTooManyCandidates)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeTooManyCandidates, "At most 100 candidate users are accepted")
		return
	}

	// Mode defaults to for_you when omitted.
	mode := engine.FeedType(req.Mode)
	if req.Mode == "" {
		mode = engine.FeedForYou
	}
	if !engine.ValidFeedType(mode) {
		ctx = middleware.SetErrorCode(ctx, ErrCodeInvalidMode)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidMode, "Unknown feed mode: "+req.Mode)
		return
	}

	if req.Limit < 0 {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "limit must not be negative")
		return
	}

	start := time.Now()
	ranked := engine.GenerateFeed(req.Viewer, req.Posts, req.Users, mode, time.Now(), h.weights)
	elapsed := time.Since(start)

	if req.Limit > 0 && len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	items := make([]FeedItem, len(ranked))
	for i, rp := range ranked {
		items[i] = FeedItem{
			PostID:  rp.Post.ID,
			Score:   rp.Score.Value,
			Reasons: rp.Score.Reasons,
		}
	}

	if h.metrics != nil {
		h.metrics.ObserveRanking("feed", string(mode), len(req.Posts), len(items), elapsed)
	}

	writeJSON(w, ctx, http.StatusOK, FeedResponse{
		Mode:  string(mode),
		Items: items,
		Count: len(items),
	})
}
