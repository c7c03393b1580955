package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/driftline/driftline/internal/engine"
	"github.com/driftline/driftline/internal/ranking"
)

func suggestionHandler() *SuggestionHandlers {
	return NewSuggestionHandlers(ranking.DefaultWeights(), nil)
}

func postSuggestions(t *testing.T, h *SuggestionHandlers, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/suggestions", reader)
	rec := httptest.NewRecorder()
	h.SuggestUsers(rec, req)
	return rec
}

func TestSuggestUsers_MethodNotAllowed(t *testing.T) {
	h := suggestionHandler()
	req := httptest.NewRequest(http.MethodGet, "/v1/suggestions", nil)
	rec := httptest.NewRecorder()
	h.SuggestUsers(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestSuggestUsers_InvalidJSON(t *testing.T) {
	rec := postSuggestions(t, suggestionHandler(), "not json at all")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != ErrCodeBadRequest {
		t.Errorf("error code = %q, want %q", code, ErrCodeBadRequest)
	}
}

func TestSuggestUsers_MissingViewerID(t *testing.T) {
	rec := postSuggestions(t, suggestionHandler(), SuggestionRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != ErrCodeValidation {
		t.Errorf("error code = %q, want %q", code, ErrCodeValidation)
	}
}

func TestSuggestUsers_TooManyCandidates(t *testing.T) {
	users := make([]engine.CandidateUser, MaxSuggestionCandidates+1)
	for i := range users {
		users[i] = engine.CandidateUser{ID: "u"}
	}
	rec := postSuggestions(t, suggestionHandler(), SuggestionRequest{
		Viewer: engine.Viewer{ID: "viewer"},
		Users:  users,
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != ErrCodeTooManyCandidates {
		t.Errorf("error code = %q, want %q", code, ErrCodeTooManyCandidates)
	}
}

func TestSuggestUsers_NegativeLimit(t *testing.T) {
	rec := postSuggestions(t, suggestionHandler(), SuggestionRequest{
		Viewer: engine.Viewer{ID: "viewer"},
		Limit:  -1,
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if code := decodeErrorCode(t, rec); code != ErrCodeValidation {
		t.Errorf("error code = %q, want %q", code, ErrCodeValidation)
	}
}

func TestSuggestUsers_RanksCandidates(t *testing.T) {
	rec := postSuggestions(t, suggestionHandler(), SuggestionRequest{
		Viewer: engine.Viewer{
			ID:           "viewer",
			Interests:    []string{"jazz", "synths"},
			FollowingIDs: []string{"friend"},
		},
		Users: []engine.CandidateUser{
			{
				ID:          "strong",
				Interests:   []string{"jazz", "synths"},
				FollowerIDs: []string{"friend"},
			},
			{ID: "weak", Interests: []string{"golf"}},
		},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp SuggestionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1 (weak candidate below threshold)", resp.Count)
	}
	got := resp.Suggestions[0]
	if got.UserID != "strong" {
		t.Errorf("user_id = %q, want strong", got.UserID)
	}
	if got.MutualFollowers != 1 {
		t.Errorf("mutual_followers = %d, want 1", got.MutualFollowers)
	}
	if len(got.Reasons) == 0 {
		t.Error("suggestion should carry reasons")
	}
}

func TestSuggestUsers_EmptyCandidates(t *testing.T) {
	rec := postSuggestions(t, suggestionHandler(), SuggestionRequest{
		Viewer: engine.Viewer{ID: "viewer"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp SuggestionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0", resp.Count)
	}
	if resp.Suggestions == nil {
		t.Error("suggestions should encode as an empty array, not null")
	}
}
