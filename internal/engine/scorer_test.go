package engine

import (
	"math"
	"testing"
	"time"
)

// scoreTestNow is the fixed reference time for scorer tests.
var scoreTestNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// basePost returns a post with no relevance signals: unfollowed unverified
// author, no engagement, no follower base, older than the recency decay.
func basePost() CandidatePost {
	return CandidatePost{
		ID:        "post1",
		AuthorID:  "author1",
		Content:   "hi",
		CreatedAt: scoreTestNow.Add(-72 * time.Hour),
	}
}

// baseViewer returns a viewer with no graph or interests.
func baseViewer() Viewer {
	return Viewer{ID: "viewer1"}
}

// TestScorePostVerifiedShortCircuit tests that verified authors always
// score the flat verified value regardless of every other field.
func TestScorePostVerifiedShortCircuit(t *testing.T) {
	tests := []struct {
		name string
		post CandidatePost
	}{
		{
			name: "verified with no other signals",
			post: CandidatePost{
				ID:             "p1",
				AuthorID:       "a1",
				AuthorVerified: true,
				CreatedAt:      scoreTestNow.Add(-100 * time.Hour),
			},
		},
		{
			name: "verified with heavy engagement",
			post: CandidatePost{
				ID:                  "p2",
				AuthorID:            "a2",
				AuthorVerified:      true,
				LikeCount:           5000,
				CommentCount:        900,
				BookmarkCount:       400,
				AuthorFollowerCount: 100000,
				CreatedAt:           scoreTestNow.Add(-time.Minute),
			},
		},
		{
			name: "verified and already liked by viewer",
			post: CandidatePost{
				ID:             "p3",
				AuthorID:       "a3",
				AuthorVerified: true,
				LikedByViewer:  true,
				CreatedAt:      scoreTestNow,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScorePost(tt.post, baseViewer(), nil, scoreTestNow, nil)
			if score.Value != 10 {
				t.Errorf("expected flat score 10, got %f", score.Value)
			}
			if len(score.Reasons) != 1 {
				t.Fatalf("expected exactly 1 reason, got %d", len(score.Reasons))
			}
			r := score.Reasons[0]
			if r.Kind != ReasonFollower || r.Description != "Verified creator" || r.Weight != 1 {
				t.Errorf("unexpected verified reason: %+v", r)
			}
		})
	}
}

// TestScorePostNoSignals tests that a post with zero signals scores zero.
func TestScorePostNoSignals(t *testing.T) {
	score := ScorePost(basePost(), baseViewer(), nil, scoreTestNow, nil)
	if score.Value != 0 {
		t.Errorf("expected 0 for signal-free post, got %f", score.Value)
	}
	if len(score.Reasons) != 0 {
		t.Errorf("expected no reasons, got %v", score.Reasons)
	}
}

// TestScorePostFollowingWithRecency reproduces the spec scenario: viewer
// follows the author, no other signals, age one hour.
func TestScorePostFollowingWithRecency(t *testing.T) {
	viewer := baseViewer()
	viewer.FollowingIDs = []string{"author1"}

	post := basePost()
	post.CreatedAt = scoreTestNow.Add(-time.Hour)

	score := ScorePost(post, viewer, nil, scoreTestNow, nil)

	// 0.4 following + (1 - 1/48) * 0.1 recency
	expected := 0.4 + (1-1.0/48.0)*0.1
	if math.Abs(score.Value-expected) > 1e-9 {
		t.Errorf("expected %f, got %f", expected, score.Value)
	}

	foundFollower := false
	for _, r := range score.Reasons {
		if r.Kind == ReasonFollower {
			foundFollower = true
		}
	}
	if !foundFollower {
		t.Errorf("expected a follower reason, got %v", score.Reasons)
	}
}

// TestScorePostLikedDampening tests that a liked post scores exactly 0.3x
// its unliked score, all else equal.
func TestScorePostLikedDampening(t *testing.T) {
	viewer := baseViewer()
	viewer.FollowingIDs = []string{"author1"}

	post := basePost()
	post.CreatedAt = scoreTestNow.Add(-3 * time.Hour)
	post.LikeCount = 20

	unliked := ScorePost(post, viewer, nil, scoreTestNow, nil)

	post.LikedByViewer = true
	liked := ScorePost(post, viewer, nil, scoreTestNow, nil)

	if math.Abs(liked.Value-unliked.Value*0.3) > 1e-9 {
		t.Errorf("expected liked score %f (0.3x of %f), got %f",
			unliked.Value*0.3, unliked.Value, liked.Value)
	}
}

// TestScorePostBookmarkedDampening tests the 0.5x multiplier for
// bookmarked-but-not-liked posts.
func TestScorePostBookmarkedDampening(t *testing.T) {
	viewer := baseViewer()
	viewer.FollowingIDs = []string{"author1"}

	post := basePost()
	plain := ScorePost(post, viewer, nil, scoreTestNow, nil)

	post.BookmarkedByViewer = true
	bookmarked := ScorePost(post, viewer, nil, scoreTestNow, nil)

	if math.Abs(bookmarked.Value-plain.Value*0.5) > 1e-9 {
		t.Errorf("expected bookmarked score %f, got %f", plain.Value*0.5, bookmarked.Value)
	}
}

// TestScorePostLikedTakesPrecedenceOverBookmarked tests that the liked
// multiplier wins when both flags are set.
func TestScorePostLikedTakesPrecedenceOverBookmarked(t *testing.T) {
	viewer := baseViewer()
	viewer.FollowingIDs = []string{"author1"}

	post := basePost()
	plain := ScorePost(post, viewer, nil, scoreTestNow, nil)

	post.LikedByViewer = true
	post.BookmarkedByViewer = true
	both := ScorePost(post, viewer, nil, scoreTestNow, nil)

	if math.Abs(both.Value-plain.Value*0.3) > 1e-9 {
		t.Errorf("expected liked dampening to win: want %f, got %f", plain.Value*0.3, both.Value)
	}
}

// TestScorePostEngagementSignal tests the engagement ratio, its saturation,
// and the reason emission threshold.
func TestScorePostEngagementSignal(t *testing.T) {
	tests := []struct {
		name          string
		likes         int
		comments      int
		bookmarks     int
		expectedScore float64
		expectReason  bool
	}{
		{
			name:          "zero engagement contributes nothing",
			expectedScore: 0,
			expectReason:  false,
		},
		{
			name:          "light engagement below reason threshold",
			likes:         5,
			expectedScore: (2.0 * 5 / 100) * 0.2, // ratio 0.1
			expectReason:  false,
		},
		{
			name:          "heavy engagement emits reason",
			likes:         10,
			comments:      10,
			expectedScore: (50.0 / 100) * 0.2, // ratio 0.5 > 0.3
			expectReason:  true,
		},
		{
			name:          "engagement saturates at the cap",
			likes:         1000,
			comments:      1000,
			bookmarks:     1000,
			expectedScore: 0.2, // ratio clamped to 1
			expectReason:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := basePost()
			post.LikeCount = tt.likes
			post.CommentCount = tt.comments
			post.BookmarkCount = tt.bookmarks

			score := ScorePost(post, baseViewer(), nil, scoreTestNow, nil)
			if math.Abs(score.Value-tt.expectedScore) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.expectedScore, score.Value)
			}

			hasReason := false
			for _, r := range score.Reasons {
				if r.Kind == ReasonEngagement {
					hasReason = true
				}
			}
			if hasReason != tt.expectReason {
				t.Errorf("expected reason=%t, reasons=%v", tt.expectReason, score.Reasons)
			}
		})
	}
}

// TestScorePostSocialProofSignal tests follower-count scaling and its
// saturation at 1000 followers.
func TestScorePostSocialProofSignal(t *testing.T) {
	tests := []struct {
		name          string
		followers     int
		expectedScore float64
	}{
		{name: "no followers", followers: 0, expectedScore: 0},
		{name: "mid-size author", followers: 500, expectedScore: 0.5 * 0.15},
		{name: "at saturation", followers: 1000, expectedScore: 0.15},
		{name: "beyond saturation clamps", followers: 50000, expectedScore: 0.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := basePost()
			post.AuthorFollowerCount = tt.followers

			score := ScorePost(post, baseViewer(), nil, scoreTestNow, nil)
			if math.Abs(score.Value-tt.expectedScore) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.expectedScore, score.Value)
			}
		})
	}
}

// TestScorePostInterestSignal tests interest-topic overlap scoring and the
// matched-term reason.
func TestScorePostInterestSignal(t *testing.T) {
	viewer := baseViewer()
	viewer.Interests = []string{"golang", "music"}

	post := basePost()
	post.Content = "#golang #music shipping a new release"

	score := ScorePost(post, viewer, nil, scoreTestNow, nil)

	// Topics: golang, music, shipping, release. Jaccard = 2/4.
	expected := 0.5 * 0.25
	if math.Abs(score.Value-expected) > 1e-9 {
		t.Errorf("expected %f, got %f", expected, score.Value)
	}

	if len(score.Reasons) != 1 {
		t.Fatalf("expected 1 reason, got %v", score.Reasons)
	}
	r := score.Reasons[0]
	if r.Kind != ReasonInterest {
		t.Errorf("expected interest reason, got %s", r.Kind)
	}
	if r.Description != "Matches your interests: golang, music" {
		t.Errorf("unexpected reason text: %q", r.Description)
	}
}

// TestScorePostInterestReasonThreshold tests that weak overlap contributes
// score without emitting a reason.
func TestScorePostInterestReasonThreshold(t *testing.T) {
	viewer := baseViewer()
	viewer.Interests = []string{"golang", "music", "hiking", "chess", "travel", "cooking"}

	post := basePost()
	post.Content = "#golang release notes finally published today"

	score := ScorePost(post, viewer, nil, scoreTestNow, nil)
	if score.Value <= 0 {
		t.Fatalf("expected a positive interest contribution, got %f", score.Value)
	}
	for _, r := range score.Reasons {
		if r.Kind == ReasonInterest {
			t.Errorf("expected no interest reason below the similarity threshold, got %v", r)
		}
	}
}

// TestScorePostSimilarUserSignal tests the flat bonus when the author is in
// the viewer's similar-user pool.
func TestScorePostSimilarUserSignal(t *testing.T) {
	viewer := baseViewer()
	viewer.Interests = []string{"golang", "music"}
	viewer.FollowerIDs = []string{"f1", "f2"}

	// author1 shares interests and has mutual followers, putting them in
	// the viewer's similar-user pool.
	users := []CandidateUser{
		{
			ID:          "author1",
			Interests:   []string{"golang", "music"},
			FollowerIDs: []string{"f1", "f2"},
		},
	}

	post := basePost()
	score := ScorePost(post, viewer, users, scoreTestNow, nil)

	if math.Abs(score.Value-0.1) > 1e-9 {
		t.Errorf("expected flat 0.1 similar-user bonus, got %f", score.Value)
	}
	if len(score.Reasons) != 1 || score.Reasons[0].Kind != ReasonSimilarUsers {
		t.Errorf("expected a similar_users reason, got %v", score.Reasons)
	}
}

// TestScorePostRecencyCallout tests that only posts under two hours old get
// the explicit freshness reason even though the decay spans 48 hours.
func TestScorePostRecencyCallout(t *testing.T) {
	tests := []struct {
		name         string
		age          time.Duration
		expectReason bool
	}{
		{name: "thirty minutes old", age: 30 * time.Minute, expectReason: true},
		{name: "three hours old still contributes silently", age: 3 * time.Hour, expectReason: false},
		{name: "past the decay window", age: 60 * time.Hour, expectReason: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := basePost()
			post.CreatedAt = scoreTestNow.Add(-tt.age)

			score := ScorePost(post, baseViewer(), nil, scoreTestNow, nil)

			hasReason := false
			for _, r := range score.Reasons {
				if r.Description == "Recently posted" {
					hasReason = true
				}
			}
			if hasReason != tt.expectReason {
				t.Errorf("expected freshness reason=%t, reasons=%v", tt.expectReason, score.Reasons)
			}
		})
	}
}

// TestScorePostReasonsSortedAndTruncated tests that reasons come back
// sorted by descending weight and capped at two.
func TestScorePostReasonsSortedAndTruncated(t *testing.T) {
	viewer := baseViewer()
	viewer.FollowingIDs = []string{"author1"}
	viewer.Interests = []string{"golang", "music"}

	post := basePost()
	post.Content = "#golang #music"
	post.CreatedAt = scoreTestNow.Add(-30 * time.Minute)
	post.LikeCount = 100
	post.AuthorFollowerCount = 1000

	score := ScorePost(post, viewer, nil, scoreTestNow, nil)

	if len(score.Reasons) != 2 {
		t.Fatalf("expected reasons truncated to 2, got %d", len(score.Reasons))
	}
	if score.Reasons[0].Weight < score.Reasons[1].Weight {
		t.Errorf("reasons not sorted by descending weight: %v", score.Reasons)
	}
	// Following (0.4) is the strongest signal here.
	if score.Reasons[0].Kind != ReasonFollower {
		t.Errorf("expected follower reason first, got %v", score.Reasons)
	}
}

// TestScorePostDoesNotMutateInputs verifies the scoring pass leaves the
// viewer and post untouched.
func TestScorePostDoesNotMutateInputs(t *testing.T) {
	viewer := Viewer{
		ID:           "viewer1",
		Interests:    []string{"Golang", "Music"},
		FollowingIDs: []string{"author1"},
	}
	post := CandidatePost{
		ID:        "p1",
		AuthorID:  "author1",
		Content:   "#golang news",
		CreatedAt: scoreTestNow.Add(-time.Hour),
		LikeCount: 3,
	}

	_ = ScorePost(post, viewer, nil, scoreTestNow, nil)

	if viewer.Interests[0] != "Golang" || viewer.Interests[1] != "Music" {
		t.Errorf("viewer interests mutated: %v", viewer.Interests)
	}
	if post.Content != "#golang news" || post.LikeCount != 3 {
		t.Errorf("post mutated: %+v", post)
	}
}
