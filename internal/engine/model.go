package engine

import "time"

// FeedType selects the candidate filtering mode for feed generation.
type FeedType string

// Supported feed types.
const (
	// FeedForYou ranks all candidates except the viewer's own posts.
	FeedForYou FeedType = "for_you"

	// FeedFollowing restricts candidates to authors the viewer follows.
	FeedFollowing FeedType = "following"
)

// ValidFeedType reports whether t is a recognized feed type.
func ValidFeedType(t FeedType) bool {
	return t == FeedForYou || t == FeedFollowing
}

// Viewer is the requesting user's profile and social graph snapshot.
// Loaded fresh per request by the caller; never mutated by the engine.
type Viewer struct {
	ID           string   `json:"id"`
	Interests    []string `json:"interests"`
	FollowingIDs []string `json:"following_ids"`
	FollowerIDs  []string `json:"follower_ids"`
}

// CandidatePost is an immutable scoring input describing one post together
// with its author's standing and the viewer's own interaction flags.
type CandidatePost struct {
	ID                  string    `json:"id"`
	AuthorID            string    `json:"author_id"`
	Content             string    `json:"content"`
	CreatedAt           time.Time `json:"created_at"`
	LikeCount           int       `json:"like_count"`
	CommentCount        int       `json:"comment_count"`
	BookmarkCount       int       `json:"bookmark_count"`
	AuthorVerified      bool      `json:"author_verified"`
	AuthorFollowerCount int       `json:"author_follower_count"`
	LikedByViewer       bool      `json:"liked_by_viewer"`
	BookmarkedByViewer  bool      `json:"bookmarked_by_viewer"`
}

// CandidateUser is an immutable input for follow suggestions.
type CandidateUser struct {
	ID           string   `json:"id"`
	Interests    []string `json:"interests"`
	FollowerIDs  []string `json:"follower_ids"`
	FollowingIDs []string `json:"following_ids"`
	Bio          string   `json:"bio"`
}

// ReasonKind tags the signal family that produced a score reason.
type ReasonKind string

// Reason kind tags.
const (
	ReasonInterest     ReasonKind = "interest"
	ReasonFollower     ReasonKind = "follower"
	ReasonEngagement   ReasonKind = "engagement"
	ReasonTrending     ReasonKind = "trending"
	ReasonSimilarUsers ReasonKind = "similar_users"
)

// ScoreReason is a human-readable explanation of one scoring signal
// together with the weight that signal contributed.
type ScoreReason struct {
	Kind        ReasonKind `json:"kind"`
	Description string     `json:"description"`
	Weight      float64    `json:"weight"`
}

// FeedScore is the relevance score for a single (post, viewer) pair.
// Reasons are sorted by descending weight and truncated to two entries.
// A FeedScore is produced fresh per ranking pass and never cached.
type FeedScore struct {
	Value   float64       `json:"value"`
	Reasons []ScoreReason `json:"reasons"`
}

// RankedPost pairs a candidate post with its computed score in final
// feed order.
type RankedPost struct {
	Post  CandidatePost `json:"post"`
	Score FeedScore     `json:"score"`
}

// SuggestedUser is one ranked "who to follow" suggestion.
type SuggestedUser struct {
	UserID          string   `json:"user_id"`
	Score           float64  `json:"score"`
	MutualFollowers int      `json:"mutual_followers"`
	CommonInterests []string `json:"common_interests"`
	Reasons         []string `json:"reasons"`
}

// TrendingPost pairs a post with its engagement velocity.
type TrendingPost struct {
	Post     CandidatePost `json:"post"`
	Velocity float64       `json:"velocity"`
}

// idSet builds a membership set from a slice of IDs. IDs are matched
// exactly; unlike interest terms they are not case-normalized.
func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}
