package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/driftline/driftline/internal/ranking"
)

// Scoring thresholds and multipliers. These are part of the algorithm's
// contract rather than calibratable weights: reason emission gates, signal
// saturation points, and self-interaction dampening.
const (
	// interestReasonThreshold is the minimum raw Jaccard similarity for an
	// interest-overlap reason to be emitted.
	interestReasonThreshold = 0.2

	// engagementSaturation is the weighted-engagement value at which the
	// engagement signal reaches its cap.
	engagementSaturation = 100.0

	// engagementReasonThreshold is the minimum unscaled engagement ratio
	// for an engagement reason to be emitted.
	engagementReasonThreshold = 0.3

	// socialProofSaturation is the author follower count at which the
	// social-proof signal reaches its cap.
	socialProofSaturation = 1000.0

	// socialProofReasonThreshold is the minimum social-proof contribution
	// for a reason to be emitted.
	socialProofReasonThreshold = 0.05

	// recencyDecayHours is the age at which the recency signal decays to
	// zero.
	recencyDecayHours = 48.0

	// freshCalloutHours is the narrower window in which a "Recently posted"
	// reason is emitted; the score contribution itself decays more
	// gradually.
	freshCalloutHours = 2.0

	// likedDampening multiplies the total score when the viewer already
	// liked the post; bookmarkedDampening applies when the viewer
	// bookmarked but did not like it. Already-seen content is suppressed
	// without being fully zeroed.
	likedDampening      = 0.3
	bookmarkedDampening = 0.5

	// maxScoreReasons bounds the reasons returned per score.
	maxScoreReasons = 2

	// similarUserPoolSize is how many top similar users form the
	// similar-author pool for the similar-user signal.
	similarUserPoolSize = 20

	// maxInterestReasonTerms bounds how many matching interest terms are
	// named in an interest reason.
	maxInterestReasonTerms = 2
)

// scorer holds the per-request state shared across one ranking pass:
// the viewer, the precomputed following and similar-author sets, the
// reference time, and the weight configuration. Precomputing the
// similar-author pool once per pass keeps feed generation linear in the
// candidate set instead of recomputing user similarity per post.
type scorer struct {
	viewer         Viewer
	following      map[string]struct{}
	similarAuthors map[string]struct{}
	now            time.Time
	weights        *ranking.Weights
}

// newScorer builds the shared scoring state for one ranking pass.
func newScorer(viewer Viewer, similarAuthors map[string]struct{}, now time.Time, weights *ranking.Weights) *scorer {
	if weights == nil {
		weights = ranking.DefaultWeights()
	}
	return &scorer{
		viewer:         viewer,
		following:      idSet(viewer.FollowingIDs),
		similarAuthors: similarAuthors,
		now:            now,
		weights:        weights,
	}
}

// similarAuthorSet computes the viewer's top similar users from the full
// candidate pool and returns their IDs as a set.
func similarAuthorSet(viewer Viewer, users []CandidateUser, weights *ranking.Weights) map[string]struct{} {
	similar := FindSimilarUsers(viewer, users, similarUserPoolSize, weights)
	set := make(map[string]struct{}, len(similar))
	for _, s := range similar {
		set[s.UserID] = struct{}{}
	}
	return set
}

// ScorePost computes the relevance score and reasons for a single post
// relative to one viewer. allUsers is the candidate user pool used to
// derive the viewer's similar-user set; now is the reference time for age
// calculations.
//
// When scoring many posts for the same viewer, prefer GenerateFeed, which
// computes the similar-user pool once and shares it across all posts.
func ScorePost(post CandidatePost, viewer Viewer, allUsers []CandidateUser, now time.Time, weights *ranking.Weights) FeedScore {
	if weights == nil {
		weights = ranking.DefaultWeights()
	}
	s := newScorer(viewer, similarAuthorSet(viewer, allUsers, weights), now, weights)
	return s.scorePost(post)
}

// scorePost accumulates the weighted signal sum for one post.
func (s *scorer) scorePost(post CandidatePost) FeedScore {
	// Verified authors short-circuit to a flat score an order of magnitude
	// above every other signal combination, so verified content always
	// outranks unverified content.
	if post.AuthorVerified {
		return FeedScore{
			Value: s.weights.Post.Verified,
			Reasons: []ScoreReason{
				{Kind: ReasonFollower, Description: "Verified creator", Weight: 1},
			},
		}
	}

	var score float64
	var reasons []ScoreReason

	// Following signal.
	if _, ok := s.following[post.AuthorID]; ok {
		score += s.weights.Post.Following
		reasons = append(reasons, ScoreReason{
			Kind:        ReasonFollower,
			Description: "From someone you follow",
			Weight:      s.weights.Post.Following,
		})
	}

	// Interest-overlap signal.
	topics := ExtractTopics(post.Content)
	similarity := JaccardSimilarity(s.viewer.Interests, topics)
	if similarity > 0 {
		contribution := similarity * s.weights.Post.Interest
		score += contribution
		if similarity > interestReasonThreshold {
			if matched := matchingInterests(s.viewer.Interests, topics); len(matched) > 0 {
				reasons = append(reasons, ScoreReason{
					Kind:        ReasonInterest,
					Description: "Matches your interests: " + strings.Join(matched, ", "),
					Weight:      contribution,
				})
			}
		}
	}

	// Engagement signal. Comments and bookmarks weigh more than likes
	// because they represent higher-effort interactions.
	weighted := 2*float64(post.LikeCount) + 3*float64(post.CommentCount) + 4*float64(post.BookmarkCount)
	ratio := weighted / engagementSaturation
	if ratio > 1 {
		ratio = 1
	}
	if ratio > 0 {
		contribution := ratio * s.weights.Post.Engagement
		score += contribution
		if ratio > engagementReasonThreshold {
			reasons = append(reasons, ScoreReason{
				Kind:        ReasonEngagement,
				Description: "Getting a lot of engagement",
				Weight:      contribution,
			})
		}
	}

	// Social-proof signal.
	prominence := float64(post.AuthorFollowerCount) / socialProofSaturation
	if prominence > 1 {
		prominence = 1
	}
	if prominence > 0 {
		contribution := prominence * s.weights.Post.SocialProof
		score += contribution
		if contribution > socialProofReasonThreshold {
			reasons = append(reasons, ScoreReason{
				Kind:        ReasonTrending,
				Description: "From a widely followed creator",
				Weight:      contribution,
			})
		}
	}

	// Recency signal: linear decay to zero over 48 hours.
	ageHours := s.now.Sub(post.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	freshness := 1 - ageHours/recencyDecayHours
	if freshness > 0 {
		contribution := freshness * s.weights.Post.Recency
		score += contribution
		if ageHours < freshCalloutHours {
			reasons = append(reasons, ScoreReason{
				Kind:        ReasonTrending,
				Description: "Recently posted",
				Weight:      contribution,
			})
		}
	}

	// Similar-user signal.
	if _, ok := s.similarAuthors[post.AuthorID]; ok {
		score += s.weights.Post.SimilarUser
		reasons = append(reasons, ScoreReason{
			Kind:        ReasonSimilarUsers,
			Description: "From a creator similar to people you follow",
			Weight:      s.weights.Post.SimilarUser,
		})
	}

	// Self-interaction dampening: suppress content the viewer already
	// engaged with without fully zeroing it.
	if post.LikedByViewer {
		score *= likedDampening
	} else if post.BookmarkedByViewer {
		score *= bookmarkedDampening
	}

	return FeedScore{
		Value:   score,
		Reasons: topReasons(reasons),
	}
}

// matchingInterests returns up to maxInterestReasonTerms viewer interests
// that substring-match any extracted topic, case-insensitively, in the
// viewer's stated order.
func matchingInterests(interests []string, topics []string) []string {
	var matched []string
	for _, interest := range interests {
		lower := strings.ToLower(strings.TrimSpace(interest))
		if lower == "" {
			continue
		}
		for _, topic := range topics {
			if strings.Contains(topic, lower) || strings.Contains(lower, topic) {
				matched = append(matched, strings.TrimSpace(interest))
				break
			}
		}
		if len(matched) >= maxInterestReasonTerms {
			break
		}
	}
	return matched
}

// topReasons sorts reasons by descending weight (stable, so signal order
// breaks ties) and truncates to maxScoreReasons.
func topReasons(reasons []ScoreReason) []ScoreReason {
	sort.SliceStable(reasons, func(i, j int) bool {
		return reasons[i].Weight > reasons[j].Weight
	})
	if len(reasons) > maxScoreReasons {
		reasons = reasons[:maxScoreReasons]
	}
	return reasons
}

// String renders a reason for logs and debugging.
func (r ScoreReason) String() string {
	return fmt.Sprintf("%s(%.3f): %s", r.Kind, r.Weight, r.Description)
}
