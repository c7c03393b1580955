package engine

import (
	"sort"
	"time"

	"github.com/driftline/driftline/internal/ranking"
)

// Feed assembly constraints.
const (
	// feedScoreThreshold is the sole relevance gate: posts scoring at or
	// below it are dropped from every feed mode. A bare post with no
	// following, interest, engagement, or recency contribution is excluded
	// from ranked feeds by design.
	feedScoreThreshold = 0.1

	// maxPostsPerAuthor caps how many posts a single author may occupy in
	// one feed output, preventing a prolific or highly-scored author from
	// dominating a page.
	maxPostsPerAuthor = 3
)

// GenerateFeed filters, scores, sorts, and diversifies a candidate post set
// for one viewer, returning the final ordered feed.
//
// FeedFollowing restricts candidates to authors the viewer follows;
// FeedForYou (and any unrecognized type) excludes the viewer's own posts.
// Posts scoring at or below the relevance threshold are dropped. The sort
// is stable: ties preserve input relative order, so callers that supply
// posts newest-first get a recency tie-break for free.
//
// The viewer's similar-user pool is computed once from allUsers and shared
// across all posts. Pagination is the caller's responsibility; the full
// ranked set for the candidate window is returned.
func GenerateFeed(viewer Viewer, posts []CandidatePost, allUsers []CandidateUser, feedType FeedType, now time.Time, weights *ranking.Weights) []RankedPost {
	if weights == nil {
		weights = ranking.DefaultWeights()
	}

	s := newScorer(viewer, similarAuthorSet(viewer, allUsers, weights), now, weights)

	ranked := make([]RankedPost, 0, len(posts))
	for _, post := range posts {
		if feedType == FeedFollowing {
			if _, ok := s.following[post.AuthorID]; !ok {
				continue
			}
		} else if post.AuthorID == viewer.ID {
			continue
		}

		score := s.scorePost(post)
		if score.Value <= feedScoreThreshold {
			continue
		}
		ranked = append(ranked, RankedPost{Post: post, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Value > ranked[j].Score.Value
	})

	return diversifyByAuthor(ranked)
}

// diversifyByAuthor enforces the per-author quota in a single pass,
// preserving relative score order and dropping (never reordering) any post
// that would exceed its author's quota.
func diversifyByAuthor(ranked []RankedPost) []RankedPost {
	counts := make(map[string]int, len(ranked))
	out := make([]RankedPost, 0, len(ranked))
	for _, rp := range ranked {
		if counts[rp.Post.AuthorID] >= maxPostsPerAuthor {
			continue
		}
		counts[rp.Post.AuthorID]++
		out = append(out, rp)
	}
	return out
}
