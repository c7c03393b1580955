package engine

import (
	"sort"
	"time"

	"github.com/driftline/driftline/internal/ranking"
)

// Trend detection constraints.
const (
	// trendingLimit is how many trending posts are returned.
	trendingLimit = 20

	// minVelocityAgeHours floors the age in the velocity denominator so a
	// post seconds old does not blow the division up.
	minVelocityAgeHours = 0.5
)

// DefaultTrendingWindow is the lookback window used when the caller does
// not specify one.
const DefaultTrendingWindow = 24 * time.Hour

// TrendingPosts computes a time-decayed engagement velocity for posts
// created within the window and returns the top posts by velocity,
// descending. The result is independent of any viewer and purely reflects
// global engagement momentum.
//
// Velocity is the weighted interaction count divided by the post's age in
// hours, floored at half an hour. A non-positive window falls back to
// DefaultTrendingWindow.
func TrendingPosts(posts []CandidatePost, window time.Duration, now time.Time, weights *ranking.Weights) []TrendingPost {
	if weights == nil {
		weights = ranking.DefaultWeights()
	}
	if window <= 0 {
		window = DefaultTrendingWindow
	}
	cutoff := now.Add(-window)

	trending := make([]TrendingPost, 0, len(posts))
	for _, post := range posts {
		if post.CreatedAt.Before(cutoff) {
			continue
		}

		ageHours := now.Sub(post.CreatedAt).Hours()
		if ageHours < minVelocityAgeHours {
			ageHours = minVelocityAgeHours
		}

		weighted := weights.Trend.Like*float64(post.LikeCount) +
			weights.Trend.Comment*float64(post.CommentCount) +
			weights.Trend.Bookmark*float64(post.BookmarkCount)

		trending = append(trending, TrendingPost{
			Post:     post,
			Velocity: weighted / ageHours,
		})
	}

	sort.SliceStable(trending, func(i, j int) bool {
		return trending[i].Velocity > trending[j].Velocity
	})
	if len(trending) > trendingLimit {
		trending = trending[:trendingLimit]
	}
	return trending
}
