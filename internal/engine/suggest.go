package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/driftline/driftline/internal/ranking"
)

// Suggestion constraints.
const (
	// suggestionScoreThreshold is the relevance gate for suggestions. It is
	// a higher bar than post filtering: a weak suggestion interrupts the
	// user with an irrelevant person rather than just ranking a post lower.
	suggestionScoreThreshold = 0.15

	// mutualConnectionStep is the per-mutual-connection score increment,
	// capped by the configured mutual weight.
	mutualConnectionStep = 0.1

	// networkReasonThreshold is the minimum network-overlap similarity for
	// a "Similar network" reason.
	networkReasonThreshold = 0.2

	// bioReasonMaxLength is how many characters of a candidate's bio are
	// used as a reason.
	bioReasonMaxLength = 60

	// maxSuggestionReasons bounds the reasons per suggestion.
	maxSuggestionReasons = 2

	// maxSharedInterestReasonTerms bounds how many shared interests are
	// named in a reason.
	maxSharedInterestReasonTerms = 2
)

// FindSimilarUsers scores candidate users for "who to follow" suggestions
// and returns the top suggestions in descending score order, truncated to
// limit. The viewer and anyone already followed are excluded, as are
// candidates scoring at or below the suggestion threshold.
//
// Three signals contribute: mutual connections (candidate followers the
// viewer knows, 0.1 each up to the cap), interest-list similarity, and
// following-network overlap. An empty candidate list yields an empty
// result, never nil-dereferences or errors.
func FindSimilarUsers(viewer Viewer, candidates []CandidateUser, limit int, weights *ranking.Weights) []SuggestedUser {
	if weights == nil {
		weights = ranking.DefaultWeights()
	}

	suggestions := []SuggestedUser{}
	if limit <= 0 {
		return suggestions
	}

	following := idSet(viewer.FollowingIDs)

	// IDs the viewer knows: their followers plus everyone they follow.
	known := idSet(viewer.FollowerIDs)
	for id := range following {
		known[id] = struct{}{}
	}

	for _, candidate := range candidates {
		if candidate.ID == viewer.ID {
			continue
		}
		if _, ok := following[candidate.ID]; ok {
			continue
		}

		mutuals := 0
		for _, follower := range candidate.FollowerIDs {
			if _, ok := known[follower]; ok {
				mutuals++
			}
		}
		mutualScore := float64(mutuals) * mutualConnectionStep
		if mutualScore > weights.Suggest.MutualCap {
			mutualScore = weights.Suggest.MutualCap
		}

		interestSim := JaccardSimilarity(viewer.Interests, candidate.Interests)
		networkSim := JaccardSimilarity(viewer.FollowingIDs, candidate.FollowingIDs)

		score := mutualScore +
			interestSim*weights.Suggest.Interest +
			networkSim*weights.Suggest.Network
		if score <= suggestionScoreThreshold {
			continue
		}

		shared := sharedInterests(viewer.Interests, candidate.Interests)

		suggestions = append(suggestions, SuggestedUser{
			UserID:          candidate.ID,
			Score:           score,
			MutualFollowers: mutuals,
			CommonInterests: shared,
			Reasons:         suggestionReasons(mutuals, shared, candidate.Bio, networkSim),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// suggestionReasons builds up to maxSuggestionReasons reason strings in
// priority order: mutual connections, shared interests, bio excerpt, then
// network similarity.
func suggestionReasons(mutuals int, shared []string, bio string, networkSim float64) []string {
	reasons := make([]string, 0, maxSuggestionReasons)

	if mutuals > 0 {
		if mutuals == 1 {
			reasons = append(reasons, "Followed by 1 person you know")
		} else {
			reasons = append(reasons, fmt.Sprintf("Followed by %d people you know", mutuals))
		}
	}

	if len(shared) > 0 && len(reasons) < maxSuggestionReasons {
		named := shared
		if len(named) > maxSharedInterestReasonTerms {
			named = named[:maxSharedInterestReasonTerms]
		}
		reasons = append(reasons, "You both like "+strings.Join(named, " and "))
	}

	if bio != "" && len(reasons) < maxSuggestionReasons {
		reasons = append(reasons, truncateRunes(bio, bioReasonMaxLength))
	}

	if networkSim > networkReasonThreshold && len(reasons) < maxSuggestionReasons {
		reasons = append(reasons, "Similar network")
	}

	return reasons
}

// sharedInterests returns the case-insensitive intersection of two interest
// lists, preserving the first list's original casing and order.
func sharedInterests(a, b []string) []string {
	setB := normalizeTermSet(b)
	seen := make(map[string]struct{}, len(a))
	var shared []string
	for _, interest := range a {
		lower := strings.ToLower(strings.TrimSpace(interest))
		if lower == "" {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		if _, ok := setB[lower]; ok {
			seen[lower] = struct{}{}
			shared = append(shared, strings.TrimSpace(interest))
		}
	}
	return shared
}

// truncateRunes shortens s to at most n runes without splitting a
// multi-byte character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
