package ranking

// PostWeights defines the per-signal weight caps for post scoring.
// Each signal contributes at most its listed weight to the final score.
type PostWeights struct {
	Following   float64 `json:"following"`    // Viewer follows the author (default: 0.4)
	Interest    float64 `json:"interest"`     // Interest/topic Jaccard overlap (default: 0.25)
	Engagement  float64 `json:"engagement"`   // Weighted engagement counters (default: 0.2)
	SocialProof float64 `json:"social_proof"` // Author follower count (default: 0.15)
	Recency     float64 `json:"recency"`      // Linear age decay over 48h (default: 0.1)
	SimilarUser float64 `json:"similar_user"` // Author in viewer's similar-user pool (default: 0.1)

	// Verified is the flat score returned for verified authors. It sits an
	// order of magnitude above all other scores so that verified content
	// always outranks unverified content — an editorial policy, not a
	// tie-break. (default: 10)
	Verified float64 `json:"verified"`
}

// SuggestWeights defines the weights for "who to follow" suggestion scoring.
type SuggestWeights struct {
	MutualCap float64 `json:"mutual_cap"` // Cap on the mutual-connections component (default: 0.4)
	Interest  float64 `json:"interest"`   // Interest-list Jaccard similarity (default: 0.3)
	Network   float64 `json:"network"`    // Following-set Jaccard similarity (default: 0.3)
}

// TrendWeights defines the per-interaction weights in the trending
// velocity numerator. Comments and bookmarks are weighted above likes
// because they represent higher-effort interactions.
type TrendWeights struct {
	Like     float64 `json:"like"`     // default: 2
	Comment  float64 `json:"comment"`  // default: 3
	Bookmark float64 `json:"bookmark"` // default: 5
}

// Weights holds all ranking weight configurations.
type Weights struct {
	Post    PostWeights    `json:"post"`
	Suggest SuggestWeights `json:"suggest"`
	Trend   TrendWeights   `json:"trend"`
}

// DefaultWeights returns the default ranking weight configuration.
//
// Post formula (unverified authors):
//
//	score = following*0.4 + interestJaccard*0.25 + engagementRatio*0.2
//	      + socialProof*0.15 + recency*0.1 + similarUser*0.1
//
// followed by self-interaction dampening, giving an effective range of
// roughly [0, 1.2]. Verified authors short-circuit to the flat 10.
//
// Suggestion formula:
//
//	score = min(mutuals*0.1, 0.4) + interestJaccard*0.3 + networkJaccard*0.3
//
// Trending velocity:
//
//	velocity = (2*likes + 3*comments + 5*bookmarks) / max(ageHours, 0.5)
func DefaultWeights() *Weights {
	return &Weights{
		Post: PostWeights{
			Following:   0.4,
			Interest:    0.25,
			Engagement:  0.2,
			SocialProof: 0.15,
			Recency:     0.1,
			SimilarUser: 0.1,
			Verified:    10,
		},
		Suggest: SuggestWeights{
			MutualCap: 0.4,
			Interest:  0.3,
			Network:   0.3,
		},
		Trend: TrendWeights{
			Like:     2,
			Comment:  3,
			Bookmark: 5,
		},
	}
}
