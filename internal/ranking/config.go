package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight overrides
}

// LoadCalibration loads ranking weights from a JSON calibration file.
//
// An empty path returns defaults with no error. If the file cannot be read
// or parsed, defaults are returned together with the error so callers can
// degrade gracefully while still surfacing the problem. Partial
// configurations are merged with defaults: only non-zero values override.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights into base weights. Only non-zero
// values from the override are applied, allowing partial calibration files.
// Returns a new Weights struct; neither input is mutated.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}

	result := *base
	if override == nil {
		return &result
	}

	mergeNonZero := func(dst *float64, src float64) {
		if src != 0 {
			*dst = src
		}
	}

	mergeNonZero(&result.Post.Following, override.Post.Following)
	mergeNonZero(&result.Post.Interest, override.Post.Interest)
	mergeNonZero(&result.Post.Engagement, override.Post.Engagement)
	mergeNonZero(&result.Post.SocialProof, override.Post.SocialProof)
	mergeNonZero(&result.Post.Recency, override.Post.Recency)
	mergeNonZero(&result.Post.SimilarUser, override.Post.SimilarUser)
	mergeNonZero(&result.Post.Verified, override.Post.Verified)

	mergeNonZero(&result.Suggest.MutualCap, override.Suggest.MutualCap)
	mergeNonZero(&result.Suggest.Interest, override.Suggest.Interest)
	mergeNonZero(&result.Suggest.Network, override.Suggest.Network)

	mergeNonZero(&result.Trend.Like, override.Trend.Like)
	mergeNonZero(&result.Trend.Comment, override.Trend.Comment)
	mergeNonZero(&result.Trend.Bookmark, override.Trend.Bookmark)

	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string
	record := func(name string, def, cur float64) {
		if cur != def {
			overrides = append(overrides, fmt.Sprintf("%s: %.2f -> %.2f", name, def, cur))
		}
	}

	record("post.following", defaults.Post.Following, loaded.Post.Following)
	record("post.interest", defaults.Post.Interest, loaded.Post.Interest)
	record("post.engagement", defaults.Post.Engagement, loaded.Post.Engagement)
	record("post.social_proof", defaults.Post.SocialProof, loaded.Post.SocialProof)
	record("post.recency", defaults.Post.Recency, loaded.Post.Recency)
	record("post.similar_user", defaults.Post.SimilarUser, loaded.Post.SimilarUser)
	record("post.verified", defaults.Post.Verified, loaded.Post.Verified)
	record("suggest.mutual_cap", defaults.Suggest.MutualCap, loaded.Suggest.MutualCap)
	record("suggest.interest", defaults.Suggest.Interest, loaded.Suggest.Interest)
	record("suggest.network", defaults.Suggest.Network, loaded.Suggest.Network)
	record("trend.like", defaults.Trend.Like, loaded.Trend.Like)
	record("trend.comment", defaults.Trend.Comment, loaded.Trend.Comment)
	record("trend.bookmark", defaults.Trend.Bookmark, loaded.Trend.Bookmark)

	if len(overrides) > 0 {
		slog.Info("loaded ranking calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded ranking calibration (using all defaults)")
	}
}
