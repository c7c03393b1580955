package ranking

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultWeights tests that the default configuration carries the
// documented constants.
func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"post.following", w.Post.Following, 0.4},
		{"post.interest", w.Post.Interest, 0.25},
		{"post.engagement", w.Post.Engagement, 0.2},
		{"post.social_proof", w.Post.SocialProof, 0.15},
		{"post.recency", w.Post.Recency, 0.1},
		{"post.similar_user", w.Post.SimilarUser, 0.1},
		{"post.verified", w.Post.Verified, 10},
		{"suggest.mutual_cap", w.Suggest.MutualCap, 0.4},
		{"suggest.interest", w.Suggest.Interest, 0.3},
		{"suggest.network", w.Suggest.Network, 0.3},
		{"trend.like", w.Trend.Like, 2},
		{"trend.comment", w.Trend.Comment, 3},
		{"trend.bookmark", w.Trend.Bookmark, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.expected) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.expected, tt.got)
			}
		})
	}
}

// TestDefaultWeightsReturnsFreshCopy tests that mutating a returned value
// does not leak into subsequent calls.
func TestDefaultWeightsReturnsFreshCopy(t *testing.T) {
	first := DefaultWeights()
	first.Post.Following = 99

	second := DefaultWeights()
	if second.Post.Following != 0.4 {
		t.Errorf("defaults were mutated: %f", second.Post.Following)
	}
}

// TestLoadCalibrationEmptyPath tests that an empty path returns defaults
// without an error.
func TestLoadCalibrationEmptyPath(t *testing.T) {
	w, err := LoadCalibration("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Post.Following != 0.4 {
		t.Errorf("expected defaults, got %+v", w.Post)
	}
}

// TestLoadCalibrationMissingFile tests graceful degradation to defaults
// while still surfacing the error.
func TestLoadCalibrationMissingFile(t *testing.T) {
	w, err := LoadCalibration(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Error("expected an error for a missing file")
	}
	if w == nil || w.Post.Following != 0.4 {
		t.Errorf("expected defaults despite the error, got %+v", w)
	}
}

// TestLoadCalibrationInvalidJSON tests graceful degradation on a corrupt
// calibration file.
func TestLoadCalibrationInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	w, err := LoadCalibration(path)
	if err == nil {
		t.Error("expected a parse error")
	}
	if w == nil || w.Suggest.Interest != 0.3 {
		t.Errorf("expected defaults despite the error, got %+v", w)
	}
}

// TestLoadCalibrationPartialOverride tests that non-zero file values
// override defaults and zero values are left alone.
func TestLoadCalibrationPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration.json")
	content := `{
		"version": "1",
		"weights": {
			"post": {"following": 0.5, "recency": 0.2},
			"trend": {"bookmark": 8}
		}
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	w, err := LoadCalibration(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.Post.Following != 0.5 {
		t.Errorf("expected following override 0.5, got %f", w.Post.Following)
	}
	if w.Post.Recency != 0.2 {
		t.Errorf("expected recency override 0.2, got %f", w.Post.Recency)
	}
	if w.Trend.Bookmark != 8 {
		t.Errorf("expected bookmark override 8, got %f", w.Trend.Bookmark)
	}

	// Untouched weights keep their defaults.
	if w.Post.Interest != 0.25 {
		t.Errorf("expected default interest 0.25, got %f", w.Post.Interest)
	}
	if w.Post.Verified != 10 {
		t.Errorf("expected default verified 10, got %f", w.Post.Verified)
	}
}

// TestMergeCalibration tests merge behavior directly.
func TestMergeCalibration(t *testing.T) {
	t.Run("nil base falls back to defaults", func(t *testing.T) {
		merged := MergeCalibration(nil, &Weights{})
		if merged.Post.Following != 0.4 {
			t.Errorf("expected defaults, got %+v", merged.Post)
		}
	})

	t.Run("nil override copies base", func(t *testing.T) {
		base := DefaultWeights()
		merged := MergeCalibration(base, nil)
		if merged == base {
			t.Error("expected a copy, got the same pointer")
		}
		if merged.Post.Following != base.Post.Following {
			t.Errorf("copy diverged from base: %f", merged.Post.Following)
		}
	})

	t.Run("base is not mutated by merge", func(t *testing.T) {
		base := DefaultWeights()
		override := &Weights{}
		override.Post.Following = 0.9

		merged := MergeCalibration(base, override)
		if base.Post.Following != 0.4 {
			t.Errorf("base mutated: %f", base.Post.Following)
		}
		if merged.Post.Following != 0.9 {
			t.Errorf("override not applied: %f", merged.Post.Following)
		}
	})
}
