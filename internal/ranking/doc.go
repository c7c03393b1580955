// Package ranking defines the weight configuration used by the feed
// ranking and personalization engine, with calibration support.
//
// The engine's scoring formulas are fixed; the weights that each signal
// contributes are constants by default but can be tuned at deploy time via
// a JSON calibration file loaded once at startup. This enables A/B testing
// and weight experiments without code changes (a restart is required to
// pick up new configuration).
//
// Basic Usage:
//
//	weights, err := ranking.LoadCalibration("configs/ranking.calibration.json")
//	if err != nil {
//		slog.Warn("using default ranking weights", "error", err)
//	}
//	ranked := engine.GenerateFeed(viewer, posts, users, engine.FeedForYou, time.Now(), weights)
//
// Partial calibration files are merged with defaults: only non-zero values
// override, so a file may tune a single weight and leave the rest alone.
package ranking
