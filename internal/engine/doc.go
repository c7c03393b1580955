// Package engine implements the feed ranking and personalization engine:
// multi-factor post scoring, feed assembly with author diversification,
// "who to follow" user similarity scoring, and trend detection.
//
// The engine is a pure library boundary. Every exported function is a
// synchronous transformation of caller-owned snapshots into fresh value
// objects: it performs no I/O, holds no shared mutable state, and never
// mutates its inputs. Concurrent invocations are safe without locking.
//
// Basic Usage:
//
//	// Load calibrated weights once at startup (nil uses defaults)
//	weights, err := ranking.LoadCalibration("configs/ranking.calibration.json")
//	if err != nil {
//		slog.Warn("using default ranking weights", "error", err)
//	}
//
//	// Rank a personalized feed for one viewer
//	ranked := engine.GenerateFeed(viewer, posts, users, engine.FeedForYou, time.Now(), weights)
//
//	// Suggest accounts to follow
//	suggested := engine.FindSimilarUsers(viewer, users, 10, weights)
//
//	// Surface globally trending posts
//	trending := engine.TrendingPosts(posts, engine.DefaultTrendingWindow, time.Now(), weights)
//
// Determinism:
//
// The current time is always an explicit parameter so that age and recency
// calculations are reproducible in tests. For identical inputs (regardless
// of input ordering where sets are concerned) the engine produces identical
// outputs.
//
// Input bounding:
//
// The engine performs no internal limiting of candidate set sizes; callers
// are responsible for passing bounded windows (the HTTP layer caps posts at
// 200 and suggestion candidates at 100). Cost is linear in the candidate set
// because the similar-user pool is computed once per ranking pass and shared
// across all posts.
package engine
