package engine

import (
	"regexp"
	"strings"
	"unicode"
)

// hashtagPattern matches hashtag tokens in lowercased content.
var hashtagPattern = regexp.MustCompile(`#([a-z0-9_]+)`)

// topicStopWords are common words excluded from free-word topic extraction.
var topicStopWords = map[string]struct{}{
	"about": {},
	"their": {},
	"there": {},
	"where": {},
	"these": {},
	"those": {},
}

// Topic extraction limits.
const (
	// maxFreeWordTopics caps how many non-hashtag words qualify as topics,
	// taken in document order.
	maxFreeWordTopics = 5

	// minTopicWordLength is the exclusive lower bound on free-word length;
	// only words longer than 4 characters qualify.
	minTopicWordLength = 4
)

// ExtractTopics derives a lightweight topic set from a post's text content.
//
// Two sources are unioned and de-duplicated: hashtag tokens with the leading
// symbol stripped, and the first 5 qualifying free words in document order
// (longer than 4 characters, not in the stop-word list). All topics are
// lowercase. The returned slice preserves first-seen order.
//
// This is intentionally a crude keyword heuristic, not NLP. The scorer only
// requires "a set of topic strings", so the extraction strategy can be
// replaced without touching the scoring contract.
func ExtractTopics(content string) []string {
	lower := strings.ToLower(content)

	seen := make(map[string]struct{})
	var topics []string
	add := func(topic string) {
		if _, ok := seen[topic]; ok {
			return
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	}

	for _, match := range hashtagPattern.FindAllStringSubmatch(lower, -1) {
		add(match[1])
	}

	qualifying := 0
	for _, field := range strings.Fields(lower) {
		if qualifying >= maxFreeWordTopics {
			break
		}
		if strings.HasPrefix(field, "#") {
			// Hashtags are handled by the pattern pass above.
			continue
		}
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(word) <= minTopicWordLength {
			continue
		}
		if _, stop := topicStopWords[word]; stop {
			continue
		}
		qualifying++
		add(word)
	}

	return topics
}
