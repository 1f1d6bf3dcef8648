package brain

import "strings"

// Conversation moods.
const (
	MoodNeutral   = "neutral"
	MoodHappy     = "happy"
	MoodConcerned = "concerned"
)

var positiveWords = map[string]struct{}{
	"happy": {}, "great": {}, "awesome": {}, "amazing": {},
	"love": {}, "wonderful": {}, "excellent": {}, "thanks": {},
}

var negativeWords = map[string]struct{}{
	"sad": {}, "bad": {}, "terrible": {}, "awful": {},
	"hate": {}, "angry": {}, "tired": {}, "frustrated": {},
}

// AnalyzeSentiment classifies user input into a conversation mood using
// a simple word-list count. A mood shift requires the dominant polarity
// to lead by more than one word, so single stray words don't flip it.
func AnalyzeSentiment(text string) string {
	var pos, neg int
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?\"'")
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}

	switch {
	case pos > neg+1:
		return MoodHappy
	case neg > pos+1:
		return MoodConcerned
	default:
		return MoodNeutral
	}
}
