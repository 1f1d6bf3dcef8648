package brain

import "strings"

// ParseReply splits a "[THOUGHTS: ...][RESPONSE: ...]" formatted reply
// into its parts. Thoughts go to the debug log; only the response is
// shown and spoken. A reply that doesn't follow the format is returned
// as-is with empty thoughts.
func ParseReply(raw string) (thoughts, response string) {
	raw = strings.TrimSpace(raw)

	tIdx := strings.Index(raw, "[THOUGHTS:")
	rIdx := strings.Index(raw, "[RESPONSE:")
	if tIdx < 0 || rIdx < 0 {
		return "", raw
	}

	thoughtsPart := raw[tIdx+len("[THOUGHTS:"):]
	if end := strings.Index(thoughtsPart, "]"); end >= 0 {
		thoughts = strings.TrimSpace(thoughtsPart[:end])
	}

	response = strings.TrimSpace(raw[rIdx+len("[RESPONSE:"):])
	response = strings.TrimSuffix(response, "]")
	response = strings.TrimSpace(response)

	if response == "" {
		return thoughts, raw
	}
	return thoughts, response
}
