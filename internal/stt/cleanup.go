package stt

import (
	"regexp"
	"strings"
)

// envAnnotation matches whisper environmental annotations like
// "(keyboard clicking)", "[laughter]", "(speaking French)", etc.
var envAnnotation = regexp.MustCompile(`[\(\[][a-zA-Z][a-zA-Z\s]*[\)\]]`)

// Junk markers whisper emits for non-speech audio, stripped from
// anywhere in the text.
var junkPatterns = []string{
	"[BLANK_AUDIO]",
	"[BLANK AUDIO]",
	"(silence)",
	"[silence]",
	"(no speech)",
	"[no speech]",
	"[Music]",
	"(music)",
	"(typing)",
	"(clicking)",
	"(breathing)",
	"(coughing)",
	"(laughing)",
	"(static)",
	"(background noise)",
	"(inaudible)",
	"(unintelligible)",
}

// Known whisper hallucinations on silent or noisy input. When the whole
// cleaned text is one of these, the transcription is treated as empty.
var hallucinations = []string{
	"...",
	"you",
	"Thank you.",
	"Thanks for watching!",
	"Thank you for watching.",
	"Bye.",
	"Bye!",
	"The end.",
}

// CleanTranscription strips whitespace, newlines, and whisper artifacts
// from a raw transcription. Returns "" when nothing intelligible remains.
func CleanTranscription(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)

	for _, j := range junkPatterns {
		s = strings.ReplaceAll(s, j, "")
		s = strings.ReplaceAll(s, strings.ToLower(j), "")
		s = strings.ReplaceAll(s, strings.ToUpper(j), "")
	}

	// Catch-all for remaining (parenthesized) or [bracketed] annotations.
	s = envAnnotation.ReplaceAllString(s, "")

	s = collapseSpaces(s)

	lower := strings.ToLower(s)
	for _, h := range hallucinations {
		if strings.ToLower(h) == lower {
			return ""
		}
	}

	// Strip a whisper timestamp prefix like "[00:00:00.000 --> 00:00:05.000]".
	if strings.HasPrefix(s, "[") {
		if idx := strings.Index(s, "]"); idx != -1 && idx < 40 {
			s = strings.TrimSpace(s[idx+1:])
		}
	}

	return s
}

func collapseSpaces(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}
