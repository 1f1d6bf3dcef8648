// Package tts — lines.go centralises every canned spoken string.
// Edit this file to change the assistant's small talk. Keep lines short;
// the voice handles inflection.
package tts

import (
	"fmt"
	"math/rand"
)

// ── Introductions / Greetings ────────────────────────────────────

// LineIntro is spoken once on the first startup.
func LineIntro(name string) string {
	return fmt.Sprintf("Hello, I'm %s, your personal assistant. How can I help you today?", name)
}

var greetings = []string{
	"Hello.",
	"Hi there.",
	"Good morning.",
	"Good afternoon.",
	"Good evening.",
}

// LineGreeting returns a random short greeting.
func LineGreeting() string {
	return greetings[rand.Intn(len(greetings))]
}

// ── Confirmations ────────────────────────────────────────────────

var confirmations = []string{
	"Okay.",
	"Sure.",
	"No problem.",
	"I understand.",
	"Got it.",
	"That's fine.",
}

// LineConfirmation returns a random acknowledgment.
func LineConfirmation() string {
	return confirmations[rand.Intn(len(confirmations))]
}

// ── Listening acknowledgment ─────────────────────────────────────
// Spoken when recording starts, so the user knows to talk.

var listeningAcks = []string{
	"I'm listening.",
	"Listening.",
	"Go ahead.",
	"I'm here.",
	"Yes?",
}

// LineListening returns a random cue that recording has started.
func LineListening() string {
	return listeningAcks[rand.Intn(len(listeningAcks))]
}

// ── Clarifications ───────────────────────────────────────────────
// Spoken when a recording produced nothing usable.

var clarifications = []string{
	"I need a bit more information.",
	"Could you please say that again?",
	"I didn't fully catch that.",
	"Let's try that once more.",
}

// LineClarification returns a random request to repeat.
func LineClarification() string {
	return clarifications[rand.Intn(len(clarifications))]
}

// LineNoSpeech is spoken when the microphone heard only silence.
func LineNoSpeech() string {
	return "I didn't hear anything."
}

// ── Errors ───────────────────────────────────────────────────────

var troubleLines = []string{
	"Something went wrong. Try again.",
	"I'm having trouble with that right now.",
	"That didn't work. Give it another go.",
}

// LineTrouble returns a random generic failure line.
func LineTrouble() string {
	return troubleLines[rand.Intn(len(troubleLines))]
}

// ── Farewells ────────────────────────────────────────────────────
// Spoken on quit.

var farewells = []string{
	"Goodbye.",
	"Take care.",
	"Bye.",
	"See you soon.",
}

// LineFarewell returns a random parting line.
func LineFarewell() string {
	return farewells[rand.Intn(len(farewells))]
}

// ── Prefetch ─────────────────────────────────────────────────────

// CannedLines returns every fixed line so the speaker can pre-warm the
// audio cache at startup. Template lines (LineIntro) are excluded.
func CannedLines() []string {
	var out []string
	out = append(out, greetings...)
	out = append(out, confirmations...)
	out = append(out, listeningAcks...)
	out = append(out, clarifications...)
	out = append(out, troubleLines...)
	out = append(out, farewells...)
	out = append(out, LineNoSpeech())
	return out
}
