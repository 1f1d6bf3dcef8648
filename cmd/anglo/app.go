package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/easimeng/anglo/internal/audio"
	"github.com/easimeng/anglo/internal/brain"
	"github.com/easimeng/anglo/internal/config"
	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
	"github.com/easimeng/anglo/internal/stt"
	"github.com/easimeng/anglo/internal/tts"
	"github.com/easimeng/anglo/internal/ui"
)

// app ties the voice pipeline to the terminal interface. Turns run one
// at a time on a background goroutine; the transcript is the only state
// shared between them.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	ui         *ui.UI
	mic        *audio.Microphone // nil when the audio device failed
	recorder   *audio.Recorder
	stt        *stt.Transcriber
	brain      *brain.Brain
	history    *brain.History
	speaker    *tts.Speaker // nil when speech is disabled
	voice      *tts.Client  // nil when speech is disabled
	cache      *tts.Cache   // nil when speech is disabled
	transcript *domain.Transcript

	mu       sync.Mutex
	busy     bool          // a turn is in flight
	turnStop chan struct{} // non-nil while recording; closing it stops the take
}

// say prints an assistant line and queues it for speech.
func (a *app) say(text string, priority tts.Priority) {
	a.ui.PrintAssistant(text)
	if a.speaker != nil {
		a.speaker.Say(text, priority)
	}
}

func (a *app) run(ctx context.Context) {
	a.ui.PrintBanner()

	// Resolve the configured voice before anything is spoken.
	if a.voice != nil {
		v, err := a.voice.ResolveVoice(ctx, a.cfg.VoiceName)
		if err != nil {
			a.log.Error("voice resolution failed: %v", err)
			a.ui.PrintError("Voice unavailable — replies will be text only.")
		} else {
			a.cache.SetVoice(v.Name)
			a.log.Info("speaking as %q (voice %s)", v.Name, v.ID)
			if a.speaker != nil {
				a.speaker.Prefetch(ctx, tts.CannedLines()...)
			}
		}
	}

	if a.history.Len() == 0 {
		a.say(tts.LineIntro(a.cfg.AssistantName), tts.PriorityNormal)
	} else {
		a.say(tts.LineGreeting(), tts.PriorityNormal)
	}
	a.ui.PrintNotice("Press Ctrl+R to talk, type to chat, /help for commands.")
	a.ui.Println("")
	a.ui.SetStatus(ui.StatusReady, "")

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.ui.QuitChan():
			return
		case input, ok := <-a.ui.InputChan():
			if !ok {
				return
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			if strings.HasPrefix(input, "/") {
				if quit := a.handleCommand(ctx, input); quit {
					return
				}
				continue
			}
			go a.typedTurn(ctx, input)
		}
	}
}

// ── Turn pipeline ────────────────────────────────────────────────

// beginTurn marks a turn in flight. Returns false when one already is.
func (a *app) beginTurn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy {
		return false
	}
	a.busy = true
	return true
}

func (a *app) endTurn() {
	a.mu.Lock()
	a.busy = false
	a.turnStop = nil
	a.mu.Unlock()
	a.ui.SetStatus(ui.StatusReady, "")
}

// toggleRecord starts a voice turn, or stops the take when one is
// already recording.
func (a *app) toggleRecord(ctx context.Context) {
	a.mu.Lock()
	if a.turnStop != nil {
		close(a.turnStop)
		a.turnStop = nil
		a.mu.Unlock()
		return
	}
	recording := a.busy
	a.mu.Unlock()

	if recording {
		a.ui.PrintNotice("Still working on the last turn.")
		return
	}
	if a.mic == nil {
		a.ui.PrintError("No microphone available. Check the audio device and restart.")
		return
	}
	if !a.beginTurn() {
		return
	}

	a.mu.Lock()
	stop := make(chan struct{})
	a.turnStop = stop
	a.mu.Unlock()

	go a.voiceTurn(ctx, stop)
}

// voiceTurn records one utterance and runs it through the pipeline.
func (a *app) voiceTurn(ctx context.Context, stop <-chan struct{}) {
	defer a.endTurn()

	// Don't record the assistant's own voice.
	if a.speaker != nil {
		a.speaker.Interrupt()
	}

	if err := a.mic.Start(); err != nil {
		a.ui.PrintError(fmt.Sprintf("Microphone error: %v", err))
		return
	}
	defer a.mic.Stop()

	a.ui.SetStatus(ui.StatusListening, "press Ctrl+R to stop")

	samples, err := a.recorder.Record(ctx, a.mic.Frames(), stop)
	a.mu.Lock()
	a.turnStop = nil
	a.mu.Unlock()

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoSpeechDetected):
			a.ui.PrintNotice("Heard nothing.")
			if a.speaker != nil {
				a.speaker.Say(tts.LineNoSpeech(), tts.PriorityLow)
			}
		case errors.Is(err, domain.ErrRecordingAborted):
			a.ui.PrintNotice("Recording stopped.")
		default:
			a.ui.SetStatus(ui.StatusError, "audio device")
			a.ui.PrintError(fmt.Sprintf("Recording failed: %v", err))
		}
		return
	}

	wavPath := filepath.Join(a.cfg.AudioDir, fmt.Sprintf("input_%d.wav", time.Now().UnixMilli()))
	if err := audio.WriteWAV(wavPath, samples); err != nil {
		a.ui.SetStatus(ui.StatusError, "")
		a.ui.PrintError(fmt.Sprintf("Could not save recording: %v", err))
		return
	}
	defer os.Remove(wavPath)

	a.ui.SetStatus(ui.StatusThinking, "transcribing")
	text, err := a.stt.Transcribe(ctx, wavPath)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyTranscription) {
			a.ui.PrintNotice("Couldn't make that out.")
			if a.speaker != nil {
				a.speaker.Say(tts.LineClarification(), tts.PriorityLow)
			}
			return
		}
		a.ui.SetStatus(ui.StatusError, "transcription")
		a.ui.PrintError(fmt.Sprintf("Transcription failed: %v", err))
		return
	}

	a.ui.PrintUser(text)
	a.completeTurn(ctx, text)
}

// typedTurn runs a typed message through the same pipeline, minus audio in.
func (a *app) typedTurn(ctx context.Context, text string) {
	if !a.beginTurn() {
		a.ui.PrintNotice("Still working on the last turn.")
		return
	}
	defer a.endTurn()

	if a.speaker != nil {
		a.speaker.Interrupt()
	}
	a.completeTurn(ctx, text)
}

// completeTurn generates and speaks the reply for the user's text. The
// user turn is on record once we have intelligible text; the assistant
// turn is appended only when generation succeeds.
func (a *app) completeTurn(ctx context.Context, text string) {
	a.transcript.Append(domain.SpeakerUser, text)
	a.ui.SetStatus(ui.StatusThinking, "")

	reply, err := a.brain.Respond(ctx, text)
	if err != nil {
		a.log.Error("respond: %v", err)
		a.ui.SetStatus(ui.StatusError, "")
		a.ui.PrintError("I couldn't reach the language model. Check the network and try again.")
		if a.speaker != nil {
			a.speaker.Say(tts.LineTrouble(), tts.PriorityCritical)
		}
		return
	}

	a.transcript.Append(domain.SpeakerAssistant, reply)

	a.ui.PrintAssistant(reply)
	if a.speaker != nil {
		a.ui.SetStatus(ui.StatusSpeaking, clipStatus(reply))
		a.speaker.Say(reply, tts.PriorityNormal)
		a.waitForSpeech(ctx)
	}
}

// waitForSpeech blocks until the speaker drains or the context ends.
func (a *app) waitForSpeech(ctx context.Context) {
	// Give the speaker a moment to pick the item up.
	time.Sleep(150 * time.Millisecond)
	for a.speaker.IsSpeaking() || a.speaker.QueueLen() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// ── Commands ─────────────────────────────────────────────────────

// handleCommand dispatches a slash command. Returns true on quit.
func (a *app) handleCommand(ctx context.Context, input string) bool {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/help":
		a.showHelp()
	case "/clear":
		a.clearConversation()
	case "/record":
		a.toggleRecord(ctx)
	case "/stop":
		a.mu.Lock()
		if a.turnStop != nil {
			close(a.turnStop)
			a.turnStop = nil
		}
		a.mu.Unlock()
	case "/history":
		a.showHistory()
	case "/voices":
		a.listVoices(ctx)
	case "/voice":
		a.switchVoice(ctx, arg)
	case "/name":
		a.renameAssistant(arg)
	case "/lang":
		a.switchLanguage(arg)
	case "/quit", "/exit":
		a.quit()
		return true
	default:
		a.ui.PrintNotice(fmt.Sprintf("Unknown command %s — try /help.", cmd))
	}
	return false
}

func (a *app) showHelp() {
	a.ui.PrintNotice("Commands:")
	a.ui.PrintNotice("  /record          Start or stop a voice turn (also Ctrl+R)")
	a.ui.PrintNotice("  /stop            Stop the current recording")
	a.ui.PrintNotice("  /clear           Forget the conversation (also Ctrl+L)")
	a.ui.PrintNotice("  /history         Show the recent turns again")
	a.ui.PrintNotice("  /voices          List available voices")
	a.ui.PrintNotice("  /voice <name>    Switch to another voice")
	a.ui.PrintNotice("  /name <name>     Rename the assistant")
	a.ui.PrintNotice("  /lang <tag>      Set the speech language (e.g. en-US)")
	a.ui.PrintNotice("  /quit            Exit (also Ctrl+C)")
	a.ui.PrintNotice("Anything else you type is sent to the assistant.")
}

func (a *app) clearConversation() {
	if err := a.brain.Clear(); err != nil {
		a.ui.PrintError(fmt.Sprintf("Could not clear history: %v", err))
		return
	}
	a.transcript.Clear()
	a.ui.PrintNotice("Conversation cleared.")
	if a.speaker != nil {
		a.speaker.Say(tts.LineConfirmation(), tts.PriorityLow)
	}
}

// showHistory reprints the session's recent turns.
func (a *app) showHistory() {
	turns := a.transcript.Turns()
	if len(turns) == 0 {
		a.ui.PrintNotice("Nothing said yet.")
		return
	}
	const limit = 10
	if len(turns) > limit {
		a.ui.PrintNotice(fmt.Sprintf("(%d earlier turns omitted)", len(turns)-limit))
		turns = turns[len(turns)-limit:]
	}
	for _, turn := range turns {
		if turn.Speaker == domain.SpeakerUser {
			a.ui.PrintUser(turn.Text)
		} else {
			a.ui.PrintAssistant(turn.Text)
		}
	}
}

func (a *app) listVoices(ctx context.Context) {
	if a.voice == nil {
		a.ui.PrintNotice("Speech is disabled.")
		return
	}
	voices, err := a.voice.Voices(ctx)
	if err != nil {
		a.ui.PrintError(fmt.Sprintf("Could not list voices: %v", err))
		return
	}
	a.ui.PrintNotice("Voices:")
	for _, v := range voices {
		marker := "  "
		if v.ID == a.voice.VoiceID() {
			marker = "* "
		}
		line := marker + v.Name
		if v.Category != "" {
			line += " (" + v.Category + ")"
		}
		a.ui.PrintNotice("  " + line)
	}
}

func (a *app) switchVoice(ctx context.Context, name string) {
	if a.voice == nil {
		a.ui.PrintNotice("Speech is disabled.")
		return
	}
	if name == "" {
		a.ui.PrintNotice("Usage: /voice <name>")
		return
	}

	v, err := a.voice.ResolveVoice(ctx, name)
	if err != nil {
		a.ui.PrintError(fmt.Sprintf("Could not switch voice: %v", err))
		return
	}
	a.cache.SetVoice(v.Name)
	a.cfg.VoiceName = v.Name
	a.saveSettings()

	a.ui.PrintNotice(fmt.Sprintf("Now speaking as %s.", v.Name))
	if a.speaker != nil {
		a.speaker.Say(tts.LineGreeting(), tts.PriorityLow)
	}
}

func (a *app) renameAssistant(name string) {
	if name == "" {
		a.ui.PrintNotice("Usage: /name <name>")
		return
	}
	a.cfg.AssistantName = name
	a.brain.SetName(name)
	a.ui.SetAssistantName(name)
	a.saveSettings()
	a.say(fmt.Sprintf("From now on, call me %s.", name), tts.PriorityNormal)
}

func (a *app) switchLanguage(tag string) {
	if tag == "" {
		a.ui.PrintNotice("Usage: /lang <tag>   (e.g. en-US, de-DE)")
		return
	}
	a.cfg.Language = tag
	a.stt.SetLanguage(a.cfg.LanguageCode())
	a.saveSettings()
	a.ui.PrintNotice(fmt.Sprintf("Speech language set to %s.", tag))
}

func (a *app) saveSettings() {
	if err := config.SettingsFrom(a.cfg).Save(a.cfg.SettingsFile); err != nil {
		a.log.Error("saving settings: %v", err)
	}
}

func (a *app) quit() {
	a.say(tts.LineFarewell(), tts.PriorityNormal)
	// Brief pause so the goodbye line can start playing.
	time.Sleep(300 * time.Millisecond)
}

// clipStatus keeps spoken text short enough for the status bar.
func clipStatus(s string) string {
	if len(s) <= 40 {
		return s
	}
	return s[:37] + "..."
}
