package brain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
)

// chatServer serves a fixed chat-completion reply.
func chatServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":%q}}]}`, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRequiresAPIKey(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	persona := DefaultPersona("Edward")

	_, err := New("", persona, log)
	if !errors.Is(err, domain.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	if _, err := New("sk-test", persona, log); err != nil {
		t.Fatalf("unexpected error with key set: %v", err)
	}
}

func TestRespondAppendsHistoryOnSuccess(t *testing.T) {
	srv := chatServer(t, "[THOUGHTS: simple question][RESPONSE: It is noon.]")

	history := NewHistory(5, "")
	b, err := New("sk-test", DefaultPersona("Edward"), logger.New(logger.LevelOff, nil),
		WithBaseURL(srv.URL),
		WithHistory(history),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	reply, err := b.Respond(context.Background(), "what time is it")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if reply != "It is noon." {
		t.Errorf("reply = %q, want %q", reply, "It is noon.")
	}

	if history.Len() != 1 {
		t.Fatalf("history has %d exchanges, want 1", history.Len())
	}
	ex := history.Tail(1)[0]
	if ex.User != "what time is it" || ex.Assistant != "It is noon." {
		t.Errorf("recorded exchange = %+v", ex)
	}
}

func TestRespondFailureLeavesHistoryUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad request","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	history := NewHistory(5, "")
	b, err := New("sk-test", DefaultPersona("Edward"), logger.New(logger.LevelOff, nil),
		WithBaseURL(srv.URL),
		WithHistory(history),
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := b.Respond(context.Background(), "hello"); err == nil {
		t.Fatal("expected an error from a failed completion")
	}
	if history.Len() != 0 {
		t.Fatalf("failed turn was recorded: history has %d exchanges", history.Len())
	}
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantThoughts string
		wantResponse string
	}{
		{
			name:         "well formed",
			raw:          "[THOUGHTS: user seems curious][RESPONSE: An operating system manages hardware.]",
			wantThoughts: "user seems curious",
			wantResponse: "An operating system manages hardware.",
		},
		{
			name:         "multiline response",
			raw:          "[THOUGHTS: plan the answer]\n[RESPONSE: First, open the settings.\nThen pick a voice.]",
			wantThoughts: "plan the answer",
			wantResponse: "First, open the settings.\nThen pick a voice.",
		},
		{
			name:         "no format falls back to raw",
			raw:          "Just a plain reply.",
			wantThoughts: "",
			wantResponse: "Just a plain reply.",
		},
		{
			name:         "thoughts only falls back to raw",
			raw:          "[THOUGHTS: hmm] something without the response tag",
			wantThoughts: "",
			wantResponse: "[THOUGHTS: hmm] something without the response tag",
		},
		{
			name:         "missing trailing bracket",
			raw:          "[THOUGHTS: ok][RESPONSE: Sure, I can help with that.",
			wantThoughts: "ok",
			wantResponse: "Sure, I can help with that.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thoughts, response := ParseReply(tt.raw)
			if thoughts != tt.wantThoughts {
				t.Errorf("thoughts = %q, want %q", thoughts, tt.wantThoughts)
			}
			if response != tt.wantResponse {
				t.Errorf("response = %q, want %q", response, tt.wantResponse)
			}
		})
	}
}

func TestAnalyzeSentiment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"this is great, awesome work, I love it", MoodHappy},
		{"I hate this, it's terrible and awful", MoodConcerned},
		{"what is the capital of Ghana", MoodNeutral},
		{"great but terrible", MoodNeutral},
		{"I'm happy", MoodNeutral}, // single word doesn't flip the mood
		{"", MoodNeutral},
	}
	for _, tt := range tests {
		if got := AnalyzeSentiment(tt.in); got != tt.want {
			t.Errorf("AnalyzeSentiment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractName(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"my name is Kofi", "Kofi", true},
		{"Hello, my name is Ama.", "Ama", true},
		{"My name is Yaw, nice to meet you", "Yaw", true},
		{"what is your name", "", false},
		{"my name is ", "", false},
	}
	for _, tt := range tests {
		got, ok := extractName(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("extractName(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
