// Package brain generates the assistant's replies via the OpenAI chat
// completions API, carrying a persona prompt, bounded conversation
// history, and a lightweight mood model.
package brain

import (
	"context"
	"fmt"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/easimeng/anglo/internal/domain"
	"github.com/easimeng/anglo/internal/logger"
)

// Option configures the Brain.
type Option func(*Brain)

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(b *Brain) { b.model = model }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(b *Brain) { b.temperature = t }
}

// WithMaxTokens sets the reply token limit.
func WithMaxTokens(n int64) Option {
	return func(b *Brain) { b.maxTokens = n }
}

// WithHistory attaches a persistent conversation history.
func WithHistory(h *History) Option {
	return func(b *Brain) { b.history = h }
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) Option {
	return func(b *Brain) { b.baseURL = url }
}

// Compile-time interface check.
var _ domain.Responder = (*Brain)(nil)

// Brain is the AI response generator. Safe for use from the single turn
// goroutine; it is not meant to serve concurrent turns.
type Brain struct {
	client  openai.Client
	persona Persona
	history *History
	log     *logger.Logger

	model       string
	baseURL     string
	temperature float64
	maxTokens   int64

	mood     string // conversation mood driven by user sentiment
	userName string // learned from "my name is ..." utterances
}

// New creates a Brain. Fails with domain.ErrMissingAPIKey when the key
// is empty — no request is ever attempted without one.
func New(apiKey string, persona Persona, log *logger.Logger, opts ...Option) (*Brain, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("brain: %w", domain.ErrMissingAPIKey)
	}

	b := &Brain{
		persona:     persona,
		log:         log,
		model:       "gpt-4o-mini",
		temperature: 0.8,
		maxTokens:   200,
		mood:        MoodNeutral,
		userName:    "User",
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.history == nil {
		b.history = NewHistory(0, "")
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if b.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(b.baseURL))
	}
	b.client = openai.NewClient(clientOpts...)
	return b, nil
}

// Mood returns the current conversation mood.
func (b *Brain) Mood() string { return b.mood }

// SetName renames the assistant for subsequent turns.
func (b *Brain) SetName(name string) { b.persona.Name = name }

// Respond sends the user's text to the chat model and returns the
// assistant's reply. The exchange is appended to history only after the
// request succeeds, so a failed turn never corrupts the record.
func (b *Brain) Respond(ctx context.Context, userText string) (string, error) {
	b.mood = AnalyzeSentiment(userText)
	if name, ok := extractName(userText); ok {
		b.userName = name
		b.log.Debug("brain: learned user name %q", name)
	}

	messages := b.buildMessages(userText)

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(b.model),
		Messages:         messages,
		Temperature:      openai.Float(b.temperature),
		TopP:             openai.Float(0.95),
		MaxTokens:        openai.Int(b.maxTokens),
		FrequencyPenalty: openai.Float(0.5),
		PresencePenalty:  openai.Float(0.6),
	})
	if err != nil {
		return "", fmt.Errorf("brain: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("brain: empty response (no choices)")
	}

	raw := resp.Choices[0].Message.Content
	if raw == "" {
		return "", fmt.Errorf("brain: empty reply content")
	}

	thoughts, reply := ParseReply(raw)
	if thoughts != "" {
		b.log.Debug("brain: thoughts: %s", thoughts)
	}

	b.history.Append(Exchange{User: userText, Assistant: reply, Mood: b.mood, At: time.Now()})
	if err := b.history.Save(); err != nil {
		b.log.Warn("brain: could not save history: %v", err)
	}

	return reply, nil
}

// Clear discards the conversation history (memory and disk).
func (b *Brain) Clear() error {
	return b.history.Clear()
}

// buildMessages assembles the full prompt: persona system message,
// few-shot examples, a context block, the recent history tail, and the
// new user message.
func (b *Brain) buildMessages(userText string) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(b.persona.SystemPrompt()),
		openai.SystemMessage(b.persona.ContextBlock(time.Now(), b.userName, b.mood)),
	}

	for _, ex := range b.persona.Examples {
		messages = append(messages,
			openai.UserMessage(ex.User),
			openai.AssistantMessage(ex.Assistant),
		)
	}

	for _, ex := range b.history.Tail(historyWindow) {
		messages = append(messages,
			openai.UserMessage(ex.User),
			openai.AssistantMessage(ex.Assistant),
		)
	}

	return append(messages, openai.UserMessage(userText))
}

// historyWindow is how many recent exchanges are replayed per request.
const historyWindow = 5
