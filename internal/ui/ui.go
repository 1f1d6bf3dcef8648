// Package ui provides the terminal interface using Bubble Tea.
//
// The [UI] type manages a persistent status bar (assistant state and
// recording indicator) and an input prompt at the bottom of the
// terminal. All conversation output is printed above the rendered area
// via Program.Println, so concurrent goroutines never garble the
// display.
package ui

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Status is the assistant state shown in the status bar.
type Status int

const (
	StatusReady Status = iota
	StatusListening
	StatusThinking
	StatusSpeaking
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusListening:
		return "listening"
	case StatusThinking:
		return "thinking"
	case StatusSpeaking:
		return "speaking"
	case StatusError:
		return "error"
	default:
		return "ready"
	}
}

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	readyDotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#86efac"))

	listenDotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	thinkDotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	speakDotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	errorDotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// ── Output styles (soft palette) ──

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Assistant speech — soft sky blue.
	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	assistantNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#7dd3fc")).
				Bold(true)

	// User turns — light zinc.
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	userNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa")).
			Bold(true)

	// Notices — dimmed zinc for hints and metadata.
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// Errors — soft coral.
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely
// call the print methods, [UI.SetStatus], and read from [UI.InputChan]
// at any time after [UI.WaitReady] returns.
type UI struct {
	program       *tea.Program
	assistantName string
	inputCh       chan string
	readyCh       chan struct{}
	quitCh        chan struct{}
	done          atomic.Bool
	width         atomic.Int32
}

// NewUI creates the interface. Call Run() to start.
func NewUI(assistantName string) *UI {
	return &UI{
		assistantName: assistantName,
		inputCh:       make(chan string, 16),
		readyCh:       make(chan struct{}),
		quitCh:        make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe. Falls back to
// fmt.Println before the program starts or after it quits.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// InputChan returns completed user-input lines. Key chords are mapped
// to their slash-command equivalents on the same channel.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// SetAssistantName changes the name shown on assistant turns. Call only
// from the goroutine that also does the printing.
func (u *UI) SetAssistantName(name string) { u.assistantName = name }

// SetStatus updates the status bar. detail is optional context shown
// next to the state, like the text being spoken. Thread-safe.
func (u *UI) SetStatus(s Status, detail string) {
	if u.program != nil && !u.done.Load() {
		u.program.Send(statusMsg{status: s, detail: detail})
	}
}

// ── Styled print helpers ─────────────────────────────────────────

// PrintUser prints a transcribed or typed user turn.
func (u *UI) PrintUser(text string) {
	u.Println(userNameStyle.Render("you") + noticeStyle.Render(" › ") + userStyle.Render(text))
}

// PrintAssistant prints an assistant reply.
func (u *UI) PrintAssistant(text string) {
	u.Println(assistantNameStyle.Render(strings.ToLower(u.assistantName)) +
		noticeStyle.Render(" › ") + assistantStyle.Render(text))
}

// PrintNotice prints a dimmed informational line.
func (u *UI) PrintNotice(text string) {
	u.Println(noticeStyle.Render("  " + text))
}

// PrintError prints an error line.
func (u *UI) PrintError(text string) {
	u.Println(errorStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed line into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("anglo") + noticeStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// PrintBanner prints the startup banner centred for the current width.
func (u *UI) PrintBanner() {
	w := int(u.width.Load())
	if w <= 0 {
		w = 80
	}
	u.Println(renderBanner(w))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Plain-text prompt so the textinput width math stays correct.
	// Styled prompts add invisible ANSI bytes that break the internal
	// offset/scroll calculations for long input.
	ti.Prompt = "anglo> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		assistantName: u.assistantName,
		input:         ti,
		inputCh:       u.inputCh,
		readyCh:       u.readyCh,
		echoFn:        u.PrintUserInput,
		widthFn: func(w int) {
			u.width.Store(int32(w))
		},
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	assistantName string
	input         textinput.Model
	inputCh       chan<- string
	readyCh       chan struct{}
	echoFn        func(string)
	widthFn       func(int)

	status  Status
	detail  string
	since   time.Time // when the current status began
	width   int
}

// Messages.
type tickMsg time.Time

type statusMsg struct {
	status Status
	detail string
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyCtrlR:
			return m, m.sendCommand("/record")
		case tea.KeyCtrlL:
			return m, m.sendCommand("/clear")
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Echo via a Cmd so it runs outside Update and can't
				// deadlock on the message loop.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case statusMsg:
		if msg.status != m.status || msg.detail != m.detail {
			m.since = time.Now()
		}
		m.status = msg.status
		m.detail = msg.detail
		return m, tea.SetWindowTitle(m.titleStr())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.widthFn(msg.Width)
		const promptLen = 7 // "anglo> "
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil

	case tickMsg:
		// Redraw so the elapsed indicator keeps moving.
		return m, tickCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) titleStr() string {
	if m.status == StatusReady {
		return m.assistantName
	}
	return m.assistantName + " — " + m.status.String()
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.renderBar())
	b.WriteByte('\n')

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar() string {
	dot := "●"
	var dotStyled string
	switch m.status {
	case StatusListening:
		dotStyled = listenDotStyle.Render(dot)
	case StatusThinking:
		dotStyled = thinkDotStyle.Render(dot)
	case StatusSpeaking:
		dotStyled = speakDotStyle.Render(dot)
	case StatusError:
		dotStyled = errorDotStyle.Render(dot)
	default:
		dotStyled = readyDotStyle.Render(dot)
	}

	content := " " + dotStyled + " " + labelStyle.Render(m.status.String())

	// Listening and thinking show elapsed time so the user can tell
	// the pipeline hasn't stalled.
	if (m.status == StatusListening || m.status == StatusThinking) && !m.since.IsZero() {
		content += labelStyle.Render(fmt.Sprintf(" %ds", int(time.Since(m.since).Seconds())))
	}

	if m.detail != "" {
		content += detailStyle.Render("  " + clipDetail(m.detail, m.width))
	}
	content += " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

func (m model) sendCommand(cmd string) tea.Cmd {
	inputCh := m.inputCh
	return func() tea.Msg {
		inputCh <- cmd
		return nil
	}
}

// clipDetail keeps the detail text from overflowing the bar.
func clipDetail(s string, width int) string {
	max := 48
	if width > 0 && width-30 < max {
		max = width - 30
	}
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
