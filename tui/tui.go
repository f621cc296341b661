package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/nathoo/miniquest/engine"
	"github.com/nathoo/miniquest/engine/state"
	"github.com/nathoo/miniquest/types"
)

const commandPrompt = "> "

type keyMap struct {
	Quit   key.Binding
	Cancel key.Binding
	Submit key.Binding
	Older  key.Binding
	Newer  key.Binding
	Scroll key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back out of a fight or riddle")),
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Older:  key.NewBinding(key.WithKeys("up"), key.WithHelp("up", "older command")),
	Newer:  key.NewBinding(key.WithKeys("down"), key.WithHelp("down", "newer command")),
	Scroll: key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll")),
}

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the game TUI.
type Model struct {
	engine *engine.Engine
	defs   *state.Defs

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Prompt = commandPrompt
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:  eng,
		defs:    eng.Defs,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program. trace starts with effect and event
// tracing switched on.
func Run(eng *engine.Engine, trace bool) error {
	m := New(eng)
	m.trace = trace
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces intro text and first look.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		var lines []string

		if m.defs.Game.Title != "" {
			lines = append(lines, m.defs.Game.Title, "")
		}
		if m.defs.Game.Intro != "" {
			lines = append(lines, strings.Split(m.defs.Game.Intro, "\n")...)
			lines = append(lines, "")
		}
		lines = append(lines, m.engine.Look()...)

		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Cancel):
			return m.handleCancel()

		case key.Matches(msg, keys.Submit):
			return m.handleEnter()

		case key.Matches(msg, keys.Older):
			m.recall(m.history.Prev())
			return m, nil

		case key.Matches(msg, keys.Newer):
			next, ok := m.history.Next()
			if !ok {
				m.history.ResetCursor()
			}
			m.recall(next, true)
			return m, nil

		case key.Matches(msg, keys.Scroll):
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// recall puts a history entry on the input line. ok false leaves the
// line as it is.
func (m *Model) recall(entry string, ok bool) {
	if !ok {
		return
	}
	m.input.SetValue(entry)
	m.input.CursorEnd()
}

// handleEnter processes the submitted input line. While the engine waits
// on a combat move or a riddle answer, the line goes straight to it.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if m.engine.Pending() != "" {
		return m.step(input, input), nil
	}

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(gameOutputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		return m.step(input, m.lastCmd), nil
	}
	m.lastCmd = input

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	return m.step(input, input), nil
}

// step sends cmd to the engine and renders the result under the echoed
// input line.
func (m Model) step(echo, cmd string) Model {
	result := m.engine.Step(cmd)
	output := result.Output
	if result.Moved && result.Outcome == types.OutcomeContinue {
		output = append(output, "")
		output = append(output, m.engine.Look()...)
	}
	if m.trace {
		output = append(output, m.formatTrace(result)...)
	}
	m = m.appendOutput(gameOutputMsg{input: echo, lines: output})

	if result.Outcome != types.OutcomeContinue {
		m = m.appendOutput(gameOutputMsg{
			lines:    []string{fmt.Sprintf("Game over (%s). Press Ctrl+C to exit.", result.Outcome)},
			isSystem: true,
		})
	}
	m.syncPrompt()
	return m
}

// handleCancel abandons the pending combat or riddle. Nothing already
// resolved is undone.
func (m Model) handleCancel() (tea.Model, tea.Cmd) {
	var result types.Result
	switch {
	case m.engine.InCombat():
		result = m.engine.CancelCombat()
	case m.engine.Pending() != "":
		result = m.engine.CancelPrompt()
	default:
		return m, nil
	}
	m.input.SetValue("")
	m = m.appendOutput(gameOutputMsg{lines: result.Output})
	m.syncPrompt()
	return m, nil
}

// syncPrompt shows the pending question as the input prompt.
func (m *Model) syncPrompt() {
	if p := m.engine.Pending(); p != "" {
		m.input.Prompt = p + " "
		m.input.PromptStyle = styleModalPrompt
		return
	}
	m.input.Prompt = commandPrompt
	m.input.PromptStyle = styleInputPrompt
}

// appendOutput adds lines to the narrative and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindHeading:
		return styleHeading.Render(line)
	case kindYouSee:
		return styledYouSee(line)
	case kindExits:
		return styleExits.Render(line)
	case kindDialogue:
		return styleDialogue.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindSuccess:
		return styleSuccess.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleRoomDesc.Render(line)
	}
}

// wrap breaks text at word boundaries to fit width.
func wrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	return wordwrap.String(text, width)
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	switch cmd := strings.Fields(input)[0]; cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdHelp() []string {
	out := []string{
		"System:",
		"  /quit    Exit game",
		"  /help    Show this help",
		"  /state   Debug: dump current state",
		"  /trace   Toggle debug trace output",
		"  again    Repeat your last command (or g)",
		"",
	}
	out = append(out, m.engine.Help()...)
	out = append(out, "", "Keys:")
	for _, b := range []key.Binding{keys.Submit, keys.Cancel, keys.Older, keys.Newer, keys.Scroll, keys.Quit} {
		out = append(out, fmt.Sprintf("  %-10s %s", b.Help().Key, b.Help().Desc))
	}
	return out
}

func (m *Model) cmdState() []string {
	s := m.engine.State
	return []string{
		fmt.Sprintf("Turn: %d", s.TurnCount),
		fmt.Sprintf("Location: %s", s.Player.Location),
		fmt.Sprintf("HP: %d", s.Player.HP),
		fmt.Sprintf("Inventory: %v", s.Player.Inventory),
		fmt.Sprintf("Seed: %d (draws: %d)", m.engine.RNG.Seed(), m.engine.RNG.Position()),
	}
}

func (m *Model) formatTrace(result types.Result) []string {
	var lines []string
	if len(result.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s", e.Type))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
