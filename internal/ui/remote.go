package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/samsungtv/remote"
)

// keyMap binds terminal keys for the bubbles help view.
type keyMap struct {
	Navigate key.Binding
	Enter    key.Binding
	Back     key.Binding
	Volume   key.Binding
	Mute     key.Binding
	Channel  key.Binding
	Digits   key.Binding
	Home     key.Binding
	Power    key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Navigate, k.Enter, k.Volume, k.Channel, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Navigate, k.Enter, k.Back, k.Home},
		{k.Volume, k.Mute, k.Channel, k.Digits},
		{k.Power, k.Quit},
	}
}

var padKeys = keyMap{
	Navigate: key.NewBinding(
		key.WithKeys("up", "down", "left", "right"),
		key.WithHelp("↑↓←→", "navigate"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("backspace", "esc"),
		key.WithHelp("backspace", "return"),
	),
	Volume: key.NewBinding(
		key.WithKeys("+", "-", "="),
		key.WithHelp("+/-", "volume"),
	),
	Mute: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mute"),
	),
	Channel: key.NewBinding(
		key.WithKeys("pgup", "pgdown"),
		key.WithHelp("pgup/pgdn", "channel"),
	),
	Digits: key.NewBinding(
		key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("0-9", "digits"),
	),
	Home: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "home/menu"),
	),
	Power: key.NewBinding(
		key.WithKeys("P"),
		key.WithHelp("P", "power off"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// keyCodes maps terminal keys onto TV key codes.
var keyCodes = map[string]string{
	"up":        "KEY_UP",
	"down":      "KEY_DOWN",
	"left":      "KEY_LEFT",
	"right":     "KEY_RIGHT",
	"enter":     "KEY_ENTER",
	"backspace": "KEY_RETURN",
	"esc":       "KEY_EXIT",
	"+":         "KEY_VOLUP",
	"=":         "KEY_VOLUP",
	"-":         "KEY_VOLDOWN",
	"m":         "KEY_MUTE",
	"pgup":      "KEY_CHUP",
	"pgdown":    "KEY_CHDOWN",
	"h":         "KEY_HOME",
	"0":         "KEY_0",
	"1":         "KEY_1",
	"2":         "KEY_2",
	"3":         "KEY_3",
	"4":         "KEY_4",
	"5":         "KEY_5",
	"6":         "KEY_6",
	"7":         "KEY_7",
	"8":         "KEY_8",
	"9":         "KEY_9",
}

type tickMsg time.Time

type sentMsg struct {
	key string
	err error
}

// Model is the bubbletea model for the remote pad.
type Model struct {
	remote remote.Remote
	host   string

	keys keyMap
	help help.Model

	lastKey string
	lastErr error
}

// NewModel creates a pad bound to an already-connected remote.
func NewModel(r remote.Remote, host string) Model {
	return Model{
		remote: r,
		host:   host,
		keys:   padKeys,
		help:   help.New(),
	}
}

// Run drives the pad until the user quits.
func Run(r remote.Remote, host string) error {
	program := tea.NewProgram(NewModel(r, host))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// sendKey fires the key off the UI goroutine; Control enforces the
// inter-key interval with a sleep.
func (m Model) sendKey(code string) tea.Cmd {
	r := m.remote
	return func() tea.Msg {
		return sentMsg{key: code, err: r.Control(code)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()

	case sentMsg:
		m.lastKey = msg.key
		m.lastErr = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Power):
			r := m.remote
			return m, func() tea.Msg {
				r.PowerOff()
				return sentMsg{key: "KEY_POWEROFF"}
			}
		}
		if code, ok := keyCodes[msg.String()]; ok {
			return m, m.sendKey(code)
		}
	}
	return m, nil
}

func (m Model) View() string {
	title := TitleStyle.Render("SAMSUNG TV REMOTE")
	host := HostStyle.Render(m.host)

	state := m.remote.State()
	var stateLine string
	switch state {
	case remote.StateOpen:
		stateLine = StateConnectedStyle.Render("● connected")
	case remote.StateConnecting, remote.StateAuthenticating:
		stateLine = StateBusyStyle.Render("● " + state.String())
	default:
		stateLine = StateDownStyle.Render("● " + state.String())
	}

	rows := []struct{ key, action string }{
		{"arrows", "navigate menus"},
		{"enter", "select"},
		{"backspace", "return"},
		{"esc", "exit"},
		{"+ / -", "volume up / down"},
		{"m", "mute"},
		{"pgup/pgdn", "channel up / down"},
		{"0-9", "channel digits"},
		{"h", "home"},
		{"P", "power off"},
	}
	pad := ""
	for _, row := range rows {
		pad += PadKeyStyle.Render(row.key) + PadActionStyle.Render(row.action) + "\n"
	}

	status := ""
	if m.lastErr != nil {
		status = ErrorStyle.Render(fmt.Sprintf("send failed: %v", m.lastErr))
	} else if m.lastKey != "" {
		status = LastKeyStyle.Render("sent " + m.lastKey)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		host,
		" "+stateLine,
		PadStyle.Render(pad),
		status,
		HelpStyle.Render(m.help.View(m.keys)),
	)
}
