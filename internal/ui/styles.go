package ui

import "github.com/charmbracelet/lipgloss"

// Color palette for the remote pad
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - connected state
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, disconnected
	WarningColor = lipgloss.Color("#FFA500") // Orange - connecting states
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

var (
	// TitleStyle is for the pad header
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			PaddingLeft(1)

	// HostStyle is for the TV host line under the header
	HostStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			PaddingLeft(1)

	// PadStyle frames the key reference block
	PadStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PrimaryColor).
			Padding(0, 2)

	// PadKeyStyle is for the keyboard key column
	PadKeyStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true).
			Width(12)

	// PadActionStyle is for the TV action column
	PadActionStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// StateConnectedStyle marks an open session
	StateConnectedStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	// StateBusyStyle marks connecting/authenticating states
	StateBusyStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// StateDownStyle marks a disconnected session
	StateDownStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// LastKeyStyle shows the most recently sent key
	LastKeyStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			PaddingLeft(1)

	// ErrorStyle shows send failures
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			PaddingLeft(1)

	// HelpStyle wraps the bubbles help view
	HelpStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingTop(1)
)
