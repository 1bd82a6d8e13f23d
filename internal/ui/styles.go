// Package ui renders CLI output with lipgloss and runs the small bubbletea
// prompts.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // minted, approved
	ColorWarning   = lipgloss.Color("#FFB800") // pending, payments
	ColorError     = lipgloss.Color("#FF4444")
	ColorAddress   = lipgloss.Color("#00B4D8") // addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#555555")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorPhase     = lipgloss.Color("#9B5DE5")
	ColorHighlight = lipgloss.Color("#F15BB5") // selected rows
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StylePhase   = lipgloss.NewStyle().Foreground(ColorPhase).Bold(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorPhase).
			Bold(true).
			MarginBottom(1)
)

// Banner returns the one-line header printed by `wlminter init`.
func Banner(version string) string {
	return StylePhase.Render("wlminter") + " " + StyleMeta.Render("whitelist minter host "+version)
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// Phase renders a sale phase name. Disabled is dimmed, reveal is
// highlighted.
func Phase(p string) string {
	switch p {
	case "disabled":
		return StyleMeta.Render(p)
	case "reveal":
		return StyleSuccess.Render(p)
	default:
		return StylePhase.Render(p)
	}
}

// Flag renders a boolean as yes/no.
func Flag(b bool) string {
	if b {
		return StyleSuccess.Render("yes")
	}
	return StyleMeta.Render("no")
}

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// Indent prefixes every line of s with n spaces.
func Indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
