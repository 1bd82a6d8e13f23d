package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNothingToPick is returned when the picker has no items.
var ErrNothingToPick = errors.New("no items to pick from")

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // primary text (e.g. wallet name)
	SubLabel string // secondary text shown dimmed (e.g. address)
	Value    string // value returned on selection
}

// PickerModel is the bubbletea model behind PickItem.
type PickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

// NewPicker builds a picker with the cursor on the first item whose Value
// equals current.
func NewPicker(title string, items []PickerItem, current string) PickerModel {
	m := PickerModel{title: title, items: items}
	for i, it := range items {
		if it.Value == current {
			m.cursor = i
			break
		}
	}
	return m
}

// Selected returns the chosen value, or false if the user cancelled.
func (m PickerModel) Selected() (string, bool) {
	if m.quitting || m.selected == nil {
		return "", false
	}
	return m.selected.Value, true
}

func (m PickerModel) Init() tea.Cmd { return nil }

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.items) - 1
	case "enter", " ":
		if len(m.items) > 0 {
			item := m.items[m.cursor]
			m.selected = &item
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n\n")

	for i, item := range m.items {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}
		line := prefix + StyleValue.Render(item.Label)
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}
		if i == m.cursor {
			line = StyleSelected.Render(line)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ Enter ] select   [ q ] cancel") + "\n")
	return sb.String()
}

// PickItem runs the picker and returns the selected Value. It returns
// ("", nil) if the user cancels.
func PickItem(title string, items []PickerItem, current string) (string, error) {
	if len(items) == 0 {
		return "", ErrNothingToPick
	}

	p := tea.NewProgram(NewPicker(title, items, current), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	v, _ := final.(PickerModel).Selected()
	return v, nil
}
