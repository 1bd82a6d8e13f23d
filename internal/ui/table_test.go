package ui_test

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/wlminter/internal/ui"
)

func TestTableRender(t *testing.T) {
	tbl := ui.NewTable(ui.Column{Title: "TOKEN"}, ui.Column{Title: "METADATA", Width: 8})
	tbl.AddRow("1", "revealed")
	tbl.AddRow("3333", "hidden-for-now")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "TOKEN")
	assert.Contains(t, lines[1], "-----")
	assert.Contains(t, lines[2], "revealed")
	assert.Contains(t, lines[3], "3333")
	assert.Contains(t, lines[3], "hidden-…")
	assert.NotContains(t, lines[3], "hidden-for-now")
}

func TestTableShortRow(t *testing.T) {
	tbl := ui.NewTable(ui.Column{Title: "A"}, ui.Column{Title: "B"})
	tbl.AddRow("only")
	assert.Contains(t, tbl.Render(), "only")
}

func TestKeyValueBlock(t *testing.T) {
	out := ui.KeyValueBlock("Config", [][2]string{
		{"phase", "public"},
		{"price", "10 aarch"},
	})
	assert.Contains(t, out, "Config")
	assert.Less(t, strings.Index(out, "phase"), strings.Index(out, "price"))
	assert.Contains(t, out, "10 aarch")
}

func TestPrompterConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := &ui.Prompter{In: strings.NewReader(tt.input), Out: &out}
		assert.Equal(t, tt.want, p.Confirm("withdraw?"), tt.input)
		assert.Contains(t, out.String(), "withdraw?")
	}

	p := &ui.Prompter{In: strings.NewReader("y\n"), Out: &bytes.Buffer{}}
	assert.True(t, p.ConfirmDanger("migrate?"))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func drive(m ui.PickerModel, keys ...string) ui.PickerModel {
	var model tea.Model = m
	for _, k := range keys {
		model, _ = model.Update(key(k))
	}
	return model.(ui.PickerModel)
}

func TestPicker(t *testing.T) {
	items := []ui.PickerItem{
		{Label: "artist", Value: "artist"},
		{Label: "owner", SubLabel: "0xf39F…2266", Value: "owner"},
		{Label: "whale", Value: "whale"},
	}

	m := drive(ui.NewPicker("wallets", items, ""), "down", "down", "down", "enter")
	v, ok := m.Selected()
	assert.True(t, ok)
	assert.Equal(t, "whale", v)

	m = drive(ui.NewPicker("wallets", items, "owner"), "k", "enter")
	v, _ = m.Selected()
	assert.Equal(t, "artist", v)

	m = drive(ui.NewPicker("wallets", items, "owner"), "esc")
	_, ok = m.Selected()
	assert.False(t, ok)
	assert.Empty(t, m.View())

	view := ui.NewPicker("wallets", items, "owner").View()
	assert.Contains(t, view, "wallets")
	assert.Contains(t, view, "0xf39F…2266")
}

func TestPickItemEmpty(t *testing.T) {
	_, err := ui.PickItem("wallets", nil, "")
	assert.ErrorIs(t, err, ui.ErrNothingToPick)
}
