package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/openpmx/vpc/pkg/plot"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ShowListModel - Interactive layer visibility selection
// =============================================================================

// showEntry is one toggleable layer flag in the picker.
type showEntry struct {
	key       string
	value     bool
	isDefault bool
}

// ShowListModel is the bubbletea model for toggling layer visibility flags.
// Space flips the flag under the cursor, enter accepts, q aborts.
type ShowListModel struct {
	Entries []showEntry
	Cursor  int
	Done    bool
	Aborted bool
}

// NewShowListModel creates a picker seeded with the display defaults plus
// any overrides already given on the command line.
func NewShowListModel(overlay map[string]bool) ShowListModel {
	names := plot.ShowOptionNames()
	entries := make([]showEntry, 0, len(names))
	for _, key := range names {
		def, _ := plot.DefaultShowValue(key)
		val := def
		if v, ok := overlay[key]; ok {
			val = v
		}
		entries = append(entries, showEntry{key: key, value: val, isDefault: val == def})
	}
	return ShowListModel{Entries: entries}
}

func (m ShowListModel) Init() tea.Cmd {
	return nil
}

func (m ShowListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
			}
		case " ", "x":
			e := &m.Entries[m.Cursor]
			e.value = !e.value
			def, _ := plot.DefaultShowValue(e.key)
			e.isDefault = e.value == def
		case "enter":
			m.Done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ShowListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layer Visibility"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ accept  q quit"))
	b.WriteString("\n\n")

	for i, e := range m.Entries {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		box := "[ ]"
		if e.value {
			box = "[x]"
		}

		suffix := ""
		if !e.isDefault {
			suffix = "  " + StyleHighlight.Render("changed")
		}

		line := fmt.Sprintf("%s%s %-14s%s", cursor, box, e.key, suffix)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if e.value {
			b.WriteString(listNormalStyle.Render(line))
		} else {
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

// Overlay returns the flags that differ from the display defaults, which is
// exactly the overlay the assembler expects. Nil when nothing changed.
func (m ShowListModel) Overlay() map[string]bool {
	out := map[string]bool{}
	for _, e := range m.Entries {
		if !e.isDefault {
			out[e.key] = e.value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
