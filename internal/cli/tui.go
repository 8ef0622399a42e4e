package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/protocomposer/pkg/version"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// VersionListModel - Interactive release selection
// =============================================================================

// VersionListModel is the bubbletea model for picking a release to install.
type VersionListModel struct {
	Versions []version.Spec
	Latest   *version.Spec
	Cursor   int
	Offset   int
	Height   int
	Selected *version.Spec
}

// NewVersionListModel creates a picker over versions, newest first.
func NewVersionListModel(versions []version.Spec, latest *version.Spec) VersionListModel {
	return VersionListModel{
		Versions: versions,
		Latest:   latest,
		Height:   15,
	}
}

func (m VersionListModel) Init() tea.Cmd {
	return nil
}

func (m VersionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Versions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Versions) == 0 {
				return m, tea.Quit
			}
			v := m.Versions[m.Cursor]
			m.Selected = &v
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m VersionListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Composer Release"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Versions))
	for i := m.Offset; i < end; i++ {
		v := m.Versions[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		note := ""
		if ch := channelOf(v, m.Latest); ch != channelStable {
			note = ch.style().Render(ch.label())
		}

		line := fmt.Sprintf("%s%-16s", cursor, v.String())
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString(" " + note + "\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Versions))))
	return b.String()
}
