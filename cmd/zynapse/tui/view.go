package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := m.styles.Header.Render("zynapse") + " " +
		m.styles.Muted.Render(fmt.Sprintf("%d notes", len(m.list.Items())))

	var body string
	switch m.mode {
	case EditMode:
		title := "New note"
		if m.editingID != "" {
			title = "Editing " + m.editingID
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Title.Render(title),
			m.styles.FocusPane.Render(m.editor.View()),
		)
	case SearchMode:
		left := lipgloss.JoinVertical(lipgloss.Left,
			m.styles.FocusPane.Render(m.searchIn.View()),
			m.styles.Pane.Render(m.list.View()),
		)
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			left,
			m.styles.Pane.Render(m.preview.View()),
		)
	default:
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.styles.FocusPane.Render(m.list.View()),
			m.styles.Pane.Render(m.preview.View()),
		)
	}

	footer := m.styles.Footer.Render(m.helpLine())
	if m.status != "" {
		footer = lipgloss.JoinHorizontal(lipgloss.Top, footer, "  ", m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// helpLine shows the bindings that matter in the current mode.
func (m Model) helpLine() string {
	keys := m.app.Config.TUI.KeyBindings
	switch m.mode {
	case EditMode:
		return "ctrl+s save · esc discard"
	case SearchMode:
		return "enter search · esc back"
	default:
		return fmt.Sprintf("%s search · %s new · %s edit · d delete · %s quit",
			keys.Search, keys.NewNote, keys.Edit, keys.Quit)
	}
}
