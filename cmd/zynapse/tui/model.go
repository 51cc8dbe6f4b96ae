package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"zynapse/internal/app"
	"zynapse/internal/note"
	"zynapse/internal/search"
)

// ViewMode determines which pane owns the keyboard.
type ViewMode int

const (
	BrowseMode ViewMode = iota
	SearchMode
	EditMode
)

// noteItem adapts a note for the bubbles list component.
type noteItem struct {
	note *note.Note
}

func (i noteItem) Title() string       { return i.note.Title }
func (i noteItem) Description() string { return i.note.Summary(80) }
func (i noteItem) FilterValue() string {
	return i.note.Title + " " + strings.Join(i.note.Tags, " ")
}

// Messages produced by background commands.
type (
	notesLoadedMsg struct{ notes []*note.Note }
	searchDoneMsg  struct{ results []search.Result }
	noteSavedMsg   struct{ note *note.Note }
	errMsg         struct{ err error }
)

// Model is the top-level bubbletea model.
type Model struct {
	app    *app.App
	styles Styles

	list     list.Model
	preview  viewport.Model
	editor   textarea.Model
	searchIn textinput.Model
	renderer *glamour.TermRenderer

	mode      ViewMode
	width     int
	height    int
	status    string
	editingID string // empty while composing a new note
	ready     bool
}

// New assembles the interface around an opened application.
func New(a *app.App) Model {
	styles := NewStyles(ThemeFor(a.Config.TUI.Theme))

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(styles.Theme.Accent).BorderForeground(styles.Theme.Accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(styles.Theme.Muted).BorderForeground(styles.Theme.Accent)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Notes"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = styles.Title

	editor := textarea.New()
	editor.Placeholder = "Write your note in markdown. First heading becomes the title."
	editor.CharLimit = 0

	searchIn := textinput.New()
	searchIn.Prompt = "/ "
	searchIn.PromptStyle = styles.Prompt
	searchIn.Placeholder = "search notes"

	return Model{
		app:      a,
		styles:   styles,
		list:     l,
		editor:   editor,
		searchIn: searchIn,
		mode:     BrowseMode,
	}
}

// Run starts the interface and blocks until the user quits.
func Run(a *app.App) error {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if a.Config.TUI.MouseSupport {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	_, err := tea.NewProgram(New(a), opts...).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.loadNotes
}

// loadNotes reads the note list from disk.
func (m Model) loadNotes() tea.Msg {
	notes, err := m.app.ListNotes()
	if err != nil {
		return errMsg{err}
	}
	return notesLoadedMsg{notes}
}

// runSearch queries the full-text index.
func (m Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := m.app.SearchNotes(context.Background(), query)
		if err != nil {
			return errMsg{err}
		}
		return searchDoneMsg{results}
	}
}

// saveNote persists the editor content as a new or updated note.
func (m Model) saveNote(editingID, content string) tea.Cmd {
	return func() tea.Msg {
		var (
			n   *note.Note
			err error
		)
		if editingID == "" {
			n, err = m.app.AddNote("", content, nil)
		} else {
			n, err = m.app.UpdateNote(editingID, content)
		}
		if err != nil {
			return errMsg{err}
		}
		return noteSavedMsg{n}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case notesLoadedMsg:
		items := make([]list.Item, len(msg.notes))
		for i, n := range msg.notes {
			items[i] = noteItem{n}
		}
		m.list.SetItems(items)
		m.status = fmt.Sprintf("%d notes", len(msg.notes))
		return m.refreshPreview(), nil

	case searchDoneMsg:
		return m.showResults(msg.results), nil

	case noteSavedMsg:
		m.mode = BrowseMode
		m.editor.Blur()
		m.status = "saved " + msg.note.ID
		return m, m.loadNotes

	case errMsg:
		m.status = m.styles.Error.Render(msg.err.Error())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

// resize lays panes out for a new terminal size and rebuilds the
// markdown renderer at the preview width.
func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	listWidth := msg.Width * 2 / 5
	previewWidth := msg.Width - listWidth - 6
	contentHeight := msg.Height - 4

	m.list.SetSize(listWidth, contentHeight)
	m.preview = viewport.New(previewWidth, contentHeight)
	m.editor.SetWidth(msg.Width - 6)
	m.editor.SetHeight(contentHeight)
	m.searchIn.Width = listWidth - 4

	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(previewWidth-2),
	)
	m.ready = true
	return m.refreshPreview()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.app.Config.TUI.KeyBindings

	switch m.mode {
	case SearchMode:
		switch msg.String() {
		case "esc":
			m.mode = BrowseMode
			m.searchIn.Blur()
			return m, m.loadNotes
		case "enter":
			return m, m.runSearch(m.searchIn.Value())
		}
		var cmd tea.Cmd
		m.searchIn, cmd = m.searchIn.Update(msg)
		// Fuzzy-as-you-type: rerun the query on every keystroke.
		if m.app.Config.Search.FuzzySearch && m.searchIn.Value() != "" {
			return m, tea.Batch(cmd, m.runSearch(m.searchIn.Value()))
		}
		return m, cmd

	case EditMode:
		switch msg.String() {
		case "esc":
			m.mode = BrowseMode
			m.editor.Blur()
			m.status = "discarded"
			return m, nil
		case "ctrl+s":
			content := m.editor.Value()
			if strings.TrimSpace(content) == "" {
				m.status = m.styles.Error.Render("nothing to save")
				return m, nil
			}
			return m, m.saveNote(m.editingID, content)
		}
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd

	default: // BrowseMode
		switch msg.String() {
		case keys.Quit, "ctrl+c":
			return m, tea.Quit
		case keys.Search:
			m.mode = SearchMode
			m.searchIn.SetValue("")
			m.searchIn.Focus()
			return m, textinput.Blink
		case keys.NewNote:
			m.mode = EditMode
			m.editingID = ""
			m.editor.SetValue("")
			m.editor.Focus()
			return m, textarea.Blink
		case keys.Edit, "enter":
			if n := m.selectedNote(); n != nil {
				m.mode = EditMode
				m.editingID = n.ID
				m.editor.SetValue(n.Content)
				m.editor.Focus()
				return m, textarea.Blink
			}
			return m, nil
		case "d":
			if n := m.selectedNote(); n != nil {
				id := n.ID
				return m, func() tea.Msg {
					if err := m.app.DeleteNote(id); err != nil {
						return errMsg{err}
					}
					return m.loadNotes()
				}
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		m = m.refreshPreview()
		return m, cmd
	}
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case SearchMode:
		m.searchIn, cmd = m.searchIn.Update(msg)
	case EditMode:
		m.editor, cmd = m.editor.Update(msg)
	default:
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

// selectedNote returns the highlighted note, or nil.
func (m Model) selectedNote() *note.Note {
	if item, ok := m.list.SelectedItem().(noteItem); ok {
		return item.note
	}
	return nil
}

// showResults replaces the list contents with search hits.
func (m Model) showResults(results []search.Result) Model {
	items := make([]list.Item, 0, len(results))
	for _, r := range results {
		n, err := m.app.Store.Load(r.ID)
		if err != nil {
			continue
		}
		items = append(items, noteItem{n})
	}
	m.list.SetItems(items)
	m.status = fmt.Sprintf("%d matches", len(items))
	return m.refreshPreview()
}

// refreshPreview renders the selected note into the preview pane.
func (m Model) refreshPreview() Model {
	if !m.ready {
		return m
	}
	n := m.selectedNote()
	if n == nil {
		m.preview.SetContent(m.styles.Muted.Render("No note selected."))
		return m
	}

	body := "# " + n.Title + "\n\n" + n.Content
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(body); err == nil {
			body = rendered
		}
	}
	m.preview.SetContent(body)
	m.preview.GotoTop()
	return m
}
