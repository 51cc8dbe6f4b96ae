package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"zynapse/internal/app"
	"zynapse/internal/note"
)

func testModel(t *testing.T) (Model, *app.App) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("ZYNAPSE_HOME", home)
	t.Setenv("ZYNAPSE_DB", "")
	t.Setenv("EDITOR", "true")

	a, err := app.Open(filepath.Join(home, "config.yaml"))
	if err != nil {
		t.Fatalf("app.Open: %v", err)
	}
	t.Cleanup(a.Close)

	m := New(a)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), a
}

func loadedModel(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(m.loadNotes())
	return next.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	panic("unknown key " + s)
}

func TestModel_LoadsNotes(t *testing.T) {
	m, a := testModel(t)
	if _, err := a.AddNote("Visible Note", "body text", nil); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	m = loadedModel(t, m)
	if len(m.list.Items()) != 1 {
		t.Fatalf("expected 1 list item, got %d", len(m.list.Items()))
	}
	if !strings.Contains(m.View(), "Visible Note") {
		t.Error("view should show the note title")
	}
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := testModel(t)

	_, cmd := m.Update(keyMsg(m.app.Config.TUI.KeyBindings.Quit))
	if cmd == nil {
		t.Fatal("quit should produce a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key should quit")
	}
}

func TestModel_SearchFlow(t *testing.T) {
	m, a := testModel(t)
	if _, err := a.AddNote("Entropy", "thermodynamics and disorder", nil); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if _, err := a.AddNote("Gardening", "compost and soil", nil); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	m = loadedModel(t, m)

	next, _ := m.Update(keyMsg(m.app.Config.TUI.KeyBindings.Search))
	m = next.(Model)
	if m.mode != SearchMode {
		t.Fatalf("mode=%v want SearchMode", m.mode)
	}

	m.searchIn.SetValue("thermodynamics")
	msg := m.runSearch("thermodynamics")()
	done, ok := msg.(searchDoneMsg)
	if !ok {
		t.Fatalf("expected searchDoneMsg, got %T", msg)
	}
	next, _ = m.Update(done)
	m = next.(Model)

	if len(m.list.Items()) != 1 {
		t.Fatalf("expected 1 match in list, got %d", len(m.list.Items()))
	}
	if m.list.Items()[0].(noteItem).note.Title != "Entropy" {
		t.Error("wrong note matched")
	}

	next, _ = m.Update(keyMsg("esc"))
	m = next.(Model)
	if m.mode != BrowseMode {
		t.Error("esc should return to browse mode")
	}
}

func TestModel_NewNoteFlow(t *testing.T) {
	m, _ := testModel(t)
	m = loadedModel(t, m)

	next, _ := m.Update(keyMsg(m.app.Config.TUI.KeyBindings.NewNote))
	m = next.(Model)
	if m.mode != EditMode || m.editingID != "" {
		t.Fatalf("new-note key should open a blank editor, mode=%v editing=%q", m.mode, m.editingID)
	}

	m.editor.SetValue("# Fresh Idea\n\nwritten in the tui")
	_, cmd := m.Update(keyMsg("ctrl+s"))
	if cmd == nil {
		t.Fatal("save should produce a command")
	}
	saved, ok := cmd().(noteSavedMsg)
	if !ok {
		t.Fatalf("expected noteSavedMsg, got %T", cmd())
	}
	if saved.note.Title != "fresh idea" {
		t.Errorf("derived title=%q", saved.note.Title)
	}

	next, _ = m.Update(saved)
	m = next.(Model)
	if m.mode != BrowseMode {
		t.Error("save should return to browse mode")
	}
}

func TestModel_EditSelectedNote(t *testing.T) {
	m, a := testModel(t)
	n, err := a.AddNote("Editable", "original words", nil)
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	m = loadedModel(t, m)

	next, _ := m.Update(keyMsg(m.app.Config.TUI.KeyBindings.Edit))
	m = next.(Model)
	if m.mode != EditMode {
		t.Fatalf("mode=%v want EditMode", m.mode)
	}
	if m.editingID != n.ID {
		t.Errorf("editingID=%q want %q", m.editingID, n.ID)
	}
	if m.editor.Value() != n.Content {
		t.Errorf("editor should hold the note content, got %q", m.editor.Value())
	}

	_, cmd := m.Update(keyMsg("esc"))
	if cmd != nil {
		t.Error("discard should not produce a command")
	}
}

func TestModel_DeleteSelectedNote(t *testing.T) {
	m, a := testModel(t)
	if _, err := a.AddNote("Doomed", "to be deleted", nil); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	m = loadedModel(t, m)

	_, cmd := m.Update(keyMsg("d"))
	if cmd == nil {
		t.Fatal("delete should produce a command")
	}
	if _, ok := cmd().(notesLoadedMsg); !ok {
		t.Fatal("delete should reload the list")
	}

	notes, err := a.ListNotes()
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(notes) != 0 {
		t.Errorf("note should be gone, got %d", len(notes))
	}
}

func TestModel_ErrorsLandInStatus(t *testing.T) {
	m, _ := testModel(t)

	next, _ := m.Update(errMsg{err: errTest("boom")})
	m = next.(Model)
	if !strings.Contains(m.status, "boom") {
		t.Errorf("status=%q should carry the error", m.status)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestNoteItem(t *testing.T) {
	n, err := note.New("Item Title", "# Item Title\n\nfirst line of body")
	if err != nil {
		t.Fatalf("note.New: %v", err)
	}
	n.AddTag("alpha")

	item := noteItem{n}
	if item.Title() != "Item Title" {
		t.Errorf("Title=%q", item.Title())
	}
	if item.Description() != "first line of body" {
		t.Errorf("Description=%q", item.Description())
	}
	if !strings.Contains(item.FilterValue(), "alpha") {
		t.Error("FilterValue should include tags")
	}
}
