package app

import (
	"context"
	"path/filepath"
	"testing"

	"zynapse/internal/zerrors"
)

func testApp(t *testing.T) *App {
	t.Helper()
	home := t.TempDir()
	t.Setenv("ZYNAPSE_HOME", home)
	t.Setenv("ZYNAPSE_DB", "")
	t.Setenv("EDITOR", "true")

	a, err := Open(filepath.Join(home, "config.yaml"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestAddSearchDelete(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	n, err := a.AddNote("Graph Theory", "Notes about adjacency matrices.", []string{"math"})
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	results, err := a.SearchNotes(ctx, "adjacency")
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(results) != 1 || results[0].ID != n.ID {
		t.Fatalf("expected the new note in results, got %+v", results)
	}

	if err := a.DeleteNote(n.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	results, err = a.SearchNotes(ctx, "adjacency")
	if err != nil {
		t.Fatalf("SearchNotes after delete: %v", err)
	}
	if len(results) != 0 {
		t.Error("deleted note should leave the index")
	}
}

func TestGetNote_ByPrefix(t *testing.T) {
	a := testApp(t)

	n, err := a.AddNote("Prefix Lookup", "find me by hash", nil)
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	got, err := a.GetNote(n.ID[:8])
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.ID != n.ID {
		t.Errorf("ID=%q want %q", got.ID, n.ID)
	}

	if _, err := a.GetNote("ffffffff"); !zerrors.IsNotFound(err) {
		t.Errorf("unknown prefix should be not found, got %v", err)
	}
}

func TestUpdateNote_RefreshesIndex(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	n, err := a.AddNote("Draft", "original wording", nil)
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if _, err := a.UpdateNote(n.ID, "revised wording"); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	if results, _ := a.SearchNotes(ctx, "original"); len(results) != 0 {
		t.Error("old content should no longer match")
	}
	results, err := a.SearchNotes(ctx, "revised")
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("new content should match, got %d results", len(results))
	}
}

func TestLinkNotes(t *testing.T) {
	a := testApp(t)

	first, err := a.AddNote("First", "alpha body", nil)
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	second, err := a.AddNote("Second", "beta body", nil)
	if err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	fromID, toID, err := a.LinkNotes(first.ID[:8], "relates-to", second.ID[:8])
	if err != nil {
		t.Fatalf("LinkNotes: %v", err)
	}
	if fromID != first.ID || toID != second.ID {
		t.Errorf("resolved IDs wrong: %q, %q", fromID, toID)
	}

	links, err := a.NoteLinks(first.ID)
	if err != nil {
		t.Fatalf("NoteLinks: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}

	// Deleting a note sweeps its links.
	if err := a.DeleteNote(second.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	links, err = a.NoteLinks(first.ID)
	if err != nil {
		t.Fatalf("NoteLinks after delete: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("links to a deleted note should be gone, got %+v", links)
	}
}

func TestReindexAndReport(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		if _, err := a.AddNote(title, "body of "+title, []string{"batch"}); err != nil {
			t.Fatalf("AddNote: %v", err)
		}
	}

	count, err := a.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if count != 3 {
		t.Errorf("Reindex count=%d", count)
	}

	r, err := a.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if r.NoteCount != 3 {
		t.Errorf("NoteCount=%d", r.NoteCount)
	}
	if r.TopTags[0].Tag != "batch" || r.TopTags[0].Count != 3 {
		t.Errorf("TopTags=%+v", r.TopTags)
	}
}
