// Package app wires the note store, search index, and link graph behind
// one handle, keeping the three in step: every note mutation updates
// the index, and deletions sweep links.
package app

import (
	"context"
	"time"

	"zynapse/internal/analytics"
	"zynapse/internal/config"
	"zynapse/internal/logging"
	"zynapse/internal/note"
	"zynapse/internal/search"
	"zynapse/internal/storage"
	"zynapse/internal/synapse"
)

// App is the assembled application. Open one per process.
type App struct {
	Config *config.Config
	Store  *storage.Store
	Index  *search.Index
	Links  *synapse.Store

	watcher *storage.Watcher
}

// Open loads configuration, creates the data directories, and opens
// every subsystem.
func Open(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	if err := logging.Initialize(config.DataDir(), cfg.Logging.Level, cfg.Logging.File, cfg.Logging.Debug); err != nil {
		return nil, err
	}

	st, err := storage.New(cfg)
	if err != nil {
		return nil, err
	}
	ix, err := search.Open(cfg)
	if err != nil {
		return nil, err
	}
	links, err := synapse.Open(cfg)
	if err != nil {
		ix.Close()
		return nil, err
	}

	logging.Boot("opened knowledge base at %s", cfg.Storage.RootPath)
	return &App{Config: cfg, Store: st, Index: ix, Links: links}, nil
}

// Close shuts everything down. Safe to call once.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.Index.Close()
	a.Links.Close()
	logging.CloseAll()
}

// AddNote creates a note, persists it, and indexes it.
func (a *App) AddNote(title, content string, tags []string) (*note.Note, error) {
	n, err := note.New(title, content)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		n.AddTag(tag)
	}
	if err := a.Store.Create(n); err != nil {
		return nil, err
	}
	if err := a.Index.IndexNote(n); err != nil {
		return n, err
	}
	return n, nil
}

// GetNote loads a note by ID or unique ID prefix.
func (a *App) GetNote(idOrPrefix string) (*note.Note, error) {
	id, err := a.Store.Resolve(idOrPrefix)
	if err != nil {
		return nil, err
	}
	return a.Store.Load(id)
}

// UpdateNote replaces a note's content and refreshes the index.
func (a *App) UpdateNote(idOrPrefix, content string) (*note.Note, error) {
	n, err := a.GetNote(idOrPrefix)
	if err != nil {
		return nil, err
	}
	if err := n.SetContent(content); err != nil {
		return nil, err
	}
	if err := a.Store.Save(n); err != nil {
		return nil, err
	}
	if err := a.Index.IndexNote(n); err != nil {
		return n, err
	}
	return n, nil
}

// DeleteNote removes a note from the store, the index, and the graph.
func (a *App) DeleteNote(idOrPrefix string) error {
	id, err := a.Store.Resolve(idOrPrefix)
	if err != nil {
		return err
	}
	if err := a.Store.Delete(id); err != nil {
		return err
	}
	if err := a.Index.Remove(id); err != nil {
		return err
	}
	return a.Links.RemoveNote(id)
}

// ListNotes returns all notes, newest first.
func (a *App) ListNotes() ([]*note.Note, error) {
	return a.Store.List()
}

// SearchNotes runs a full-text query.
func (a *App) SearchNotes(ctx context.Context, query string) ([]search.Result, error) {
	return a.Index.Search(ctx, query)
}

// LinkNotes connects two notes, resolving ID prefixes first. An
// existing link is strengthened instead.
func (a *App) LinkNotes(from, relation, to string) (string, string, error) {
	fromID, err := a.Store.Resolve(from)
	if err != nil {
		return "", "", err
	}
	toID, err := a.Store.Resolve(to)
	if err != nil {
		return "", "", err
	}
	return fromID, toID, a.Links.Connect(fromID, relation, toID, nil)
}

// NoteLinks lists the links around a note.
func (a *App) NoteLinks(idOrPrefix string) ([]synapse.Link, error) {
	id, err := a.Store.Resolve(idOrPrefix)
	if err != nil {
		return nil, err
	}
	return a.Links.Neighbors(id, synapse.Both)
}

// Reindex rebuilds the search index from disk.
func (a *App) Reindex(ctx context.Context) (int, error) {
	return a.Index.Reindex(ctx, a.Store)
}

// Report computes the current analytics snapshot.
func (a *App) Report() (*analytics.Report, error) {
	return analytics.Generate(a.Store, a.Links)
}

// WatchNotes starts the external-edit watcher. Changed files are
// reindexed; removed files are dropped from the index and the graph.
func (a *App) WatchNotes(ctx context.Context) error {
	w, err := storage.NewWatcher(a.Store, a.handleChange)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	a.watcher = w
	return nil
}

func (a *App) handleChange(c storage.Change) {
	switch c.Kind {
	case storage.ChangeRemove:
		id := storage.IDFromPath(c.Path)
		if err := a.Index.Remove(id); err != nil {
			logging.Watcher("failed to unindex %s: %v", id, err)
		}
		if err := a.Links.RemoveNote(id); err != nil {
			logging.Watcher("failed to unlink %s: %v", id, err)
		}
	default:
		id := storage.IDFromPath(c.Path)
		n, err := a.Store.Load(id)
		if err != nil {
			logging.Watcher("failed to load changed note %s: %v", id, err)
			return
		}
		if err := a.Index.IndexNote(n); err != nil {
			logging.Watcher("failed to reindex %s: %v", id, err)
		}
	}
}

// AutoDecay runs a background strength decay at the configured
// auto-save cadence until the context is cancelled.
func (a *App) AutoDecay(ctx context.Context, olderThan time.Duration, factor float64) {
	go func() {
		ticker := time.NewTicker(a.Config.GetAutoSaveInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := a.Links.Decay(olderThan, factor); err != nil {
					logging.Synapse("decay pass failed: %v", err)
				}
			}
		}
	}()
}
