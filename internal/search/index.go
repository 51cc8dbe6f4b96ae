// Package search maintains a SQLite FTS5 full-text index over notes and
// answers ranked queries against it.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"zynapse/internal/config"
	"zynapse/internal/logging"
	"zynapse/internal/note"
	"zynapse/internal/storage"
	"zynapse/internal/utils"
	"zynapse/internal/zerrors"
)

// reindexWorkers bounds concurrent note loads during a full rebuild.
const reindexWorkers = 4

// Result is a single search hit, best matches first.
type Result struct {
	ID      string
	Title   string
	Snippet string
	Rank    float64
}

// Index wraps the FTS5 database. Safe for concurrent use; the
// connection pool is pinned to one connection as SQLite prefers.
type Index struct {
	db         *sql.DB
	maxResults int
	fuzzy      bool
	timeout    time.Duration
}

// Open opens or creates the search index database.
func Open(cfg *config.Config) (*Index, error) {
	if err := utils.EnsureDir(cfg.Search.IndexPath); err != nil {
		return nil, err
	}

	path := cfg.IndexDBPath()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, zerrors.Search(err, "failed to open index database")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.SearchDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.SearchDebug("failed to set journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.SearchDebug("failed to set synchronous=NORMAL: %v", err)
	}

	ix := &Index{
		db:         db,
		maxResults: cfg.Search.MaxResults,
		fuzzy:      cfg.Search.FuzzySearch,
		timeout:    cfg.GetSearchTimeout(),
	}
	if err := ix.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Search("opened index at %s", path)
	return ix, nil
}

func (ix *Index) initialize() error {
	_, err := ix.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			id UNINDEXED,
			title,
			tags,
			content
		)`)
	if err != nil {
		return zerrors.Search(err, "failed to create fts table")
	}
	return nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// IndexNote adds or refreshes a note in the index.
func (ix *Index) IndexNote(n *note.Note) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return zerrors.Search(err, "failed to begin index transaction")
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM notes_fts WHERE id = ?", n.ID); err != nil {
		return zerrors.Search(err, "failed to replace index entry")
	}
	_, err = tx.Exec(
		"INSERT INTO notes_fts (id, title, tags, content) VALUES (?, ?, ?, ?)",
		n.ID, n.Title, strings.Join(n.Tags, " "), n.Content,
	)
	if err != nil {
		return zerrors.Search(err, "failed to index note")
	}
	if err := tx.Commit(); err != nil {
		return zerrors.Search(err, "failed to commit index entry")
	}

	logging.SearchDebug("indexed note %s", n.ID)
	return nil
}

// Remove drops a note from the index. Removing an unknown ID is not an
// error; deletes may race a reindex.
func (ix *Index) Remove(id string) error {
	if _, err := ix.db.Exec("DELETE FROM notes_fts WHERE id = ?", id); err != nil {
		return zerrors.Search(err, "failed to remove index entry")
	}
	return nil
}

// Count returns the number of indexed notes.
func (ix *Index) Count() (int, error) {
	var n int
	if err := ix.db.QueryRow("SELECT COUNT(*) FROM notes_fts").Scan(&n); err != nil {
		return 0, zerrors.Search(err, "failed to count index entries")
	}
	return n, nil
}

// Search runs a ranked full-text query, bounded by the configured
// result limit and timeout.
func (ix *Index) Search(ctx context.Context, query string) ([]Result, error) {
	if utils.IsBlank(query) {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, ix.timeout)
	defer cancel()

	match := buildMatchExpr(query, ix.fuzzy)
	rows, err := ix.db.QueryContext(ctx, `
		SELECT id, title, snippet(notes_fts, 3, '', '', '...', 12), rank
		FROM notes_fts
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, match, ix.maxResults)
	if err != nil {
		if ctx.Err() != nil {
			return nil, zerrors.Search(ctx.Err(), "search timed out")
		}
		return nil, zerrors.Search(err, "query failed")
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet, &r.Rank); err != nil {
			return nil, zerrors.Search(err, "failed to scan result")
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, zerrors.Search(err, "failed to read results")
	}

	logging.SearchDebug("query %q matched %d notes", query, len(results))
	return results, nil
}

// buildMatchExpr converts a user query into an FTS5 MATCH expression.
// Terms are quoted so punctuation cannot be misread as FTS syntax; in
// fuzzy mode the final term becomes a prefix match, so searches update
// usefully while the user is still typing.
func buildMatchExpr(query string, fuzzy bool) string {
	terms := strings.Fields(query)
	parts := make([]string, 0, len(terms))
	for i, term := range terms {
		quoted := `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
		if fuzzy && i == len(terms)-1 {
			quoted += "*"
		}
		parts = append(parts, quoted)
	}
	return strings.Join(parts, " ")
}

// Reindex rebuilds the index from the store, loading notes with a small
// worker pool. Returns the number of notes indexed.
func (ix *Index) Reindex(ctx context.Context, st *storage.Store) (int, error) {
	ids, err := st.IDs()
	if err != nil {
		return 0, err
	}

	if _, err := ix.db.Exec("DELETE FROM notes_fts"); err != nil {
		return 0, zerrors.Search(err, "failed to clear index")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reindexWorkers)
	notes := make(chan *note.Note, len(ids))

	for _, id := range ids {
		g.Go(func() error {
			n, err := st.Load(id)
			if err != nil {
				return fmt.Errorf("load %s: %w", id, err)
			}
			select {
			case notes <- n:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	loadErr := make(chan error, 1)
	go func() {
		loadErr <- g.Wait()
		close(notes)
	}()

	count := 0
	for n := range notes {
		if err := ix.IndexNote(n); err != nil {
			return count, err
		}
		count++
	}
	if err := <-loadErr; err != nil {
		return count, err
	}

	logging.Search("reindexed %d notes", count)
	return count, nil
}
