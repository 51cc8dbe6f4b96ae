// Package synapse stores weighted links between notes. Links strengthen
// each time they fire and decay when left alone, so the graph gradually
// reflects which associations the user actually follows.
package synapse

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"zynapse/internal/config"
	"zynapse/internal/logging"
	"zynapse/internal/utils"
	"zynapse/internal/zerrors"
)

const (
	// initialStrength is assigned when a link is first created.
	initialStrength = 0.3
	// learningRate controls how fast repeated firing approaches the
	// strength ceiling of 1.0.
	learningRate = 0.2
	// defaultMaxDepth bounds path traversal when the caller passes 0.
	defaultMaxDepth = 5
)

// Link is a weighted edge between two notes.
type Link struct {
	NoteA     string
	Relation  string
	NoteB     string
	Strength  float64
	FireCount int
	LastFired time.Time
	Metadata  map[string]any
}

// Direction selects which edges Neighbors returns.
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
	Both     Direction = "both"
)

// Store persists links in the same SQLite database as the search index.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens the link store, creating the schema if needed.
func Open(cfg *config.Config) (*Store, error) {
	if err := utils.EnsureDir(cfg.Search.IndexPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.IndexDBPath())
	if err != nil {
		return nil, zerrors.Storage("open", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.SynapseDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.SynapseDebug("failed to set journal_mode=WAL: %v", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS synapses (
			note_a     TEXT NOT NULL,
			relation   TEXT NOT NULL,
			note_b     TEXT NOT NULL,
			strength   REAL NOT NULL,
			fire_count INTEGER NOT NULL DEFAULT 0,
			last_fired TEXT NOT NULL,
			metadata   TEXT,
			PRIMARY KEY (note_a, relation, note_b)
		);
		CREATE INDEX IF NOT EXISTS idx_synapses_note_b ON synapses(note_b);
	`)
	if err != nil {
		return zerrors.Storage("init", err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Connect creates a link between two notes, or fires the existing one.
func (s *Store) Connect(noteA, relation, noteB string, metadata map[string]any) error {
	if noteA == "" || relation == "" || noteB == "" {
		return zerrors.InvalidContent("link requires note, relation, and target")
	}
	if noteA == noteB {
		return zerrors.InvalidContent("a note cannot link to itself")
	}

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return zerrors.Serialization(err, "failed to encode link metadata")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		INSERT INTO synapses (note_a, relation, note_b, strength, fire_count, last_fired, metadata)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (note_a, relation, note_b) DO NOTHING`,
		noteA, relation, noteB, initialStrength, now, string(metaJSON),
	)
	if err != nil {
		return zerrors.Storage("connect", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.fireLocked(noteA, relation, noteB)
	}

	logging.Synapse("connected %s -[%s]-> %s", noteA, relation, noteB)
	return nil
}

// Fire strengthens an existing link. Each firing moves the strength a
// fixed fraction of the remaining distance to 1.0, so it rises quickly
// at first and saturates.
func (s *Store) Fire(noteA, relation, noteB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fireLocked(noteA, relation, noteB)
}

func (s *Store) fireLocked(noteA, relation, noteB string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		UPDATE synapses
		SET strength = strength + ? * (1.0 - strength),
		    fire_count = fire_count + 1,
		    last_fired = ?
		WHERE note_a = ? AND relation = ? AND note_b = ?`,
		learningRate, now, noteA, relation, noteB,
	)
	if err != nil {
		return zerrors.Storage("fire", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return zerrors.Storage("fire", fmt.Errorf("no link %s -[%s]-> %s", noteA, relation, noteB))
	}
	logging.SynapseDebug("fired %s -[%s]-> %s", noteA, relation, noteB)
	return nil
}

// Decay weakens every link that has not fired since the cutoff by the
// given factor (0 < factor < 1) and removes links that have faded below
// a usable strength.
func (s *Store) Decay(olderThan time.Duration, factor float64) (int, error) {
	if factor <= 0 || factor >= 1 || math.IsNaN(factor) {
		return 0, zerrors.InvalidContent("decay factor must be between 0 and 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	res, err := s.db.Exec(
		"UPDATE synapses SET strength = strength * ? WHERE last_fired < ?",
		factor, cutoff,
	)
	if err != nil {
		return 0, zerrors.Storage("decay", err)
	}
	decayed, _ := res.RowsAffected()

	if _, err := s.db.Exec("DELETE FROM synapses WHERE strength < 0.01"); err != nil {
		return int(decayed), zerrors.Storage("decay", err)
	}
	logging.Synapse("decayed %d links", decayed)
	return int(decayed), nil
}

// Neighbors returns the links touching a note, strongest first.
func (s *Store) Neighbors(id string, dir Direction) ([]Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.neighborsLocked(id, dir)
}

func (s *Store) neighborsLocked(id string, dir Direction) ([]Link, error) {
	var query string
	var args []any
	switch dir {
	case Outgoing:
		query = "SELECT note_a, relation, note_b, strength, fire_count, last_fired, metadata FROM synapses WHERE note_a = ? ORDER BY strength DESC"
		args = []any{id}
	case Incoming:
		query = "SELECT note_a, relation, note_b, strength, fire_count, last_fired, metadata FROM synapses WHERE note_b = ? ORDER BY strength DESC"
		args = []any{id}
	default:
		query = "SELECT note_a, relation, note_b, strength, fire_count, last_fired, metadata FROM synapses WHERE note_a = ? OR note_b = ? ORDER BY strength DESC"
		args = []any{id, id}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, zerrors.Storage("neighbors", err)
	}
	defer rows.Close()
	return scanLinks(rows)
}

// Path finds a chain of links from one note to another with BFS,
// treating links as undirected associations. Returns nil when no path
// exists within maxDepth hops.
func (s *Store) Path(from, to string, maxDepth int) ([]Link, error) {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type queueItem struct {
		id    string
		depth int
	}

	// cameFrom records the link used to reach each note; nil marks the
	// start. Reconstructing from this map keeps memory at O(notes)
	// rather than O(edges * depth).
	cameFrom := make(map[string]*Link)
	cameFrom[from] = nil
	queue := []queueItem{{id: from, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.id == to {
			path := make([]Link, 0, current.depth)
			for id := to; cameFrom[id] != nil; {
				link := cameFrom[id]
				path = append(path, *link)
				if link.NoteA == id {
					id = link.NoteB
				} else {
					id = link.NoteA
				}
			}
			// Backtracking built the path end-to-start.
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			logging.SynapseDebug("path %s -> %s found with %d hops", from, to, len(path))
			return path, nil
		}

		if current.depth >= maxDepth {
			continue
		}

		links, err := s.neighborsLocked(current.id, Both)
		if err != nil {
			return nil, err
		}
		for _, link := range links {
			next := link.NoteB
			if next == current.id {
				next = link.NoteA
			}
			if _, visited := cameFrom[next]; !visited {
				l := link
				cameFrom[next] = &l
				queue = append(queue, queueItem{id: next, depth: current.depth + 1})
			}
		}
	}

	logging.SynapseDebug("no path %s -> %s within %d hops", from, to, maxDepth)
	return nil, nil
}

// Disconnect removes a single link.
func (s *Store) Disconnect(noteA, relation, noteB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		"DELETE FROM synapses WHERE note_a = ? AND relation = ? AND note_b = ?",
		noteA, relation, noteB,
	)
	if err != nil {
		return zerrors.Storage("disconnect", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return zerrors.Storage("disconnect", fmt.Errorf("no link %s -[%s]-> %s", noteA, relation, noteB))
	}
	return nil
}

// RemoveNote deletes every link touching a note. Called when the note
// itself is deleted.
func (s *Store) RemoveNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM synapses WHERE note_a = ? OR note_b = ?", id, id); err != nil {
		return zerrors.Storage("remove", err)
	}
	return nil
}

// All returns every link in the store, strongest first.
func (s *Store) All() ([]Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT note_a, relation, note_b, strength, fire_count, last_fired, metadata FROM synapses ORDER BY strength DESC",
	)
	if err != nil {
		return nil, zerrors.Storage("list", err)
	}
	defer rows.Close()
	return scanLinks(rows)
}

// Count returns the number of links.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM synapses").Scan(&n); err != nil {
		return 0, zerrors.Storage("count", err)
	}
	return n, nil
}

func scanLinks(rows *sql.Rows) ([]Link, error) {
	var links []Link
	for rows.Next() {
		var link Link
		var lastFired string
		var metaJSON sql.NullString
		if err := rows.Scan(&link.NoteA, &link.Relation, &link.NoteB,
			&link.Strength, &link.FireCount, &lastFired, &metaJSON); err != nil {
			return nil, zerrors.Storage("scan", err)
		}
		if t, err := time.Parse(time.RFC3339, lastFired); err == nil {
			link.LastFired = t
		}
		if metaJSON.Valid && metaJSON.String != "" && metaJSON.String != "null" {
			if err := json.Unmarshal([]byte(metaJSON.String), &link.Metadata); err != nil {
				logging.Synapse("bad metadata on %s -[%s]-> %s: %v",
					link.NoteA, link.Relation, link.NoteB, err)
			}
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, zerrors.Storage("scan", err)
	}
	return links, nil
}
