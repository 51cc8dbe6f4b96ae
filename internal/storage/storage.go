// Package storage persists notes as markdown files under the configured
// notes root, with timestamped backups and a filesystem watcher for
// external edits.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"zynapse/internal/config"
	"zynapse/internal/logging"
	"zynapse/internal/note"
	"zynapse/internal/utils"
	"zynapse/internal/zerrors"
)

// Store reads and writes notes in a single flat directory. One note per
// file, named <id>.md.
type Store struct {
	root        string
	maxFileSize uint64
	backups     *BackupManager
}

// New opens (creating if needed) the notes root from the configuration.
func New(cfg *config.Config) (*Store, error) {
	if err := utils.EnsureDir(cfg.Storage.RootPath); err != nil {
		return nil, err
	}

	var backups *BackupManager
	if cfg.Storage.Backup.Enabled {
		var err error
		backups, err = NewBackupManager(cfg.Storage.Backup.Path, cfg.Storage.Backup.RetainCount)
		if err != nil {
			return nil, err
		}
	}

	return &Store{
		root:        cfg.Storage.RootPath,
		maxFileSize: cfg.Storage.MaxFileSize,
		backups:     backups,
	}, nil
}

// Root returns the notes directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the absolute path a note is stored at.
func (s *Store) Path(id string) string {
	return filepath.Join(s.root, id+".md")
}

// Exists reports whether a note with the given ID is on disk.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Create writes a new note. It fails if a note with the same ID already
// exists; use Save to update.
func (s *Store) Create(n *note.Note) error {
	if s.Exists(n.ID) {
		return zerrors.Storage("create", fmt.Errorf("note already exists: %s", n.ID))
	}
	return s.write(n)
}

// Save writes a note, overwriting any existing file. The previous
// version is backed up when backups are enabled.
func (s *Store) Save(n *note.Note) error {
	path := s.Path(n.ID)
	if s.backups != nil {
		if _, err := os.Stat(path); err == nil {
			if err := s.backups.Backup(path); err != nil {
				logging.Storage("backup before save failed for %s: %v", n.ID, err)
			}
		}
	}
	return s.write(n)
}

func (s *Store) write(n *note.Note) error {
	if err := utils.ValidateSafePath(n.FileName()); err != nil {
		return err
	}

	data, err := n.Render()
	if err != nil {
		return err
	}
	if uint64(len(data)) > s.maxFileSize {
		return zerrors.InvalidContent("note exceeds maximum file size (%s > %s)",
			utils.FormatFileSize(uint64(len(data))), utils.FormatFileSize(s.maxFileSize))
	}

	path := s.Path(n.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return zerrors.Storage("write", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return zerrors.Storage("write", err)
	}

	logging.StorageDebug("wrote note %s (%s)", n.ID, utils.FormatFileSize(uint64(len(data))))
	return nil
}

// Load reads a note by its full ID.
func (s *Store) Load(id string) (*note.Note, error) {
	if err := utils.ValidateSafePath(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, zerrors.NoteNotFound(id)
		}
		return nil, zerrors.Storage("read", err)
	}
	return note.Parse(data)
}

// Delete removes a note, backing it up first when backups are enabled.
func (s *Store) Delete(id string) error {
	path := s.Path(id)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return zerrors.NoteNotFound(id)
		}
		return zerrors.Storage("delete", err)
	}

	if s.backups != nil {
		if err := s.backups.Backup(path); err != nil {
			logging.Storage("backup before delete failed for %s: %v", id, err)
		}
	}

	if err := os.Remove(path); err != nil {
		return zerrors.Storage("delete", err)
	}
	logging.Storage("deleted note %s", id)
	return nil
}

// List loads every note in the store, newest first. Files that fail to
// parse are skipped with a log line rather than failing the whole
// listing; the notes directory may contain foreign files.
func (s *Store) List() ([]*note.Note, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, zerrors.Storage("list", err)
	}

	notes := make([]*note.Note, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, entry.Name()))
		if err != nil {
			logging.Storage("skipping unreadable file %s: %v", entry.Name(), err)
			continue
		}
		n, err := note.Parse(data)
		if err != nil {
			logging.Storage("skipping unparseable file %s: %v", entry.Name(), err)
			continue
		}
		notes = append(notes, n)
	}

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].Modified.After(notes[j].Modified)
	})
	return notes, nil
}

// IDs returns the IDs of all stored notes without parsing file bodies.
func (s *Store) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, zerrors.Storage("list", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".md"))
	}
	sort.Strings(ids)
	return ids, nil
}

// IDFromPath extracts the note ID from a file path in the notes root.
func IDFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".md")
}

// Resolve expands a unique ID prefix to a full note ID, so CLI users
// can type the 8-character hash instead of the whole ID.
func (s *Store) Resolve(prefix string) (string, error) {
	if s.Exists(prefix) {
		return prefix, nil
	}

	ids, err := s.IDs()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", zerrors.NoteNotFound(prefix)
	case 1:
		return matches[0], nil
	default:
		return "", zerrors.Storage("resolve",
			fmt.Errorf("ambiguous prefix %q matches %d notes", prefix, len(matches)))
	}
}
