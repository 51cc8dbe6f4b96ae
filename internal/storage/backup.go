package storage

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"zynapse/internal/logging"
	"zynapse/internal/utils"
	"zynapse/internal/zerrors"
)

// BackupManager copies note files into a backup directory before they
// are overwritten or deleted, keeping at most retain copies per note.
type BackupManager struct {
	dir    string
	retain int
}

// NewBackupManager creates the backup directory if needed.
func NewBackupManager(dir string, retain int) (*BackupManager, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}
	return &BackupManager{dir: dir, retain: retain}, nil
}

// Backup copies path into the backup directory under a timestamped name
// and prunes old copies past the retention limit.
func (b *BackupManager) Backup(path string) error {
	// BackupFileName keeps the source directory; only the name moves.
	dst := filepath.Join(b.dir, filepath.Base(utils.BackupFileName(path)))
	if err := copyFile(path, dst); err != nil {
		return zerrors.Storage("backup", err)
	}
	logging.StorageDebug("backed up %s -> %s", filepath.Base(path), filepath.Base(dst))
	return b.prune(path)
}

// List returns backup file names for a note path, newest first.
func (b *BackupManager) List(path string) ([]string, error) {
	stem := backupStem(path)
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, zerrors.Storage("backup", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), stem+"_") {
			names = append(names, entry.Name())
		}
	}
	// Timestamps sort lexicographically, so reverse order is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// prune deletes the oldest backups of a note beyond the retention count.
func (b *BackupManager) prune(path string) error {
	names, err := b.List(path)
	if err != nil {
		return err
	}
	for _, name := range names[min(b.retain, len(names)):] {
		if err := os.Remove(filepath.Join(b.dir, name)); err != nil {
			return zerrors.Storage("backup", err)
		}
		logging.StorageDebug("pruned backup %s", name)
	}
	return nil
}

// backupStem is the note file name without its extension, matching the
// prefix utils.BackupFileName produces.
func backupStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
