package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"zynapse/internal/config"
	"zynapse/internal/note"
)

func benchStore(b *testing.B) *Store {
	b.Helper()
	home := b.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.RootPath = filepath.Join(home, "notes")
	cfg.Storage.Backup.Path = filepath.Join(home, "backups")
	cfg.Storage.Backup.Enabled = false

	s, err := New(cfg)
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	return s
}

func BenchmarkCreate(b *testing.B) {
	s := benchStore(b)
	body := strings.Repeat("benchmark note content line\n", 40)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n, err := note.New(fmt.Sprintf("bench note %d", i), fmt.Sprintf("%s\nseq %d", body, i))
		if err != nil {
			b.Fatal(err)
		}
		if err := s.Create(n); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoad(b *testing.B) {
	s := benchStore(b)
	n, err := note.New("bench load", strings.Repeat("content line\n", 100))
	if err != nil {
		b.Fatal(err)
	}
	if err := s.Create(n); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Load(n.ID); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkList(b *testing.B) {
	s := benchStore(b)
	for i := 0; i < 100; i++ {
		n, err := note.New(fmt.Sprintf("list note %d", i), fmt.Sprintf("body %d", i))
		if err != nil {
			b.Fatal(err)
		}
		if err := s.Create(n); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.List(); err != nil {
			b.Fatal(err)
		}
	}
}
