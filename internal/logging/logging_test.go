package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestDisabledLoggingIsNoOp(t *testing.T) {
	if err := Initialize("", "info", "", false); err != nil {
		t.Fatalf("Initialize disabled: %v", err)
	}
	t.Cleanup(CloseAll)

	l := Get(CategoryStorage)
	// Must not panic or create files.
	l.Info("ignored %d", 1)
	l.Error("ignored")
	if Enabled() {
		t.Error("Enabled should report false")
	}
}

func TestEnabledLoggingWritesFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, "debug", "", true); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() {
		CloseAll()
		// Reset to disabled so other tests are unaffected.
		_ = Initialize("", "info", "", false)
	})

	Storage("note created: %s", "abc123")
	StorageDebug("detail line")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	if err != nil {
		t.Fatalf("reading logs dir: %v", err)
	}

	var storageLog string
	for _, e := range entries {
		if strings.Contains(e.Name(), "storage") {
			storageLog = filepath.Join(dir, "logs", e.Name())
		}
	}
	if storageLog == "" {
		t.Fatalf("no storage log file in %v", entries)
	}

	data, err := os.ReadFile(storageLog)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "note created: abc123") {
		t.Errorf("log file missing info line: %s", data)
	}
	if !strings.Contains(string(data), "[DEBUG] detail line") {
		t.Errorf("log file missing debug line at debug level: %s", data)
	}
}

func TestConcurrentLoggingAndReinitialize(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, "debug", "", true); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() {
		CloseAll()
		_ = Initialize("", "info", "", false)
	})

	// Loggers may be fetched while the state is being swapped; run under
	// the race detector.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Get(CategoryStorage).Info("line %d", j)
				Get(CategorySearch).Debug("line %d", j)
			}
		}()
	}
	_ = Initialize(dir, "warn", "", true)
	_ = Initialize("", "info", "", false)
	wg.Wait()
}

func TestSingleFileOverride(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "zynapse.log")
	if err := Initialize("", "info", logFile, true); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() {
		CloseAll()
		_ = Initialize("", "info", "", false)
	})

	Storage("stored %s", "one")
	Search("queried %s", "two")
	CloseAll()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "[storage]") || !strings.Contains(string(data), "stored one") {
		t.Errorf("log file missing storage line: %s", data)
	}
	if !strings.Contains(string(data), "[search]") || !strings.Contains(string(data), "queried two") {
		t.Errorf("log file missing search line: %s", data)
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()
	if err := Initialize(dir, "warn", "", true); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() {
		CloseAll()
		_ = Initialize("", "info", "", false)
	})

	l := Get(CategorySearch)
	l.Info("should be filtered")
	l.Warn("should appear")
	CloseAll()

	entries, _ := os.ReadDir(filepath.Join(dir, "logs"))
	for _, e := range entries {
		if !strings.Contains(e.Name(), "search") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, "logs", e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(data), "should be filtered") {
			t.Error("info line should be filtered at warn level")
		}
		if !strings.Contains(string(data), "should appear") {
			t.Error("warn line missing")
		}
	}
}
