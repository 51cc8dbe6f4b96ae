// Package logging provides categorized file-based logging for Zynapse.
// Logs are written under <data dir>/logs with one file per category and
// day. Logging is off until Initialize is called with debug enabled, so
// library code can log unconditionally without spamming production runs.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category identifies the subsystem a log line belongs to.
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup and environment validation
	CategoryConfig    Category = "config"    // Config load/save/validate
	CategoryStorage   Category = "storage"   // Note file operations and backups
	CategorySearch    Category = "search"    // Full-text index operations
	CategorySynapse   Category = "synapse"   // Connection graph operations
	CategoryAnalytics Category = "analytics" // Growth report computation
	CategoryTUI       Category = "tui"       // Terminal interface events
	CategoryWatcher   Category = "watcher"   // Filesystem watcher events
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Logger writes category-tagged lines to its own file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	sharedOut *os.File
	enabled   bool
	logLevel  = LevelInfo
	stateMu   sync.RWMutex
)

// Initialize points the logging system at a data directory and enables it.
// level is one of debug, info, warn, error. A non-empty file routes every
// category into that single file instead of per-category files. When debug
// is false this is a silent no-op and every Logger becomes a no-op too.
func Initialize(dataDir, level, file string, debug bool) error {
	target, err := initState(dataDir, level, file, debug)
	if err != nil || !debug {
		return err
	}
	Get(CategoryBoot).Info("=== Zynapse logging initialized (%s level=%s) ===", target, level)
	return nil
}

// initState applies the configuration under the state lock. The boot log
// line happens afterwards; Get re-acquires the lock.
func initState(dataDir, level, file string, debug bool) (string, error) {
	stateMu.Lock()
	defer stateMu.Unlock()

	enabled = debug
	switch level {
	case "debug":
		logLevel = LevelDebug
	case "info":
		logLevel = LevelInfo
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}

	if !debug {
		return "", nil
	}

	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return "", fmt.Errorf("failed to create log directory: %w", err)
		}
		out, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return "", fmt.Errorf("failed to open log file: %w", err)
		}
		sharedOut = out
		logsDir = ""
		return "file=" + file, nil
	}

	if dataDir == "" {
		return "", fmt.Errorf("data directory required")
	}

	logsDir = filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create logs directory: %w", err)
	}
	return "dir=" + logsDir, nil
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return enabled
}

// snapshot reads the mutable state under the lock so Get and the level
// checks never race with Initialize or CloseAll.
func snapshot() (on bool, dir string, shared *os.File, level int) {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return enabled, logsDir, sharedOut, logLevel
}

func minLevel() int {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return logLevel
}

// Get returns (or creates) the logger for a category. Returns a no-op
// logger when logging is disabled.
func Get(category Category) *Logger {
	on, dir, shared, _ := snapshot()
	if !on || (dir == "" && shared == nil) {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	if shared != nil {
		l := &Logger{
			category: category,
			logger:   log.New(shared, fmt.Sprintf("[%s] ", category), log.Ldate|log.Ltime|log.Lmicroseconds),
		}
		loggers[category] = l
		return l
	}

	// Date-prefixed filename for easy rotation by deletion.
	filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	file, err := os.OpenFile(filepath.Join(dir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open log file: %v\n", err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || minLevel() > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || minLevel() > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || minLevel() > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes every open log file. Call at shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)

	stateMu.Lock()
	if sharedOut != nil {
		sharedOut.Close()
		sharedOut = nil
	}
	stateMu.Unlock()
}

// Convenience helpers for the common categories.

func Boot(format string, args ...interface{})    { Get(CategoryBoot).Info(format, args...) }
func Storage(format string, args ...interface{}) { Get(CategoryStorage).Info(format, args...) }
func StorageDebug(format string, args ...interface{}) {
	Get(CategoryStorage).Debug(format, args...)
}
func Search(format string, args ...interface{}) { Get(CategorySearch).Info(format, args...) }
func SearchDebug(format string, args ...interface{}) {
	Get(CategorySearch).Debug(format, args...)
}
func Synapse(format string, args ...interface{}) { Get(CategorySynapse).Info(format, args...) }
func SynapseDebug(format string, args ...interface{}) {
	Get(CategorySynapse).Debug(format, args...)
}
func Watcher(format string, args ...interface{}) { Get(CategoryWatcher).Info(format, args...) }

// Timer measures an operation's duration and logs it on Stop.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop logs the elapsed time at debug level and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold warns when the operation exceeded the threshold.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
