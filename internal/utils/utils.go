// Package utils contains the small string and path helpers shared across
// Zynapse: filename slugging, content hashing, markdown title extraction,
// and filesystem safety checks.
package utils

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"lukechampine.com/blake3"

	"zynapse/internal/zerrors"
)

// SanitizeFileName converts an arbitrary string into a filename-safe slug.
// Alphanumerics, underscores, hyphens, and non-ASCII letters are kept;
// whitespace and common punctuation become hyphens; runs of hyphens
// collapse; leading and trailing hyphens are trimmed. The result is
// lowercase.
func SanitizeFileName(input string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(input) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			b.WriteRune(r)
		case strings.ContainsRune(" /\\:*?\"<>|.", r):
			b.WriteRune('-')
		default:
			// Drop everything else (control chars, emoji punctuation).
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	return strings.Join(parts, "-")
}

// ContentHash returns a short deterministic identifier for note content:
// the first 4 bytes of the BLAKE3 hash, hex encoded (8 characters).
func ContentHash(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:4])
}

// maxTitleBytes caps fallback titles so generated filenames stay short.
const maxTitleBytes = 50

// ExtractTitle derives a slugged title from markdown content. It prefers
// the first H1 heading, then the first H2, then the first non-heading
// line (capped at maxTitleBytes), and finally "untitled".
func ExtractTitle(content string) string {
	lines := strings.Split(content, "\n")

	for _, prefix := range []string{"# ", "## "} {
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, prefix) {
				title := strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
				if title != "" {
					return SanitizeFileName(title)
				}
			}
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if len(trimmed) > maxTitleBytes {
			trimmed = trimmed[:maxTitleBytes]
		}
		return SanitizeFileName(trimmed)
	}

	return "untitled"
}

// ValidateSafePath rejects paths that could escape the notes root or touch
// system files: directory traversal, Unix system prefixes, and Windows
// system directories.
func ValidateSafePath(path string) error {
	if strings.Contains(path, "..") {
		return zerrors.InvalidContent("path contains directory traversal: %s", path)
	}

	for _, prefix := range []string{"/etc/", "/sys/", "/proc/", "/dev/"} {
		if strings.HasPrefix(path, prefix) {
			return zerrors.InvalidContent("path accesses system directory: %s", path)
		}
	}

	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, `c:\windows`) || strings.HasPrefix(lower, `c:\system`) {
		return zerrors.InvalidContent("path accesses Windows system directory: %s", path)
	}

	return nil
}

// FormatFileSize renders a byte count in human-readable units.
func FormatFileSize(bytes uint64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	const threshold = 1024.0

	if bytes == 0 {
		return "0 B"
	}

	size := float64(bytes)
	unit := 0
	for size >= threshold && unit < len(units)-1 {
		size /= threshold
		unit++
	}

	if unit == 0 {
		return fmt.Sprintf("%d %s", bytes, units[unit])
	}
	return fmt.Sprintf("%.1f %s", size, units[unit])
}

// Timestamp returns the current UTC time in RFC 3339 format.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// IsBlank reports whether a string is empty or whitespace-only.
func IsBlank(input string) bool {
	return strings.TrimSpace(input) == ""
}

// TruncateString shortens input to maxLength, appending "..." when cut.
func TruncateString(input string, maxLength int) string {
	if len(input) <= maxLength {
		return input
	}
	if maxLength <= 3 {
		return "..."
	}
	return input[:maxLength-3] + "..."
}

// NormalizeLineEndings converts CRLF and bare CR line endings to LF.
func NormalizeLineEndings(input string) string {
	return strings.ReplaceAll(strings.ReplaceAll(input, "\r\n", "\n"), "\r", "\n")
}

// BackupFileName inserts a UTC timestamp before the extension so repeated
// backups of the same note sort chronologically.
func BackupFileName(originalPath string) string {
	stamp := time.Now().UTC().Format("20060102_150405")

	dir := filepath.Dir(originalPath)
	base := filepath.Base(originalPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if stem == "" {
		return filepath.Join(dir, "backup_"+stamp+ext)
	}
	return filepath.Join(dir, stem+"_"+stamp+ext)
}

// EnsureDir creates the directory (and parents) if needed, and fails when
// the path exists but is not a directory.
func EnsureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return zerrors.InvalidContent("path exists but is not a directory: %s", path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return zerrors.IO(err, fmt.Sprintf("failed to stat directory: %s", path))
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return zerrors.IO(err, fmt.Sprintf("failed to create directory: %s", path))
	}
	return nil
}

// RelativePath returns to relative to from, falling back to to itself when
// the paths share no common prefix.
func RelativePath(from, to string) string {
	rel, err := filepath.Rel(from, to)
	if err != nil || strings.HasPrefix(rel, "..") {
		return to
	}
	return rel
}
