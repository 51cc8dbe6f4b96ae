package utils

import (
	"strings"
	"testing"
)

func BenchmarkSanitizeFileName(b *testing.B) {
	input := "My Note: About Go/Rust *Performance* Patterns?"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SanitizeFileName(input)
	}
}

func BenchmarkContentHash(b *testing.B) {
	content := strings.Repeat("the quick brown fox jumps over the lazy dog\n", 200)
	b.SetBytes(int64(len(content)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ContentHash(content)
	}
}

func BenchmarkExtractTitle(b *testing.B) {
	content := "\n\nsome preamble text\n# The Actual Title\n\nbody follows here"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ExtractTitle(content)
	}
}
