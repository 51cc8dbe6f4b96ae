// Package note defines the core note document: markdown content with a
// YAML frontmatter header carrying identity and timestamps.
package note

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"zynapse/internal/utils"
	"zynapse/internal/zerrors"
)

const frontmatterDelimiter = "---"

// canonicalBody normalizes line endings and drops trailing newlines.
// Content never carries a trailing newline in memory; Render adds the
// final one, and Parse strips it, so a render/parse cycle is lossless.
func canonicalBody(content string) string {
	return strings.TrimRight(utils.NormalizeLineEndings(content), "\n")
}

// Note is a single knowledge entry. Content is the markdown body without
// the frontmatter header; Render reassembles the on-disk form.
type Note struct {
	ID       string    `yaml:"id"`
	Title    string    `yaml:"title"`
	Tags     []string  `yaml:"tags,omitempty"`
	Created  time.Time `yaml:"created"`
	Modified time.Time `yaml:"modified"`

	Content string `yaml:"-"`
}

// New builds a note from a title and markdown content. If title is blank
// it is derived from the content. The ID combines a short content hash
// with a slug of the title, so IDs stay stable for unchanged content and
// remain readable in file listings.
func New(title, content string) (*Note, error) {
	if utils.IsBlank(content) {
		return nil, zerrors.InvalidContent("note content cannot be empty")
	}

	content = canonicalBody(content)

	slug := utils.SanitizeFileName(title)
	if slug == "" {
		slug = utils.ExtractTitle(content)
	}
	if title == "" {
		title = strings.ReplaceAll(slug, "-", " ")
	}

	now := time.Now().UTC().Truncate(time.Second)
	return &Note{
		ID:       utils.ContentHash(content) + "-" + slug,
		Title:    title,
		Created:  now,
		Modified: now,
		Content:  content,
	}, nil
}

// Parse reads a note from its on-disk representation. Files without a
// frontmatter header are rejected; notes are always written by Render
// and a missing header means the file was not created by us.
func Parse(data []byte) (*Note, error) {
	text := utils.NormalizeLineEndings(string(data))

	if !strings.HasPrefix(text, frontmatterDelimiter+"\n") {
		return nil, zerrors.InvalidContent("missing frontmatter header")
	}
	rest := text[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		return nil, zerrors.InvalidContent("unterminated frontmatter header")
	}

	header := rest[:end]
	body := rest[end+len(frontmatterDelimiter)+1:]
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimRight(body, "\n")

	var n Note
	if err := yaml.Unmarshal([]byte(header), &n); err != nil {
		return nil, zerrors.Serialization(err, "invalid frontmatter")
	}
	if n.ID == "" {
		return nil, zerrors.InvalidContent("frontmatter missing note id")
	}
	n.Content = body
	return &n, nil
}

// Render produces the canonical on-disk form: frontmatter followed by a
// blank line and the markdown body.
func (n *Note) Render() ([]byte, error) {
	header, err := yaml.Marshal(n)
	if err != nil {
		return nil, zerrors.Serialization(err, "failed to encode frontmatter")
	}

	var b strings.Builder
	b.WriteString(frontmatterDelimiter)
	b.WriteByte('\n')
	b.Write(header)
	b.WriteString(frontmatterDelimiter)
	b.WriteString("\n\n")
	b.WriteString(n.Content)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// FileName returns the relative file name the note is stored under.
func (n *Note) FileName() string {
	return n.ID + ".md"
}

// Touch updates the modified timestamp. The ID is intentionally left
// alone so links and the search index stay valid across edits.
func (n *Note) Touch() {
	n.Modified = time.Now().UTC().Truncate(time.Second)
}

// SetContent replaces the body and touches the note.
func (n *Note) SetContent(content string) error {
	if utils.IsBlank(content) {
		return zerrors.InvalidContent("note content cannot be empty")
	}
	n.Content = canonicalBody(content)
	n.Touch()
	return nil
}

// HasTag reports whether the note carries the given tag.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends a tag if it is not already present.
func (n *Note) AddTag(tag string) {
	if tag == "" || n.HasTag(tag) {
		return
	}
	n.Tags = append(n.Tags, tag)
}

// WordCount counts whitespace-separated words in the body.
func (n *Note) WordCount() int {
	return len(strings.Fields(n.Content))
}

// Summary returns the first non-heading line of the body, truncated to
// maxRunes runes, for list views.
func (n *Note) Summary(maxRunes int) string {
	for _, line := range strings.Split(n.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if utf8.RuneCountInString(trimmed) > maxRunes {
			// Cut on rune boundaries; byte slicing can split multibyte
			// characters in the middle.
			if maxRunes <= 3 {
				return "..."
			}
			return string([]rune(trimmed)[:maxRunes-3]) + "..."
		}
		return trimmed
	}
	return ""
}

// String implements fmt.Stringer for log output.
func (n *Note) String() string {
	return fmt.Sprintf("%s (%s, %d words)", n.Title, n.ID, n.WordCount())
}
