// Package markdown encodes and decodes vault documents: a YAML-style
// frontmatter block followed by a sectioned Markdown body.
//
// This package is purely syntactic. Frontmatter values are raw strings in
// their original order, including fields this tool never wrote (a user may
// add their own fields in Obsidian). Typed interpretation of known fields
// belongs to the vault package.
package markdown

import (
	"errors"
	"strings"
)

// Delimiter marks the start and end of the frontmatter block.
const Delimiter = "---"

// Body section headings. Decode only splits on these exact headings, so a
// transcript containing arbitrary "#" or "##" lines passes through intact.
const (
	SectionSummary    = "Summary"
	SectionTakeaways  = "Top Takeaways"
	SectionProtocols  = "Protocols & Instructions"
	SectionTranscript = "Full Transcript"
)

// ErrNoFrontmatter indicates the document has no delimiter pair and cannot
// be decoded. This is distinct from I/O errors: the caller saw content, but
// the content is not a vault document.
var ErrNoFrontmatter = errors.New("markdown: missing frontmatter block")

// Field is a single frontmatter entry. Values are raw strings; quoting is
// resolved during decode and reapplied during encode.
type Field struct {
	Key   string
	Value string
}

// Document is the syntactic form of a vault file.
//
// An empty section string (or nil Takeaways) means the section is absent;
// absent sections are omitted on encode and yield no error on decode.
type Document struct {
	// Fields holds every frontmatter entry in file order.
	Fields []Field

	// Title is the "# " heading at the top of the body.
	Title string

	Summary    string
	Takeaways  []string
	Protocols  string
	Transcript string
}

// Get returns the value of the first frontmatter field with the given key.
func (d *Document) Get(key string) (string, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing field, or appends a new one.
func (d *Document) Set(key, value string) {
	for i, f := range d.Fields {
		if f.Key == key {
			d.Fields[i].Value = value
			return
		}
	}
	d.Fields = append(d.Fields, Field{Key: key, Value: value})
}

// Encode renders the document as Markdown with a frontmatter block.
func Encode(doc *Document) string {
	var b strings.Builder

	b.WriteString(Delimiter)
	b.WriteByte('\n')
	for _, f := range doc.Fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(quoteValue(f.Value))
		b.WriteByte('\n')
	}
	b.WriteString(Delimiter)
	b.WriteByte('\n')

	b.WriteString("\n# ")
	b.WriteString(doc.Title)
	b.WriteByte('\n')

	if doc.Summary != "" {
		writeSection(&b, SectionSummary, doc.Summary)
	}
	if len(doc.Takeaways) > 0 {
		var lines []string
		for _, t := range doc.Takeaways {
			lines = append(lines, "- "+t)
		}
		writeSection(&b, SectionTakeaways, strings.Join(lines, "\n"))
	}
	if doc.Protocols != "" {
		writeSection(&b, SectionProtocols, doc.Protocols)
	}
	if doc.Transcript != "" {
		writeSection(&b, SectionTranscript, doc.Transcript)
	}

	return b.String()
}

func writeSection(b *strings.Builder, heading, content string) {
	b.WriteString("\n## ")
	b.WriteString(heading)
	b.WriteString("\n\n")
	b.WriteString(content)
	b.WriteByte('\n')
}

// Decode parses a vault document. It returns ErrNoFrontmatter when no
// delimiter pair is found; it never returns a partial result on that path.
func Decode(text string) (*Document, error) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != Delimiter {
		return nil, ErrNoFrontmatter
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == Delimiter {
			end = i
			break
		}
	}
	if end == -1 {
		return nil, ErrNoFrontmatter
	}

	doc := &Document{}
	for _, line := range lines[1:end] {
		line = strings.TrimRight(line, "\r")
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		doc.Fields = append(doc.Fields, Field{
			Key:   strings.TrimSpace(key),
			Value: unquoteValue(strings.TrimSpace(value)),
		})
	}

	parseBody(doc, lines[end+1:])
	return doc, nil
}

// parseBody extracts the title heading and the known sections. Content under
// an unknown "##" heading is ignored rather than misattributed.
func parseBody(doc *Document, lines []string) {
	known := map[string]bool{
		SectionSummary:    true,
		SectionTakeaways:  true,
		SectionProtocols:  true,
		SectionTranscript: true,
	}

	current := ""
	var buf []string

	flush := func() {
		content := trimBlankEdges(buf)
		buf = nil
		switch current {
		case SectionSummary:
			doc.Summary = content
		case SectionTakeaways:
			for _, line := range strings.Split(content, "\n") {
				if rest, ok := strings.CutPrefix(line, "- "); ok {
					doc.Takeaways = append(doc.Takeaways, rest)
				}
			}
		case SectionProtocols:
			doc.Protocols = content
		case SectionTranscript:
			doc.Transcript = content
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		if heading, ok := strings.CutPrefix(trimmed, "## "); ok && known[heading] {
			flush()
			current = heading
			continue
		}
		if current == "" {
			if title, ok := strings.CutPrefix(trimmed, "# "); ok && doc.Title == "" {
				doc.Title = title
			}
			continue
		}
		buf = append(buf, trimmed)
	}
	flush()
}

// trimBlankEdges joins lines, dropping leading and trailing blank lines while
// keeping interior blank lines verbatim.
func trimBlankEdges(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// quoteValue wraps a value in double quotes when it would otherwise break the
// line-oriented "key: value" format, escaping embedded quotes and backslashes.
func quoteValue(v string) string {
	if !needsQuoting(v) {
		return v
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range v {
		switch r {
		case '"', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuoting(v string) bool {
	if v == "" {
		return false
	}
	if strings.ContainsAny(v, ":\"#\\") {
		return true
	}
	return v != strings.TrimSpace(v)
}

// unquoteValue reverses quoteValue. Unquoted values pass through untouched.
func unquoteValue(v string) string {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return v
	}
	inner := v[1 : len(v)-1]
	var b strings.Builder
	escaped := false
	for _, r := range inner {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
