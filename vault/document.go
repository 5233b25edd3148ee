// Package vault persists video summaries as Markdown documents in an
// Obsidian-compatible vault, one file per video, and reads them back.
//
// The vault is both a cache and a knowledge base: files are edited by hand
// in Obsidian, so rewrites must preserve everything a human may have touched.
package vault

import (
	"strings"
	"time"

	"ytvault/markdown"
)

// Frontmatter keys written by this tool. Anything else found in a file is a
// user-added field and is carried through rewrites untouched.
const (
	keyVideoID  = "video_id"
	keyTitle    = "title"
	keyChannel  = "channel"
	keyURL      = "url"
	keyCachedAt = "cached_at"
	keyRead     = "read"
	keyStarred  = "starred"
)

// Summary holds the sectioned output of the summarizer.
type Summary struct {
	// Overview is the short prose summary.
	Overview string
	// Takeaways are the bulleted top takeaways, in order.
	Takeaways []string
	// Protocols lists explicit protocols and instructions, or the literal
	// "None mentioned." when the video had none.
	Protocols string
}

// Empty reports whether the summary carries no content.
func (s Summary) Empty() bool {
	return s.Overview == "" && len(s.Takeaways) == 0 && s.Protocols == ""
}

// Document is one cached video: metadata, summary, transcript, and the
// user-editable flags.
type Document struct {
	VideoID  string
	Title    string
	Channel  string
	URL      string
	CachedAt time.Time // set on first save, never rewritten

	// Read and Starred belong to the user. After the first save the store
	// only ever copies the value already present in the file.
	Read    bool
	Starred bool

	Summary    Summary
	Transcript string

	// Extra holds frontmatter fields this tool does not recognize,
	// in file order.
	Extra []markdown.Field
}

// VideoURL returns the canonical watch URL for the document's video.
func (d *Document) VideoURL() string {
	return "https://www.youtube.com/watch?v=" + d.VideoID
}

// parseBool is the single coercion rule for boolean frontmatter values:
// "true" in any case is true, anything else (including absence) is false.
func parseBool(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// decodeDocument parses raw file content into a typed document.
func decodeDocument(text string) (*Document, error) {
	md, err := markdown.Decode(text)
	if err != nil {
		return nil, err
	}
	return fromMarkdown(md), nil
}

// encodeDocument renders a typed document as raw file content.
func encodeDocument(d *Document) string {
	return markdown.Encode(d.toMarkdown())
}

// fromMarkdown builds a typed document from decoded syntax, applying boolean
// and timestamp coercion and collecting unknown fields.
func fromMarkdown(md *markdown.Document) *Document {
	doc := &Document{
		Summary: Summary{
			Overview:  md.Summary,
			Takeaways: md.Takeaways,
			Protocols: md.Protocols,
		},
		Transcript: md.Transcript,
	}

	for _, f := range md.Fields {
		switch f.Key {
		case keyVideoID:
			doc.VideoID = f.Value
		case keyTitle:
			doc.Title = f.Value
		case keyChannel:
			doc.Channel = f.Value
		case keyURL:
			doc.URL = f.Value
		case keyCachedAt:
			if t, err := time.Parse(time.RFC3339, f.Value); err == nil {
				doc.CachedAt = t
			}
		case keyRead:
			doc.Read = parseBool(f.Value)
		case keyStarred:
			doc.Starred = parseBool(f.Value)
		default:
			doc.Extra = append(doc.Extra, f)
		}
	}

	if doc.Title == "" {
		doc.Title = md.Title
	}
	return doc
}

// toMarkdown renders the typed document back to syntax. Known fields come
// first in a fixed order, then the user's extra fields.
func (d *Document) toMarkdown() *markdown.Document {
	url := d.URL
	if url == "" {
		url = d.VideoURL()
	}

	fields := []markdown.Field{
		{Key: keyVideoID, Value: d.VideoID},
		{Key: keyTitle, Value: d.Title},
	}
	if d.Channel != "" {
		fields = append(fields, markdown.Field{Key: keyChannel, Value: d.Channel})
	}
	fields = append(fields,
		markdown.Field{Key: keyURL, Value: url},
		markdown.Field{Key: keyCachedAt, Value: d.CachedAt.UTC().Format(time.RFC3339)},
		markdown.Field{Key: keyRead, Value: formatBool(d.Read)},
		markdown.Field{Key: keyStarred, Value: formatBool(d.Starred)},
	)
	fields = append(fields, d.Extra...)

	return &markdown.Document{
		Fields:     fields,
		Title:      d.Title,
		Summary:    d.Summary.Overview,
		Takeaways:  d.Summary.Takeaways,
		Protocols:  d.Summary.Protocols,
		Transcript: d.Transcript,
	}
}
