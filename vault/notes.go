package vault

import (
	"os"
	"path/filepath"
)

// Dataview helper notes created once at the vault root. They give Obsidian
// users a rolling inbox of unread summaries and a list of starred ones.
const (
	dailyReviewNote = `---
---
# Daily Review

` + "```dataview" + `
TABLE title, channel, cached_at
FROM "Summaries"
WHERE read != true
SORT cached_at DESC
` + "```" + `
`

	starredNote = `---
---
# Starred

` + "```dataview" + `
TABLE title, channel, cached_at
FROM "Summaries"
WHERE starred = true
SORT cached_at DESC
` + "```" + `
`
)

// EnsureReviewNotes creates the Daily Review and Starred Dataview notes at
// the vault root if they do not already exist. Existing notes are left
// alone: users customize these queries.
func (s *Store) EnsureReviewNotes() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return &StoreError{Op: "save", Err: err}
	}

	notes := map[string]string{
		"Daily Review.md": dailyReviewNote,
		"Starred.md":      starredNote,
	}
	for name, content := range notes {
		path := filepath.Join(s.root, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return &StoreError{Op: "save", Err: err}
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return &StoreError{Op: "save", Err: err}
		}
	}
	return nil
}
