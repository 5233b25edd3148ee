package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// summariesDir is the subtree under the vault root that holds the cached
// documents, organized by channel subdirectory.
const summariesDir = "Summaries"

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates no document exists for the video id.
	ErrNotFound = errors.New("vault: document not found")
)

// StoreError wraps store failures with operation and video context.
// Use errors.As() to extract it:
//
//	var storeErr *vault.StoreError
//	if errors.As(err, &storeErr) {
//		fmt.Printf("%s of %s failed: %v\n", storeErr.Op, storeErr.VideoID, storeErr.Err)
//	}
type StoreError struct {
	// Op is the operation that failed ("lookup", "save").
	Op string
	// VideoID is the video the operation was for.
	VideoID string
	// Err is the underlying error.
	Err error
}

func (e *StoreError) Error() string {
	if e.VideoID != "" {
		return fmt.Sprintf("vault: %s %s: %v", e.Op, e.VideoID, e.Err)
	}
	return fmt.Sprintf("vault: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store maps video ids to Markdown documents under a vault root.
// It is not safe for concurrent use; the vault is a single-process store.
type Store struct {
	root   string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a store rooted at the given vault directory.
func NewStore(root string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: root, logger: logger, now: time.Now}
}

// Root returns the vault root directory.
func (s *Store) Root() string { return s.root }

// Lookup finds and decodes the document for a video id.
// It returns ErrNotFound (wrapped) when no file embeds "[{id}].md".
func (s *Store) Lookup(videoID string) (*Document, error) {
	path, err := s.find(videoID)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &StoreError{Op: "lookup", VideoID: videoID, Err: err}
	}

	doc, err := decodeDocument(string(raw))
	if err != nil {
		return nil, &StoreError{Op: "lookup", VideoID: videoID, Err: err}
	}
	if doc.VideoID == "" {
		doc.VideoID = videoID
	}
	return doc, nil
}

// Contains reports whether a document exists for the video id. Lookup or
// decode failures count as absent.
func (s *Store) Contains(videoID string) bool {
	_, err := s.find(videoID)
	return err == nil
}

// Save writes the document, merging with any existing file for the same
// video id. On merge, the existing read/starred flags, unknown frontmatter
// fields, and cached_at are kept; title, channel, url, summary, and
// transcript are overwritten. Incoming empty values never clobber existing
// ones, so a transcript-only save before metadata arrives keeps the title.
func (s *Store) Save(doc *Document) error {
	merged := *doc

	existingPath, findErr := s.find(doc.VideoID)
	if findErr != nil && !errors.Is(findErr, ErrNotFound) {
		return findErr
	}

	if findErr == nil {
		raw, err := os.ReadFile(existingPath)
		if err != nil {
			return &StoreError{Op: "save", VideoID: doc.VideoID, Err: err}
		}
		existing, err := decodeDocument(string(raw))
		if err != nil {
			return &StoreError{Op: "save", VideoID: doc.VideoID, Err: err}
		}
		merged = *merge(existing, doc)
	} else {
		// First save of this video.
		if merged.CachedAt.IsZero() {
			merged.CachedAt = s.now().UTC()
		}
		merged.Read = false
		merged.Starred = false
	}

	target := s.documentPath(&merged)
	if err := s.writeAtomic(target, encodeDocument(&merged)); err != nil {
		return &StoreError{Op: "save", VideoID: doc.VideoID, Err: err}
	}

	// Metadata arriving later can move a file into its channel directory.
	if findErr == nil && existingPath != target {
		if err := os.Remove(existingPath); err != nil {
			s.logger.Warn("vault: could not remove renamed document",
				"video_id", doc.VideoID, "path", existingPath, "error", err)
		}
	}

	return nil
}

// merge combines an existing on-disk document with incoming content.
func merge(existing, incoming *Document) *Document {
	out := &Document{
		VideoID:    existing.VideoID,
		Title:      incoming.Title,
		Channel:    incoming.Channel,
		URL:        incoming.URL,
		CachedAt:   existing.CachedAt,
		Read:       existing.Read,
		Starred:    existing.Starred,
		Summary:    incoming.Summary,
		Transcript: incoming.Transcript,
		Extra:      existing.Extra,
	}
	if out.VideoID == "" {
		out.VideoID = incoming.VideoID
	}
	if out.Title == "" {
		out.Title = existing.Title
	}
	if out.Channel == "" {
		out.Channel = existing.Channel
	}
	if out.URL == "" {
		out.URL = existing.URL
	}
	if out.Summary.Empty() {
		out.Summary = existing.Summary
	}
	if out.Transcript == "" {
		out.Transcript = existing.Transcript
	}
	if out.CachedAt.IsZero() {
		out.CachedAt = incoming.CachedAt
	}
	return out
}

// documentPath computes the deterministic file path:
// {root}/Summaries/{sanitized_channel}/{sanitized_title} [{video_id}].md
func (s *Store) documentPath(doc *Document) string {
	dir := filepath.Join(s.root, summariesDir)
	if doc.Channel != "" {
		dir = filepath.Join(dir, SanitizeFilename(doc.Channel))
	}

	name := "[" + doc.VideoID + "].md"
	if doc.Title != "" {
		name = SanitizeFilename(doc.Title) + " " + name
	}
	return filepath.Join(dir, name)
}

// find locates the file embedding "[{id}].md" anywhere under the root.
// The first match in directory traversal order wins; additional matches are
// a recoverable anomaly and are logged, not fatal.
func (s *Store) find(videoID string) (string, error) {
	suffix := "[" + videoID + "].md"

	var matches []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root && errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return "", &StoreError{Op: "lookup", VideoID: videoID, Err: err}
	}

	switch len(matches) {
	case 0:
		return "", &StoreError{Op: "lookup", VideoID: videoID, Err: ErrNotFound}
	case 1:
	default:
		s.logger.Warn("vault: multiple documents for video, using first",
			"video_id", videoID, "count", len(matches), "path", matches[0])
	}
	return matches[0], nil
}

func (s *Store) writeAtomic(path, content string) error {
	w, err := newAtomicWriter(path)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(content)); err != nil {
		w.Abort()
		return err
	}
	return w.Commit()
}

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedSpaces       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename makes a title or channel name safe for use as a file or
// directory name: invalid characters become spaces, runs of whitespace
// collapse, and the result is capped at 200 runes.
func SanitizeFilename(name string) string {
	sanitized := invalidFilenameChars.ReplaceAllString(name, " ")
	sanitized = repeatedSpaces.ReplaceAllString(sanitized, " ")
	sanitized = strings.TrimSpace(sanitized)
	if runes := []rune(sanitized); len(runes) > 200 {
		sanitized = strings.TrimSpace(string(runes[:200]))
	}
	return sanitized
}
