// Package youtube provides the YouTube collaborators: OAuth credentials,
// Data API v3 listing, and yt-dlp based transcript and metadata fetching.
package youtube

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for YouTube operations.
var (
	// ErrInvalidURL indicates the input is neither a video URL nor an id.
	ErrInvalidURL = errors.New("youtube: invalid URL or video id")
	// ErrNoTranscript indicates the video has no subtitles at all.
	ErrNoTranscript = errors.New("youtube: no transcript available")
	// ErrVideoUnavailable indicates the video is gone, private, or blocked.
	ErrVideoUnavailable = errors.New("youtube: video unavailable")
)

// Channel identifies a subscribed channel.
type Channel struct {
	// ID is the YouTube channel id (UC...).
	ID string
	// Title is the channel display name.
	Title string
}

// Video describes a video from a channel's recent uploads. It is used only
// during filtering and is discarded after; the persisted record lives in the
// vault package.
type Video struct {
	// ID is the 11-character YouTube video id.
	ID string
	// Title is the video title.
	Title string
	// Description is the video description, possibly truncated upstream.
	Description string
	// Published is when the video was published.
	Published time.Time
	// Channel is the display name of the publishing channel.
	Channel string
	// ChannelID is the YouTube channel id.
	ChannelID string
}

// URL returns the canonical watch URL for the video.
func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Transcript is a fetched video transcript.
type Transcript struct {
	VideoID  string
	FullText string
	Language string
}

// TranscriptError wraps transcript fetch failures with the video id.
// Use errors.As() to extract it, or errors.Is() against the sentinels:
//
//	if errors.Is(err, youtube.ErrNoTranscript) { ... }
type TranscriptError struct {
	VideoID string
	Err     error
}

func (e *TranscriptError) Error() string {
	return fmt.Sprintf("youtube: transcript for %s: %v", e.VideoID, e.Err)
}

func (e *TranscriptError) Unwrap() error { return e.Err }

// APIError wraps Data API failures with the operation that failed.
type APIError struct {
	// Op is the API operation ("subscriptions", "recent videos", "durations").
	Op string
	// Err is the underlying error.
	Err error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube: %s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }
