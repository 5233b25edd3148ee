package ytvault

import (
	"ytvault/vault"
	"ytvault/youtube"
)

// Sentinel errors re-exported from the sub-packages for callers that only
// import the root package.
var (
	// ErrNotFound indicates no vault document exists for a video id.
	ErrNotFound = vault.ErrNotFound
	// ErrInvalidURL indicates the input is neither a video URL nor an id.
	ErrInvalidURL = youtube.ErrInvalidURL
	// ErrNoTranscript indicates the video has no subtitles at all.
	ErrNoTranscript = youtube.ErrNoTranscript
	// ErrVideoUnavailable indicates the video is gone, private, or blocked.
	ErrVideoUnavailable = youtube.ErrVideoUnavailable
)

// Typed errors re-exported for errors.As callers.
type (
	// StoreError wraps vault store failures with operation and video id.
	StoreError = vault.StoreError
	// TranscriptError wraps transcript fetch failures with the video id.
	TranscriptError = youtube.TranscriptError
	// APIError wraps Data API failures with the operation that failed.
	APIError = youtube.APIError
)
