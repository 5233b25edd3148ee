package youtube

import "regexp"

var (
	videoIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	watchURLPattern = regexp.MustCompile(
		`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/watch\?.*&v=)([a-zA-Z0-9_-]{11})`)
)

// IsVideoID reports whether the string is a bare 11-character video id.
func IsVideoID(s string) bool {
	return videoIDPattern.MatchString(s)
}

// ExtractVideoID pulls the video id out of the common YouTube URL shapes:
// youtube.com/watch?v=ID, youtu.be/ID, and watch URLs with extra parameters.
// It returns ErrInvalidURL when no id can be found.
func ExtractVideoID(url string) (string, error) {
	m := watchURLPattern.FindStringSubmatch(url)
	if m == nil {
		return "", ErrInvalidURL
	}
	return m[1], nil
}

// ResolveVideoID accepts either a bare video id or a YouTube URL.
func ResolveVideoID(urlOrID string) (string, error) {
	if IsVideoID(urlOrID) {
		return urlOrID, nil
	}
	return ExtractVideoID(urlOrID)
}
