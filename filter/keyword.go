// Package filter narrows a list of candidate videos in two stages: a cheap
// keyword pass, then an optional batched LLM pass over whatever survives.
package filter

import (
	"strings"

	"ytvault/youtube"
)

// Keyword filters videos by case-insensitive substring match over the
// title and description.
//
// A video is kept when it matches at least one include keyword (an empty
// include list passes everything) and matches no exclude keyword. Output
// order equals input order. The returned map explains each removal, keyed
// by video id, for logging.
func Keyword(videos []youtube.Video, include, exclude []string) ([]youtube.Video, map[string]string) {
	kept := make([]youtube.Video, 0, len(videos))
	reasons := make(map[string]string)

	for _, v := range videos {
		haystack := strings.ToLower(v.Title + " " + v.Description)

		if kw := firstMatch(haystack, exclude); kw != "" {
			reasons[v.ID] = "matched exclude keyword: " + kw
			continue
		}
		if len(include) > 0 && firstMatch(haystack, include) == "" {
			reasons[v.ID] = "no include keyword matched"
			continue
		}
		kept = append(kept, v)
	}

	return kept, reasons
}

// firstMatch returns the first keyword contained in the haystack, or "".
func firstMatch(haystack string, keywords []string) string {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return kw
		}
	}
	return ""
}
