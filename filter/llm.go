package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ytvault/llm"
	"ytvault/youtube"
)

// Criteria holds the natural-language filter prompts. Both empty means the
// LLM stage is not configured and must be skipped without a model call.
type Criteria struct {
	// IncludePrompt describes what to keep. Empty means "keep everything"
	// as the baseline before exclusion.
	IncludePrompt string
	// ExcludePrompt describes what to drop from the inclusion-matching set.
	ExcludePrompt string
}

// Empty reports whether no criteria are configured.
func (c Criteria) Empty() bool {
	return c.IncludePrompt == "" && c.ExcludePrompt == ""
}

// ResponseError indicates the model's reply could not be parsed as a JSON
// array of video ids. This is a hard error for the filter invocation: an
// unparseable reply must not silently become "keep everything" or "keep
// nothing", because either would be indistinguishable from a real verdict.
type ResponseError struct {
	// Raw is the model's reply, for diagnosis.
	Raw string
	// Err is the parse failure.
	Err error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("filter: unparseable model response: %v", e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// descriptionLimit bounds how much of each description goes into the batch
// prompt. Descriptions routinely carry kilobytes of sponsor links.
const descriptionLimit = 500

// LLMBatch judges all videos in a single model call and returns the
// order-preserving subsequence the model kept.
//
// Inclusion is resolved first: the model selects videos matching the include
// prompt (or starts from the full set when only an exclude prompt is given),
// then prunes any that match the exclude prompt, all within one call to save
// quota. Ids in the reply that do not appear in the input are ignored.
//
// With empty criteria or an empty video list the completer is never called.
func LLMBatch(ctx context.Context, c llm.Completer, videos []youtube.Video, crit Criteria) ([]youtube.Video, error) {
	if crit.Empty() || len(videos) == 0 {
		return videos, nil
	}

	response, err := c.Complete(ctx, batchPrompt(videos, crit))
	if err != nil {
		return nil, fmt.Errorf("filter: llm call: %w", err)
	}

	keep, err := parseVerdict(response)
	if err != nil {
		return nil, err
	}

	kept := make([]youtube.Video, 0, len(keep))
	for _, v := range videos {
		if keep[v.ID] {
			kept = append(kept, v)
		}
	}
	return kept, nil
}

// batchPrompt embeds every candidate plus the criteria into one prompt that
// demands a bare JSON array of video ids.
func batchPrompt(videos []youtube.Video, crit Criteria) string {
	var b strings.Builder

	b.WriteString("You are filtering a list of YouTube videos.\n\n")
	if crit.IncludePrompt != "" {
		b.WriteString("Select the videos that match this criteria:\n")
		b.WriteString(crit.IncludePrompt)
		b.WriteString("\n\n")
	} else {
		b.WriteString("Start from the full list of videos.\n\n")
	}
	if crit.ExcludePrompt != "" {
		b.WriteString("Then exclude any of the selected videos that also match this criteria:\n")
		b.WriteString(crit.ExcludePrompt)
		b.WriteString("\n\n")
	}

	b.WriteString("Videos:\n")
	for _, v := range videos {
		desc := v.Description
		if r := []rune(desc); len(r) > descriptionLimit {
			desc = string(r[:descriptionLimit])
		}
		desc = strings.ReplaceAll(desc, "\n", " ")
		fmt.Fprintf(&b, "- video_id: %s | title: %s | description: %s\n", v.ID, v.Title, desc)
	}

	b.WriteString("\nRespond with ONLY a JSON array of the matching video_id strings, ")
	b.WriteString(`for example ["abc123def45","xyz987uvw65"]. No other text.`)
	return b.String()
}

// parseVerdict parses the model reply into a set of kept ids. A fenced
// ```json block wrapper is tolerated; anything that is not a JSON array of
// strings is a ResponseError.
func parseVerdict(response string) (map[string]bool, error) {
	text := strings.TrimSpace(response)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var ids []string
	if err := json.Unmarshal([]byte(text), &ids); err != nil {
		return nil, &ResponseError{Raw: response, Err: err}
	}

	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	return keep, nil
}
