// Package summarize turns a video transcript into a sectioned summary
// through a single model call.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ytvault/llm"
	"ytvault/vault"
)

// SystemPrompt is the system instruction for the summarizing model.
const SystemPrompt = "You are an expert at summarizing video transcripts with attention to actionable details."

// ErrEmptyTranscript is returned when there is nothing to summarize.
var ErrEmptyTranscript = errors.New("summarize: empty transcript")

const (
	headerSummary   = "SUMMARY:"
	headerTakeaways = "TOP TAKEAWAYS:"
	headerProtocols = "PROTOCOLS & INSTRUCTIONS:"
)

// Transcript produces a summary of the transcript text.
func Transcript(ctx context.Context, c llm.Completer, transcript string) (vault.Summary, error) {
	if strings.TrimSpace(transcript) == "" {
		return vault.Summary{}, ErrEmptyTranscript
	}

	response, err := c.Complete(ctx, Prompt(transcript))
	if err != nil {
		return vault.Summary{}, fmt.Errorf("summarize: %w", err)
	}
	return ParseResponse(response), nil
}

// Prompt builds the summarization prompt for a transcript. The response
// format it demands is what ParseResponse expects.
func Prompt(transcript string) string {
	var b strings.Builder
	b.WriteString("Summarize the following video transcript in less than five sentences. ")
	b.WriteString("Then provide a bulleted list of the top takeaways from the video.\n\n")
	b.WriteString("IMPORTANT: If the video contains any of the following, extract them explicitly:\n")
	b.WriteString("- Step-by-step instructions or procedures\n")
	b.WriteString("- Supplement protocols or stacks (dosages, timing, combinations)\n")
	b.WriteString("- Specific recommendations or action items\n")
	b.WriteString("- Product names, brands, or specific tools mentioned\n")
	b.WriteString("- Numbered lists or sequential processes\n\n")
	b.WriteString("Format your response as:\n")
	b.WriteString(headerSummary + "\n[your summary here]\n\n")
	b.WriteString(headerTakeaways + "\n- [takeaway 1]\n- [takeaway 2]\n...\n\n")
	b.WriteString(headerProtocols + "\n")
	b.WriteString("[If the video contains specific protocols, supplement stacks, step-by-step instructions, ")
	b.WriteString("or detailed recommendations, list them here with exact dosages, timing, and steps. ")
	b.WriteString("If none exist, write 'None mentioned.']\n\n")
	b.WriteString("TRANSCRIPT:\n")
	b.WriteString(transcript)
	return b.String()
}

// ParseResponse splits a model reply on its section headers. Sections the
// reply omits come back empty; text before the first header is treated as
// the overview, so a reply that skips the SUMMARY: label still parses.
func ParseResponse(response string) vault.Summary {
	var s vault.Summary

	section := headerSummary
	var overview, takeaways, protocols []string

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, headerSummary):
			section = headerSummary
			if rest := strings.TrimSpace(trimmed[len(headerSummary):]); rest != "" {
				overview = append(overview, rest)
			}
			continue
		case strings.HasPrefix(trimmed, headerTakeaways):
			section = headerTakeaways
			continue
		case strings.HasPrefix(trimmed, headerProtocols):
			section = headerProtocols
			continue
		}

		switch section {
		case headerSummary:
			if trimmed != "" {
				overview = append(overview, trimmed)
			}
		case headerTakeaways:
			if item, ok := strings.CutPrefix(trimmed, "- "); ok {
				takeaways = append(takeaways, strings.TrimSpace(item))
			}
		case headerProtocols:
			protocols = append(protocols, line)
		}
	}

	s.Overview = strings.Join(overview, "\n")
	s.Takeaways = takeaways
	s.Protocols = strings.TrimSpace(strings.Join(protocols, "\n"))
	return s
}
