package filter

import (
	"context"
	"log/slog"

	"ytvault/llm"
	"ytvault/youtube"
)

// Pipeline chains the keyword stage and the LLM stage. The keyword stage is
// free and runs first so the batched model call only sees survivors.
type Pipeline struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewPipeline returns a pipeline using c for the LLM stage. c may be nil
// when no prompt criteria will ever be passed to Run.
func NewPipeline(c llm.Completer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{completer: c, logger: logger}
}

// Run applies both stages and returns the surviving videos in input order.
// Empty keyword lists make the keyword stage a no-op for that direction and
// empty criteria skip the LLM stage entirely.
func (p *Pipeline) Run(ctx context.Context, videos []youtube.Video, include, exclude []string, crit Criteria) ([]youtube.Video, error) {
	kept, reasons := Keyword(videos, include, exclude)
	for _, v := range videos {
		if reason, dropped := reasons[v.ID]; dropped {
			p.logger.Debug("keyword filter dropped video",
				"video_id", v.ID, "title", v.Title, "reason", reason)
		}
	}
	if len(kept) < len(videos) {
		p.logger.Info("keyword filter applied",
			"before", len(videos), "after", len(kept))
	}

	if crit.Empty() || len(kept) == 0 {
		return kept, nil
	}

	filtered, err := LLMBatch(ctx, p.completer, kept, crit)
	if err != nil {
		return nil, err
	}
	if len(filtered) < len(kept) {
		p.logger.Info("llm filter applied",
			"before", len(kept), "after", len(filtered))
	}
	return filtered, nil
}
