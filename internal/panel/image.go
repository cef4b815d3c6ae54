package panel

import (
	"context"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/db"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/metrics"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/session"
	"go.uber.org/zap"
)

// imagePanel appends only successful generations. Unsafe prompts and
// failures are returned as warnings.
type imagePanel struct {
	base
}

func newImageGenerator(store db.Store, logger *zap.Logger) *imagePanel {
	return &imagePanel{base{
		feature: models.ImageGenerator,
		store:   store,
		logger:  logger,
		meta: Meta{
			Header:       "Safe AI Image Generator",
			Description:  "Generate safe images using AI.",
			InputLabel:   "Enter image description:",
			Button:       "Generate",
			Spinner:      "Generating image...",
			EmptyWarning: "Enter a description first.",
			HistoryTitle: "Image History",
			InputLabelN:  "Image %d:",
			OutputLabelN: "",
		},
	}}
}

func (p *imagePanel) Submit(ctx context.Context, gen session.Generator, sessionID, input string) (Outcome, error) {
	input, ok := p.validate(input)
	if !ok {
		return Outcome{Warning: p.meta.EmptyWarning}, nil
	}

	res := gen.GenerateImage(ctx, input)
	switch {
	case res.Unsafe:
		metrics.RecordGeneration(p.feature.Slug(), metrics.OutcomeUnsafe)
		p.logger.Info("unsafe image prompt rejected", zap.String("session_id", sessionID))
		return Outcome{Warning: res.Message()}, nil
	case !res.OK():
		metrics.RecordGeneration(p.feature.Slug(), metrics.OutcomeError)
		return Outcome{Warning: res.Message()}, nil
	}
	metrics.RecordGeneration(p.feature.Slug(), metrics.OutcomeSuccess)

	entry := &models.Entry{Input: input, Image: res.Image}
	if err := p.append(ctx, sessionID, entry); err != nil {
		return Outcome{}, err
	}
	return Outcome{Entry: entry, Image: res.Image}, nil
}
