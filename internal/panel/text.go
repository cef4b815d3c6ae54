package panel

import (
	"context"
	"fmt"
	"strings"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/db"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/llm"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/metrics"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/session"
	"go.uber.org/zap"
)

// ExportFileName is the download name of the Teaching Assistant history.
const ExportFileName = "AI_Teaching_Assistant.txt"

// textPanel appends every answer, including "Error: " answers, so a failed
// call stays visible in the history.
type textPanel struct {
	base
	generate func(ctx context.Context, gen session.Generator, input string) llm.Result
}

func (p *textPanel) Submit(ctx context.Context, gen session.Generator, sessionID, input string) (Outcome, error) {
	input, ok := p.validate(input)
	if !ok {
		return Outcome{Warning: p.meta.EmptyWarning}, nil
	}

	res := p.generate(ctx, gen, input)
	outcome := metrics.OutcomeSuccess
	if !res.OK() {
		outcome = metrics.OutcomeError
	}
	metrics.RecordGeneration(p.feature.Slug(), outcome)

	entry := &models.Entry{Input: input, Output: res.String()}
	if err := p.append(ctx, sessionID, entry); err != nil {
		return Outcome{}, err
	}
	p.logger.Debug("entry appended",
		zap.String("feature", p.feature.Slug()),
		zap.String("session_id", sessionID),
		zap.Bool("ok", res.OK()))
	return Outcome{Entry: entry}, nil
}

type teachingAssistant struct {
	textPanel
}

func newTeachingAssistant(store db.Store, logger *zap.Logger) *teachingAssistant {
	return &teachingAssistant{textPanel{
		base: base{
			feature: models.TeachingAssistant,
			store:   store,
			logger:  logger,
			meta: Meta{
				Header:       "AI Teaching Assistant",
				Description:  "Ask anything and get insightful answers.",
				InputLabel:   "Enter your question here:",
				Button:       "Ask",
				Spinner:      "Generating AI response...",
				EmptyWarning: "Please enter a question before clicking Ask.",
				HistoryTitle: "Conversation History",
				InputLabelN:  "Q%d:",
				OutputLabelN: "A%d:",
			},
		},
		generate: func(ctx context.Context, gen session.Generator, input string) llm.Result {
			return gen.Generate(ctx, input, llm.DefaultTemperature)
		},
	}}
}

func (p *teachingAssistant) Export(ctx context.Context, sessionID string) (Export, error) {
	entries, err := p.History(ctx, sessionID)
	if err != nil {
		return Export{}, err
	}
	return Export{
		FileName:    ExportFileName,
		ContentType: "text/plain",
		Body:        []byte(ExportText(entries)),
	}, nil
}

// ExportText flattens a Teaching Assistant history into
// "Q{n}: {q}\nA{n}: {a}\n\n" blocks, numbered from 1.
func ExportText(entries []models.Entry) string {
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n\n", i+1, e.Question(), i+1, e.Answer())
	}
	return b.String()
}

func newMathMastermind(store db.Store, logger *zap.Logger) *textPanel {
	return &textPanel{
		base: base{
			feature: models.MathMastermind,
			store:   store,
			logger:  logger,
			meta: Meta{
				Header:       "Math Mastermind",
				Description:  "Solve math problems step by step.",
				InputLabel:   "Enter math problem:",
				Button:       "Solve",
				Spinner:      "Solving...",
				EmptyWarning: "Enter a problem first.",
				HistoryTitle: "Problem History",
				InputLabelN:  "Problem %d:",
				OutputLabelN: "Solution %d:",
			},
		},
		generate: func(ctx context.Context, gen session.Generator, input string) llm.Result {
			return gen.SolveMath(ctx, input)
		},
	}
}
