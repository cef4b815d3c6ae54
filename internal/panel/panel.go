// Package panel implements the three feature panels. A panel holds no
// per-session state of its own: the caller passes the session's generator
// and ID into every operation and the history lives in the db.Store.
package panel

import (
	"context"
	"fmt"
	"strings"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/db"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/metrics"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/session"
	"go.uber.org/zap"
)

// Meta is the static text of a panel.
type Meta struct {
	Header       string
	Description  string
	InputLabel   string
	Button       string
	Spinner      string
	EmptyWarning string
	HistoryTitle string
	InputLabelN  string
	OutputLabelN string
}

// Labels returns the 1-based labels for the n-th history entry.
func (m Meta) Labels(n int) (input, output string) {
	input = fmt.Sprintf(m.InputLabelN, n)
	if m.OutputLabelN != "" {
		output = fmt.Sprintf(m.OutputLabelN, n)
	}
	return input, output
}

// Outcome is the result of a submit. Warning is set when nothing was
// appended or when the generation was rejected.
type Outcome struct {
	Entry   *models.Entry
	Warning string
	Image   *models.Image
}

type Panel interface {
	Feature() models.Feature
	Meta() Meta
	Submit(ctx context.Context, gen session.Generator, sessionID, input string) (Outcome, error)
	Clear(ctx context.Context, sessionID string) error
	History(ctx context.Context, sessionID string) ([]models.Entry, error)
}

// Exporter is implemented by panels that can download their history.
type Exporter interface {
	Export(ctx context.Context, sessionID string) (Export, error)
}

// Export is a downloadable history file.
type Export struct {
	FileName    string
	ContentType string
	Body        []byte
}

// Set holds one panel per feature.
type Set struct {
	panels map[models.Feature]Panel
}

func NewSet(store db.Store, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Set{panels: map[models.Feature]Panel{
		models.TeachingAssistant: newTeachingAssistant(store, logger),
		models.MathMastermind:    newMathMastermind(store, logger),
		models.ImageGenerator:    newImageGenerator(store, logger),
	}}
}

// For is the single dispatch point from a feature to its panel.
func (s *Set) For(f models.Feature) Panel {
	p, ok := s.panels[f]
	if !ok {
		panic(fmt.Sprintf("panel: no panel for %v", f))
	}
	return p
}

type base struct {
	feature models.Feature
	meta    Meta
	store   db.Store
	logger  *zap.Logger
}

func (b *base) Feature() models.Feature { return b.feature }
func (b *base) Meta() Meta { return b.meta }

func (b *base) Clear(ctx context.Context, sessionID string) error {
	if err := b.store.Clear(ctx, sessionID, b.feature); err != nil {
		return fmt.Errorf("failed to clear %s history: %w", b.feature.Slug(), err)
	}
	return nil
}

func (b *base) History(ctx context.Context, sessionID string) ([]models.Entry, error) {
	entries, err := b.store.List(ctx, sessionID, b.feature)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s history: %w", b.feature.Slug(), err)
	}
	return entries, nil
}

// validate trims input and reports whether anything is left.
func (b *base) validate(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		metrics.RecordGeneration(b.feature.Slug(), metrics.OutcomeEmpty)
		return "", false
	}
	return trimmed, true
}

func (b *base) append(ctx context.Context, sessionID string, entry *models.Entry) error {
	entry.Feature = b.feature
	if err := b.store.Append(ctx, sessionID, entry); err != nil {
		return fmt.Errorf("failed to append %s entry: %w", b.feature.Slug(), err)
	}
	return nil
}
