package llm

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	DefaultTextModel  = "gemini-2.0-flash"
	DefaultImageModel = "gemini-2.5-flash-image"

	DefaultTemperature = 0.3
	MathTemperature    = 0.1
	ImageTemperature   = 0.5

	mathPreamble = "You are a Math Mastermind. Explain step by step and solve accurately."
)

var tracer = otel.Tracer("github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/llm")

// Options selects the remote models used by a Service.
type Options struct {
	TextModel  string
	ImageModel string
}

func (o Options) withDefaults() Options {
	if o.TextModel == "" {
		o.TextModel = DefaultTextModel
	}
	if o.ImageModel == "" {
		o.ImageModel = DefaultImageModel
	}
	return o
}

// Service holds the remote clients built from one API key. A session owns
// exactly one Service.
type Service struct {
	llm       llms.Model
	image     ImageModel
	textModel string
	logger    *zap.Logger
	closers   []io.Closer
}

// New builds the Gemini text and image models for apiKey over one client.
// No request is made here, so a bad key only shows up on the first
// generation.
func New(ctx context.Context, apiKey string, opts Options, logger *zap.Logger, clientOpts ...option.ClientOption) (*Service, error) {
	opts = opts.withDefaults()

	client, err := NewGeminiClient(ctx, apiKey, clientOpts...)
	if err != nil {
		return nil, err
	}

	s := NewWithModels(
		NewGeminiTextModel(client, opts.TextModel),
		NewGeminiImageModel(client, opts.ImageModel),
		opts, logger,
	)
	s.closers = append(s.closers, client)
	return s, nil
}

// NewWithModels wires a Service around already constructed models.
func NewWithModels(llm llms.Model, image ImageModel, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &Service{
		llm:       llm,
		image:     image,
		textModel: opts.TextModel,
		logger:    logger,
	}
}

// Generate sends prompt as a single user message and returns the model's
// text verbatim. Failures come back as a failed Result, never as a panic.
func (s *Service) Generate(ctx context.Context, prompt string, temperature float64) (res Result) {
	ctx, span := tracer.Start(ctx, "llm.generate", trace.WithAttributes(
		attribute.String("model", s.textModel),
		attribute.Float64("temperature", temperature),
	))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Failure(fmt.Errorf("%v", r))
		}
		metrics.GenerationDuration.WithLabelValues("text").Observe(time.Since(start).Seconds())
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
		}
		span.End()
	}()

	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt,
		llms.WithModel(s.textModel),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		s.logger.Warn("text generation failed",
			zap.String("model", s.textModel),
			zap.Error(err))
		return Failure(err)
	}
	return Success(completion)
}

// SolveMath prefixes problem with the tutor instruction and generates at
// MathTemperature.
func (s *Service) SolveMath(ctx context.Context, problem string) Result {
	return s.Generate(ctx, MathPrompt(problem), MathTemperature)
}

// MathPrompt is the full prompt sent for a math problem.
func MathPrompt(problem string) string {
	return fmt.Sprintf("%s\n\nMath Problem: %s", mathPreamble, problem)
}

func (s *Service) Close() error {
	var err error
	for _, c := range s.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
