package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/metrics"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// UnsafePromptMessage is shown when a prompt hits the denylist.
const UnsafePromptMessage = "Unsafe prompt detected!"

// ErrNoImage is returned when the model answers without any image data.
var ErrNoImage = errors.New("response contained no image data")

// deniedTerms is matched as plain lower-case substrings. There is no
// stemming or obfuscation handling: "nudist" is not caught, "drugstore" is.
var deniedTerms = []string{"violence", "nudity", "drugs"}

// IsUnsafe reports whether prompt contains a denied term, ignoring case.
func IsUnsafe(prompt string) bool {
	p := strings.ToLower(prompt)
	for _, term := range deniedTerms {
		if strings.Contains(p, term) {
			return true
		}
	}
	return false
}

// ImageModel is a remote model that turns a prompt into encoded image bytes.
type ImageModel interface {
	GenerateImage(ctx context.Context, prompt string, temperature float32) (data []byte, mimeType string, err error)
}

// GenerateImage runs the denylist gate and, if it passes, asks the image
// model for a picture and decodes it. Nothing is cached between calls.
func (s *Service) GenerateImage(ctx context.Context, prompt string) (res ImageResult) {
	if IsUnsafe(prompt) {
		return ImageResult{Unsafe: true}
	}

	ctx, span := tracer.Start(ctx, "llm.generate_image", trace.WithAttributes(
		attribute.Float64("temperature", ImageTemperature),
	))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = ImageResult{Err: fmt.Errorf("%v", r)}
		}
		metrics.GenerationDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
		}
		span.End()
	}()

	data, mimeType, err := s.image.GenerateImage(ctx, prompt, ImageTemperature)
	if err != nil {
		s.logger.Warn("image generation failed", zap.Error(err))
		return ImageResult{Err: err}
	}

	img, err := decodeImage(data, mimeType)
	if err != nil {
		s.logger.Warn("image decode failed",
			zap.String("mime_type", mimeType),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return ImageResult{Err: err}
	}
	return ImageResult{Image: img}
}

func decodeImage(data []byte, mimeType string) (*models.Image, error) {
	if len(data) == 0 {
		return nil, ErrNoImage
	}
	decoded, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if mimeType == "" {
		mimeType = "image/" + format
	}
	bounds := decoded.Bounds()
	return &models.Image{
		ID:       uuid.NewString(),
		MIMEType: mimeType,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Data:     data,
	}, nil
}
