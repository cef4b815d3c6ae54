package llm

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

// recordingModel is an llms.Model that remembers every call.
type recordingModel struct {
	reply string
	err   error
	panic bool

	prompts []string
	options []llms.CallOptions
}

func (m *recordingModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	m.options = append(m.options, opts)
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, tc.Text)
			}
		}
	}
	if m.panic {
		panic("transport exploded")
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

type fakeImageModel struct {
	data  []byte
	mime  string
	err   error
	calls int
	temps []float32
}

func (f *fakeImageModel) GenerateImage(_ context.Context, _ string, temperature float32) ([]byte, string, error) {
	f.calls++
	f.temps = append(f.temps, temperature)
	if f.err != nil {
		return nil, "", f.err
	}
	return f.data, f.mime, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

var errQuota = errors.New("quota exceeded")
