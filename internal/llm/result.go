package llm

import "github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"

const errorPrefix = "Error: "

// Result is the outcome of a text generation: either Text or Err.
type Result struct {
	Text string
	Err  error
}

func Success(text string) Result { return Result{Text: text} }
func Failure(err error) Result { return Result{Err: err} }

func (r Result) OK() bool { return r.Err == nil }

// String is what the panel shows and stores: the generated text, or the
// failure rendered as "Error: <message>".
func (r Result) String() string {
	if r.Err != nil {
		return errorPrefix + r.Err.Error()
	}
	return r.Text
}

// ImageResult is the outcome of an image generation. At most one of Image,
// Unsafe and Err is set.
type ImageResult struct {
	Image  *models.Image
	Unsafe bool
	Err    error
}

func (r ImageResult) OK() bool { return r.Image != nil }

// Message is the warning to show for a rejected or failed generation, empty
// on success.
func (r ImageResult) Message() string {
	switch {
	case r.Unsafe:
		return UnsafePromptMessage
	case r.Err != nil:
		return errorPrefix + r.Err.Error()
	default:
		return ""
	}
}
