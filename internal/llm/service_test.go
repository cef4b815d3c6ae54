package llm

import (
	"context"
	"strings"
	"testing"
)

func TestService_Generate(t *testing.T) {
	model := &recordingModel{reply: "Paris is the capital of France."}
	s := NewWithModels(model, nil, Options{}, nil)

	res := s.Generate(context.Background(), "Capital of France?", DefaultTemperature)
	if !res.OK() {
		t.Fatalf("Generate failed: %v", res.Err)
	}
	if res.String() != "Paris is the capital of France." {
		t.Errorf("text = %q", res.String())
	}
	if len(model.prompts) != 1 || model.prompts[0] != "Capital of France?" {
		t.Errorf("prompts = %q, want single verbatim prompt", model.prompts)
	}
	if got := model.options[0].Temperature; got != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", got, DefaultTemperature)
	}
	if got := model.options[0].Model; got != DefaultTextModel {
		t.Errorf("model = %q, want %q", got, DefaultTextModel)
	}
}

func TestService_GenerateFailureIsText(t *testing.T) {
	tests := []struct {
		name  string
		model *recordingModel
	}{
		{"remote error", &recordingModel{err: errQuota}},
		{"panic in client", &recordingModel{panic: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewWithModels(tt.model, nil, Options{}, nil)
			res := s.Generate(context.Background(), "hello", 0.3)
			if res.OK() {
				t.Fatal("expected failure")
			}
			if !strings.HasPrefix(res.String(), "Error: ") {
				t.Errorf("String() = %q, want Error: prefix", res.String())
			}
		})
	}
}

func TestService_GenerateErrorMessage(t *testing.T) {
	s := NewWithModels(&recordingModel{err: errQuota}, nil, Options{}, nil)
	res := s.Generate(context.Background(), "hello", 0.3)
	if res.String() != "Error: quota exceeded" {
		t.Errorf("String() = %q", res.String())
	}
}

func TestService_SolveMath(t *testing.T) {
	model := &recordingModel{reply: "x = 1"}
	s := NewWithModels(model, nil, Options{TextModel: "custom-model"}, nil)

	res := s.SolveMath(context.Background(), "Solve x+1=2")
	if res.String() != "x = 1" {
		t.Errorf("solution = %q", res.String())
	}
	if len(model.prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(model.prompts))
	}
	prompt := model.prompts[0]
	if !strings.Contains(prompt, mathPreamble) {
		t.Errorf("prompt missing tutor preamble: %q", prompt)
	}
	if !strings.Contains(prompt, "Solve x+1=2") {
		t.Errorf("prompt missing problem: %q", prompt)
	}
	if got := model.options[0].Temperature; got != MathTemperature {
		t.Errorf("temperature = %v, want %v", got, MathTemperature)
	}
	if got := model.options[0].Model; got != "custom-model" {
		t.Errorf("model = %q, want custom-model", got)
	}
}

func TestMathPrompt(t *testing.T) {
	want := "You are a Math Mastermind. Explain step by step and solve accurately.\n\nMath Problem: 2+2"
	if got := MathPrompt("2+2"); got != want {
		t.Errorf("MathPrompt = %q, want %q", got, want)
	}
}
