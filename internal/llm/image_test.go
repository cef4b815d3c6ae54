package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestIsUnsafe(t *testing.T) {
	tests := []struct {
		prompt string
		want   bool
	}{
		{"a sunny meadow", false},
		{"Violence in the streets", true},
		{"NUDITY", true},
		{"a bag of drugs", true},
		{"scenes of domestic violence, oil painting", true},
		{"drugstore at night", true},
		{"an antiviolence poster", true},
		{`a "drugs"-free school`, true},
		{"DrUgS", true},
		{"nudist colony", false},
		{"v1olence", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsUnsafe(tt.prompt); got != tt.want {
			t.Errorf("IsUnsafe(%q) = %v, want %v", tt.prompt, got, tt.want)
		}
	}
}

func TestService_GenerateImageUnsafeSkipsRemote(t *testing.T) {
	for _, prompt := range []string{"Violence", "some NUDITY here", "drugs", "art about violence and peace"} {
		fake := &fakeImageModel{}
		s := NewWithModels(nil, fake, Options{}, nil)

		res := s.GenerateImage(context.Background(), prompt)
		if res.Image != nil {
			t.Errorf("%q: expected no image", prompt)
		}
		if res.Message() != "Unsafe prompt detected!" {
			t.Errorf("%q: message = %q", prompt, res.Message())
		}
		if fake.calls != 0 {
			t.Errorf("%q: remote called %d times, want 0", prompt, fake.calls)
		}
	}
}

func TestService_GenerateImage(t *testing.T) {
	fake := &fakeImageModel{data: pngBytes(t, 4, 3), mime: "image/png"}
	s := NewWithModels(nil, fake, Options{}, nil)

	res := s.GenerateImage(context.Background(), "a red fox in the snow")
	if !res.OK() {
		t.Fatalf("GenerateImage failed: %s", res.Message())
	}
	if fake.calls != 1 {
		t.Errorf("remote calls = %d, want 1", fake.calls)
	}
	if fake.temps[0] != ImageTemperature {
		t.Errorf("temperature = %v, want %v", fake.temps[0], ImageTemperature)
	}
	if res.Image.Width != 4 || res.Image.Height != 3 {
		t.Errorf("size = %dx%d, want 4x3", res.Image.Width, res.Image.Height)
	}
	if res.Image.MIMEType != "image/png" || res.Image.ID == "" {
		t.Errorf("unexpected image metadata: %+v", res.Image)
	}
	if res.Message() != "" {
		t.Errorf("message = %q, want empty", res.Message())
	}
}

func TestService_GenerateImageMIMEFromFormat(t *testing.T) {
	fake := &fakeImageModel{data: pngBytes(t, 1, 1)}
	s := NewWithModels(nil, fake, Options{}, nil)

	res := s.GenerateImage(context.Background(), "a dot")
	if !res.OK() {
		t.Fatalf("GenerateImage failed: %s", res.Message())
	}
	if res.Image.MIMEType != "image/png" {
		t.Errorf("mime = %q, want image/png", res.Image.MIMEType)
	}
}

func TestService_GenerateImageFailures(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeImageModel
		want string
	}{
		{"remote error", &fakeImageModel{err: errQuota}, "Error: quota exceeded"},
		{"no image", &fakeImageModel{err: ErrNoImage}, "Error: response contained no image data"},
		{"empty bytes", &fakeImageModel{data: nil}, "Error: response contained no image data"},
		{"garbage bytes", &fakeImageModel{data: []byte("not an image")}, "Error: failed to decode image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewWithModels(nil, tt.fake, Options{}, nil)
			res := s.GenerateImage(context.Background(), "a calm lake")
			if res.OK() {
				t.Fatal("expected failure")
			}
			if res.Unsafe {
				t.Error("failure must not be reported as unsafe")
			}
			if !strings.HasPrefix(res.Message(), tt.want) {
				t.Errorf("message = %q, want prefix %q", res.Message(), tt.want)
			}
			if tt.fake.calls != 1 {
				t.Errorf("remote calls = %d, want 1", tt.fake.calls)
			}
		})
	}
}

func TestDecodeImageEmpty(t *testing.T) {
	if _, err := decodeImage(nil, "image/png"); !errors.Is(err, ErrNoImage) {
		t.Errorf("err = %v, want ErrNoImage", err)
	}
}
