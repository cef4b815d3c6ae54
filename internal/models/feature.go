package models

import (
	"errors"
	"fmt"
)

// ErrUnknownFeature is returned when a slug does not name one of the three panels.
var ErrUnknownFeature = errors.New("unknown feature")

// Feature identifies one of the app's panels.
type Feature int

const (
	TeachingAssistant Feature = iota
	MathMastermind
	ImageGenerator
)

// Features lists the panels in selector order.
var Features = []Feature{TeachingAssistant, MathMastermind, ImageGenerator}

// String returns the name shown in the feature selector.
func (f Feature) String() string {
	switch f {
	case TeachingAssistant:
		return "Teaching Assistant"
	case MathMastermind:
		return "Math Mastermind"
	case ImageGenerator:
		return "Safe AI Image Generator"
	default:
		return fmt.Sprintf("Feature(%d)", int(f))
	}
}

// Slug is the form and URL value for the feature.
func (f Feature) Slug() string {
	switch f {
	case TeachingAssistant:
		return "assistant"
	case MathMastermind:
		return "math"
	case ImageGenerator:
		return "image"
	default:
		return ""
	}
}

func (f Feature) Valid() bool {
	return f >= TeachingAssistant && f <= ImageGenerator
}

// ParseFeature maps a slug back to its Feature.
func ParseFeature(slug string) (Feature, error) {
	for _, f := range Features {
		if f.Slug() == slug {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, slug)
}
