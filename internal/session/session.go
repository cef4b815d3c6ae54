// Package session tracks the state of each browser session: the API key
// and client built from it, the selected panel and the last inputs.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/llm"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"
)

// Generator is the remote client a session builds from its API key.
// *llm.Service implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) llm.Result
	SolveMath(ctx context.Context, problem string) llm.Result
	GenerateImage(ctx context.Context, prompt string) llm.ImageResult
	Close() error
}

// Flash is shown once on the next render and then discarded.
type Flash struct {
	Warning string
	Image   *models.Image
}

type Session struct {
	ID        string
	CreatedAt time.Time

	// busy serializes user actions so that at most one generation per
	// session is in flight. expired is guarded by busy.
	busy    sync.Mutex
	expired bool

	mu       sync.Mutex
	apiKey   string
	client   Generator
	feature  models.Feature
	inputs   map[models.Feature]string
	flash    Flash
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		feature:   models.TeachingAssistant,
		inputs:    make(map[models.Feature]string),
		lastSeen:  now,
	}
}

// Acquire blocks until no other action of this session is running. It
// returns false, holding nothing, when the session expired meanwhile.
func (s *Session) Acquire() bool {
	s.busy.Lock()
	if s.expired {
		s.busy.Unlock()
		return false
	}
	return true
}

func (s *Session) Release() { s.busy.Unlock() }

func (s *Session) HasKey() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKey != "" && s.client != nil
}

// UseKey installs client as the session's generator, closing the previous
// one.
func (s *Session) UseKey(apiKey string, client Generator) error {
	s.mu.Lock()
	old := s.client
	s.apiKey = apiKey
	s.client = client
	s.mu.Unlock()

	if old != nil {
		return old.Close()
	}
	return nil
}

// ForgetKey drops the API key and closes its client. Histories are kept.
func (s *Session) ForgetKey() error {
	return s.UseKey("", nil)
}

func (s *Session) Client() Generator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

func (s *Session) Feature() models.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feature
}

func (s *Session) Select(f models.Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feature = f
}

func (s *Session) Input(f models.Feature) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs[f]
}

func (s *Session) SetInput(f models.Feature, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs[f] = value
}

func (s *Session) SetFlash(f Flash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash = f
}

// TakeFlash returns the pending flash and clears it.
func (s *Session) TakeFlash() Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.flash
	s.flash = Flash{}
	return f
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() error {
	return s.ForgetKey()
}
