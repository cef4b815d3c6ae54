package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/db"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/llm"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"
)

type stubClient struct{ closed int }

func (c *stubClient) Generate(context.Context, string, float64) llm.Result { return llm.Success("") }
func (c *stubClient) SolveMath(context.Context, string) llm.Result { return llm.Success("") }
func (c *stubClient) GenerateImage(context.Context, string) llm.ImageResult {
	return llm.ImageResult{}
}
func (c *stubClient) Close() error { c.closed++; return nil }

func TestSession_Defaults(t *testing.T) {
	m := NewManager(db.NewMemory(), time.Minute, nil)
	s := m.Create()

	if s.HasKey() {
		t.Error("new session must not have a key")
	}
	if s.Feature() != models.TeachingAssistant {
		t.Errorf("feature = %v, want Teaching Assistant", s.Feature())
	}
	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}
}

func TestSession_UseKeyClosesPreviousClient(t *testing.T) {
	s := newSession("s", time.Now())
	first, second := &stubClient{}, &stubClient{}

	if err := s.UseKey("k1", first); err != nil {
		t.Fatalf("UseKey: %v", err)
	}
	if !s.HasKey() {
		t.Fatal("expected key")
	}
	if err := s.UseKey("k2", second); err != nil {
		t.Fatalf("UseKey: %v", err)
	}
	if first.closed != 1 {
		t.Errorf("first client closed %d times, want 1", first.closed)
	}
	if s.Client() != second {
		t.Error("expected second client to be active")
	}
	if err := s.ForgetKey(); err != nil {
		t.Fatalf("ForgetKey: %v", err)
	}
	if s.HasKey() || second.closed != 1 {
		t.Errorf("ForgetKey: hasKey=%v closed=%d", s.HasKey(), second.closed)
	}
}

func TestSession_FlashIsOneShot(t *testing.T) {
	s := newSession("s", time.Now())
	s.SetFlash(Flash{Warning: "Enter a problem first."})

	if got := s.TakeFlash(); got.Warning != "Enter a problem first." {
		t.Errorf("first take = %+v", got)
	}
	if got := s.TakeFlash(); got.Warning != "" || got.Image != nil {
		t.Errorf("second take = %+v, want empty", got)
	}
}

func TestManager_SweepExpiresIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	m := NewManager(store, time.Minute, nil)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	idle := m.Create()
	active := m.Create()
	client := &stubClient{}
	idle.UseKey("key", client)
	store.Append(ctx, idle.ID, &models.Entry{Feature: models.TeachingAssistant, Input: "q"})

	now = now.Add(2 * time.Minute)
	if _, err := m.Get(active.ID); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if n := m.Sweep(ctx); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if _, err := m.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Error("idle session should be gone")
	}
	if _, err := m.Get(active.ID); err != nil {
		t.Error("active session should survive")
	}
	if client.closed != 1 {
		t.Errorf("client closed %d times, want 1", client.closed)
	}
	entries, _ := store.List(ctx, idle.ID, models.TeachingAssistant)
	if len(entries) != 0 {
		t.Errorf("history not dropped: %d entries", len(entries))
	}
}

func TestManager_Shutdown(t *testing.T) {
	m := NewManager(db.NewMemory(), time.Minute, nil)
	m.Create()
	m.Create()

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
	if err := m.Expire(context.Background(), "gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expire(gone) err = %v", err)
	}
}

func TestManager_ExpireWaitsForRunningAction(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	m := NewManager(store, time.Minute, nil)
	s := m.Create()
	client := &stubClient{}
	s.UseKey("key", client)

	if !s.Acquire() {
		t.Fatal("Acquire on a live session failed")
	}

	expired := make(chan error, 1)
	go func() { expired <- m.Expire(ctx, s.ID) }()

	select {
	case err := <-expired:
		t.Fatalf("Expire returned while an action was running: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	if client.closed != 0 {
		t.Fatal("client closed while an action was running")
	}

	// The running action finishes by appending its entry.
	store.Append(ctx, s.ID, &models.Entry{Feature: models.MathMastermind, Input: "1+1"})
	s.Release()

	if err := <-expired; err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if client.closed != 1 {
		t.Errorf("client closed %d times, want 1", client.closed)
	}
	entries, _ := store.List(ctx, s.ID, models.MathMastermind)
	if len(entries) != 0 {
		t.Errorf("expired session kept %d entries", len(entries))
	}
	if s.Acquire() {
		t.Error("Acquire succeeded on an expired session")
	}
}
