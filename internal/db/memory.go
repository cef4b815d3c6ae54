package db

import (
	"context"
	"sync"
	"time"

	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/models"
)

type Memory struct {
	mu       sync.RWMutex
	nextID   int64
	sessions map[string]map[models.Feature][]models.Entry
}

func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]map[models.Feature][]models.Entry)}
}

func (m *Memory) Append(_ context.Context, sessionID string, entry *models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	entry.ID = m.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	lists, ok := m.sessions[sessionID]
	if !ok {
		lists = make(map[models.Feature][]models.Entry)
		m.sessions[sessionID] = lists
	}
	lists[entry.Feature] = append(lists[entry.Feature], *entry)
	return nil
}

func (m *Memory) List(_ context.Context, sessionID string, feature models.Feature) ([]models.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.sessions[sessionID][feature]
	out := make([]models.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

func (m *Memory) Clear(_ context.Context, sessionID string, feature models.Feature) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lists, ok := m.sessions[sessionID]; ok {
		delete(lists, feature)
	}
	return nil
}

func (m *Memory) Drop(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}

func (m *Memory) Close() error { return nil }
