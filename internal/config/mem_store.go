package config

import (
	"sync"

	"github.com/micro-nova/imx585-go/internal/models"
)

// MemStore keeps settings in memory. It never touches disk.
type MemStore struct {
	mu       sync.Mutex
	settings *models.Settings
	saves    int
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Load() (*models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		def := models.DefaultSettings()
		return &def, nil
	}
	cp := m.settings.DeepCopy()
	return &cp, nil
}

func (m *MemStore) Save(s *models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := s.DeepCopy()
	m.settings = &cp
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemStore) Path() string { return ":memory:" }

func (m *MemStore) Flush() error { return nil }

var _ Store = (*MemStore)(nil)
