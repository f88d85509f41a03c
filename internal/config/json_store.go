package config

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/micro-nova/imx585-go/internal/models"
	"github.com/micro-nova/imx585-go/internal/sensor"
)

const (
	settingsFileName = "settings.json"
	debounceDelay    = 500 * time.Millisecond
)

// JSONStore writes settings to a JSON file. Writes are debounced and
// atomic.
type JSONStore struct {
	mu      sync.Mutex
	path    string
	timer   *time.Timer
	pending *models.Settings
}

func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{path: filepath.Join(dir, settingsFileName)}
}

func (s *JSONStore) Path() string { return s.path }

// Load reads the settings file. A missing or corrupt file yields the
// defaults.
func (s *JSONStore) Load() (*models.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			def := models.DefaultSettings()
			return &def, nil
		}
		return nil, err
	}

	var st models.Settings
	if err := json.Unmarshal(data, &st); err != nil {
		slog.Warn("config: corrupt settings file, using defaults", "path", s.path, "err", err)
		def := models.DefaultSettings()
		return &def, nil
	}
	sanitize(&st)
	return &st, nil
}

// Save schedules a write after debounceDelay of quiet.
func (s *JSONStore) Save(st *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := st.DeepCopy()
	s.pending = &cp

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(debounceDelay, func() {
		s.mu.Lock()
		p := s.pending
		s.mu.Unlock()
		if p != nil {
			if err := s.writeAtomic(p); err != nil {
				slog.Error("config: failed to write settings", "path", s.path, "err", err)
			}
		}
	})
	return nil
}

func (s *JSONStore) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	p := s.pending
	s.mu.Unlock()
	if p == nil {
		return nil
	}
	return s.writeAtomic(p)
}

func (s *JSONStore) writeAtomic(st *models.Settings) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// sanitize drops entries an older or hand-edited file may carry that the
// sensor would reject outright.
func sanitize(st *models.Settings) {
	if st.Controls == nil {
		st.Controls = map[string]int64{}
	}
	for name := range st.Controls {
		id, err := sensor.ParseControlID(name)
		if err != nil {
			slog.Warn("config: dropping unknown control", "name", name)
			delete(st.Controls, name)
			continue
		}
		if id == sensor.ControlPixelRate || id == sensor.ControlLinkFrequency {
			slog.Warn("config: dropping read-only control", "name", name)
			delete(st.Controls, name)
		}
	}
}

var _ Store = (*JSONStore)(nil)
