// Package config loads the daemon configuration and persists sensor
// settings across restarts.
package config

import "github.com/micro-nova/imx585-go/internal/models"

// Store persists sensor settings.
type Store interface {
	// Load returns the saved settings, or DefaultSettings if none exist.
	Load() (*models.Settings, error)

	// Save persists the settings. Implementations may debounce rapid saves.
	Save(s *models.Settings) error

	// Path returns where the settings live.
	Path() string

	// Flush forces an immediate write of any pending settings.
	Flush() error
}
