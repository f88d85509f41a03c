package models

// Settings is the persisted part of the sensor configuration. It is
// re-applied at startup so a restart keeps the last exposure and framing.
type Settings struct {
	Format   FormatRequest    `json:"format"`
	Controls map[string]int64 `json:"controls"`
}

// DefaultSettings returns empty settings. An empty Settings leaves the
// sensor at its power-on defaults.
func DefaultSettings() Settings {
	return Settings{Controls: map[string]int64{}}
}

// DeepCopy returns a copy sharing no map with s.
func (s Settings) DeepCopy() Settings {
	cp := s
	cp.Controls = make(map[string]int64, len(s.Controls))
	for k, v := range s.Controls {
		cp.Controls[k] = v
	}
	return cp
}
