// Package controller is the service layer between the HTTP API and the
// sensor. Every mutation goes through apply, which persists the resulting
// settings and publishes the new state.
package controller

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/micro-nova/imx585-go/internal/config"
	"github.com/micro-nova/imx585-go/internal/events"
	"github.com/micro-nova/imx585-go/internal/metrics"
	"github.com/micro-nova/imx585-go/internal/models"
	"github.com/micro-nova/imx585-go/internal/sensor"
)

// Controller owns the sensor device for the daemon.
type Controller struct {
	mu       sync.Mutex
	dev      *sensor.Device
	info     models.Info
	settings models.Settings
	store    config.Store
	bus      *events.Bus
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// restoreOrder applies vertical blanking before exposure since the
// exposure range depends on it.
var restoreOrder = []sensor.ControlID{
	sensor.ControlVBlank,
	sensor.ControlHBlank,
	sensor.ControlExposure,
	sensor.ControlGain,
	sensor.ControlHFlip,
	sensor.ControlVFlip,
}

// New loads the saved settings and applies them to dev. Settings the
// sensor rejects are logged and dropped. m may be nil.
func New(dev *sensor.Device, info models.Info, store config.Store, bus *events.Bus, m *metrics.Metrics) (*Controller, error) {
	saved, err := store.Load()
	if err != nil {
		return nil, err
	}
	c := &Controller{
		dev:     dev,
		info:    info,
		store:   store,
		bus:     bus,
		metrics: m,
		log:     slog.Default().With("component", "controller"),
	}
	if m != nil {
		bus.OnDrop(m.EventDropped)
	}
	c.restore(*saved)
	c.settings = c.currentSettings()
	c.observe()
	return c, nil
}

func (c *Controller) restore(s models.Settings) {
	if s.Format != (models.FormatRequest{}) {
		req := sensor.Format{Width: s.Format.Width, Height: s.Format.Height, Code: s.Format.Code}
		if _, err := c.dev.SetFormat(sensor.Active, nil, req); err != nil {
			c.log.Warn("restore format failed", "err", err)
		}
	}
	ctx := context.Background()
	for _, id := range restoreOrder {
		v, ok := s.Controls[id.String()]
		if !ok {
			continue
		}
		if err := c.dev.SetControl(ctx, id, v); err != nil {
			c.log.Warn("restore control failed", "control", id, "value", v, "err", err)
		}
	}
}

// currentSettings reads the persistable settings back from the device.
func (c *Controller) currentSettings() models.Settings {
	st := c.dev.Status()
	s := models.DefaultSettings()
	s.Format = models.FormatRequest{Width: st.Format.Width, Height: st.Format.Height, Code: st.Format.Code}
	for _, ctl := range st.Controls {
		if !ctl.ReadOnly {
			s.Controls[ctl.Name] = ctl.Value
		}
	}
	return s
}

// State returns the current state.
func (c *Controller) State() models.State {
	return c.snapshot()
}

func (c *Controller) snapshot() models.State {
	st := c.dev.Status()
	out := models.State{
		Info:   c.info,
		Stream: st.State.String(),
		Format: toFormat(st.Format),
		Crop:   toRect(st.Crop),
	}
	out.Controls = make([]models.Control, len(st.Controls))
	for i, ctl := range st.Controls {
		out.Controls[i] = toControl(ctl)
	}
	return out
}

// apply runs fn under the controller lock. On success the settings are
// saved (debounced) and the new state is published. fn's device calls may
// have partially succeeded on error, so the state is published either way.
func (c *Controller) apply(fn func() error) (models.State, *models.AppError) {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := fn()
	next := c.currentSettings()
	if !settingsEqual(next, c.settings) {
		c.settings = next
		if serr := c.store.Save(&c.settings); serr != nil {
			c.log.Error("save settings failed", "err", serr)
		}
	}
	state := c.snapshot()
	c.bus.Publish(state)
	c.observe()
	if err != nil {
		return state, toAppError(err)
	}
	return state, nil
}

func (c *Controller) observe() {
	if c.metrics == nil {
		return
	}
	st := c.dev.Status()
	c.metrics.SetStreaming(st.State == sensor.StateStreaming)
	for _, ctl := range st.Controls {
		c.metrics.SetControl(ctl.Name, ctl.Value)
	}
}

// Close stops streaming, flushes pending settings and releases the device.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ferr := c.store.Flush()
	derr := c.dev.Close(ctx)
	return errors.Join(ferr, derr)
}

func settingsEqual(a, b models.Settings) bool {
	if a.Format != b.Format || len(a.Controls) != len(b.Controls) {
		return false
	}
	for k, v := range a.Controls {
		if bv, ok := b.Controls[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// toAppError maps sensor errors to API errors.
func toAppError(err error) *models.AppError {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var startErr *sensor.StartError
	switch {
	case errors.Is(err, sensor.ErrUnknownControl):
		return models.ErrNotFound(err.Error())
	case errors.Is(err, sensor.ErrOutOfRange),
		errors.Is(err, sensor.ErrReadOnly),
		errors.Is(err, sensor.ErrInvalidTarget),
		errors.Is(err, sensor.ErrInvalidIndex),
		errors.Is(err, sensor.ErrUnknownFormat),
		errors.Is(err, sensor.ErrNoTryState):
		return models.ErrBadRequest(err.Error())
	case errors.Is(err, sensor.ErrBusy):
		return models.ErrConflict(err.Error())
	case errors.Is(err, sensor.ErrClosed):
		return models.ErrUnavailable(err.Error())
	case errors.As(err, &startErr):
		e := models.ErrInternal(err.Error())
		e.Field = startErr.Step.String()
		return e
	}
	return models.ErrInternal(err.Error())
}
