package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/micro-nova/imx585-go/internal/hardware"
	"github.com/micro-nova/imx585-go/internal/models"
	"github.com/micro-nova/imx585-go/internal/sensor"
)

// GetControls returns every control.
func (c *Controller) GetControls() []models.Control {
	return c.snapshot().Controls
}

// GetControl returns one control by name.
func (c *Controller) GetControl(name string) (*models.Control, *models.AppError) {
	id, err := sensor.ParseControlID(name)
	if err != nil {
		return nil, toAppError(err)
	}
	ctl, err := c.dev.GetControl(id)
	if err != nil {
		return nil, toAppError(err)
	}
	mc := toControl(ctl)
	return &mc, nil
}

// SetControl sets a control by name.
func (c *Controller) SetControl(ctx context.Context, name string, upd models.ControlUpdate) (models.State, *models.AppError) {
	if upd.Value == nil {
		return models.State{}, models.ErrBadRequest("value is required")
	}
	id, err := sensor.ParseControlID(name)
	if err != nil {
		return models.State{}, toAppError(err)
	}
	return c.apply(func() error {
		return c.dev.SetControl(ctx, id, *upd.Value)
	})
}

// Formats lists the supported format codes.
func (c *Controller) Formats() []models.Format {
	codes := c.dev.EnumCodes()
	out := make([]models.Format, len(codes))
	for i, code := range codes {
		out[i] = models.Format{Code: code, CodeName: models.CodeName(code)}
	}
	return out
}

// FrameSizes lists the frame sizes for code.
func (c *Controller) FrameSizes(code uint32) ([]models.FrameSize, *models.AppError) {
	sizes, err := c.dev.FrameSizes(code)
	if err != nil {
		return nil, toAppError(err)
	}
	out := make([]models.FrameSize, len(sizes))
	for i, s := range sizes {
		out[i] = toFrameSize(s)
	}
	return out, nil
}

// GetFormat returns the active format, or the default try format.
func (c *Controller) GetFormat(which sensor.Which) models.Format {
	if which == sensor.Try {
		return toFormat(c.dev.NewTryState().Format)
	}
	f, _ := c.dev.GetFormat(sensor.Active, nil)
	return toFormat(f)
}

// SetFormat negotiates a format. Try requests use fresh scratch state and
// change nothing.
func (c *Controller) SetFormat(which sensor.Which, req models.FormatRequest) (models.Format, *models.AppError) {
	sreq := sensor.Format{Width: req.Width, Height: req.Height, Code: req.Code}
	if which == sensor.Try {
		f, err := c.dev.SetFormat(sensor.Try, c.dev.NewTryState(), sreq)
		if err != nil {
			return models.Format{}, toAppError(err)
		}
		return toFormat(f), nil
	}

	var got sensor.Format
	if _, appErr := c.apply(func() error {
		var err error
		got, err = c.dev.SetFormat(sensor.Active, nil, sreq)
		return err
	}); appErr != nil {
		return models.Format{}, appErr
	}
	return toFormat(got), nil
}

// Selection returns a selection rectangle.
func (c *Controller) Selection(target string, which sensor.Which) (models.Rect, *models.AppError) {
	t, err := sensor.ParseSelectionTarget(target)
	if err != nil {
		return models.Rect{}, toAppError(err)
	}
	var ts *sensor.TryState
	if which == sensor.Try {
		ts = c.dev.NewTryState()
	}
	r, err := c.dev.Selection(t, which, ts)
	if err != nil {
		return models.Rect{}, toAppError(err)
	}
	return toRect(r), nil
}

// StartStream starts streaming.
func (c *Controller) StartStream(ctx context.Context) (models.State, *models.AppError) {
	return c.apply(func() error {
		err := c.dev.Start(ctx)
		var se *sensor.StartError
		if errors.As(err, &se) && c.metrics != nil {
			c.metrics.StartFailed(se.Step.String())
		}
		return err
	})
}

// StopStream stops streaming.
func (c *Controller) StopStream(ctx context.Context) (models.State, *models.AppError) {
	return c.apply(func() error {
		return c.dev.Stop(ctx)
	})
}

// ReadRegister reads one sensor register.
func (c *Controller) ReadRegister(ctx context.Context, addr hardware.Register) (models.RegisterValue, *models.AppError) {
	v, err := c.dev.ReadRegister(ctx, addr)
	if err != nil {
		return models.RegisterValue{}, toAppError(err)
	}
	return models.RegisterValue{Addr: fmt.Sprintf("0x%04x", addr), Value: v}, nil
}

// Info returns the static sensor description.
func (c *Controller) Info() models.Info {
	return c.info
}
