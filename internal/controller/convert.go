package controller

import (
	"github.com/micro-nova/imx585-go/internal/models"
	"github.com/micro-nova/imx585-go/internal/sensor"
)

func toFormat(f sensor.Format) models.Format {
	return models.Format{
		Width:      f.Width,
		Height:     f.Height,
		Code:       f.Code,
		CodeName:   models.CodeName(f.Code),
		Field:      f.Field,
		Colorspace: f.Colorspace,
	}
}

func toRect(r sensor.Rect) models.Rect {
	return models.Rect{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height}
}

func toControl(c sensor.Control) models.Control {
	return models.Control{
		Name:     c.Name,
		Min:      c.Min,
		Max:      c.Max,
		Step:     c.Step,
		Default:  c.Default,
		Value:    c.Value,
		ReadOnly: c.ReadOnly,
		Pending:  c.Pending,
		Menu:     c.Menu,
	}
}

func toFrameSize(f sensor.FrameSize) models.FrameSize {
	return models.FrameSize{MinWidth: f.MinWidth, MaxWidth: f.MaxWidth, MinHeight: f.MinHeight, MaxHeight: f.MaxHeight}
}
