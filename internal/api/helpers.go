// Package api implements the HTTP API of the sensor daemon.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/micro-nova/imx585-go/internal/events"
	"github.com/micro-nova/imx585-go/internal/hardware"
	"github.com/micro-nova/imx585-go/internal/models"
	"github.com/micro-nova/imx585-go/internal/sensor"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	ctrl   Controller
	events EventBus
}

// Controller is what the handlers need from the service layer.
type Controller interface {
	State() models.State
	Info() models.Info
	GetControls() []models.Control
	GetControl(name string) (*models.Control, *models.AppError)
	SetControl(ctx context.Context, name string, upd models.ControlUpdate) (models.State, *models.AppError)
	Formats() []models.Format
	FrameSizes(code uint32) ([]models.FrameSize, *models.AppError)
	GetFormat(which sensor.Which) models.Format
	SetFormat(which sensor.Which, req models.FormatRequest) (models.Format, *models.AppError)
	Selection(target string, which sensor.Which) (models.Rect, *models.AppError)
	StartStream(ctx context.Context) (models.State, *models.AppError)
	StopStream(ctx context.Context) (models.State, *models.AppError)
	ReadRegister(ctx context.Context, addr hardware.Register) (models.RegisterValue, *models.AppError)
}

// EventBus delivers state changes to SSE clients.
type EventBus interface {
	Subscribe(id string) <-chan events.Event
	Unsubscribe(id string)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if appErr, ok := err.(*models.AppError); ok {
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(appErr)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.ErrInternal(err.Error()))
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) *models.AppError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.ErrBadRequest("invalid JSON: " + err.Error())
	}
	return nil
}

// whichParam reads the ?which= query parameter, defaulting to active.
func whichParam(r *http.Request) (sensor.Which, *models.AppError) {
	w, err := sensor.ParseWhich(r.URL.Query().Get("which"))
	if err != nil {
		e := models.ErrBadRequest(err.Error())
		e.Field = "which"
		return 0, e
	}
	return w, nil
}

// uintParam parses a decimal or 0x-prefixed unsigned value.
func uintParam(s, name string, bits int) (uint64, *models.AppError) {
	n, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		e := models.ErrBadRequest("invalid " + name + " parameter")
		e.Field = name
		return 0, e
	}
	return n, nil
}
