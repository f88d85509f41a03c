package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/micro-nova/imx585-go/internal/hardware"
	"github.com/micro-nova/imx585-go/internal/models"
)

func (h *Handlers) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.State())
}

func (h *Handlers) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Info())
}

func (h *Handlers) getControls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"controls": h.ctrl.GetControls()})
}

func (h *Handlers) getControl(w http.ResponseWriter, r *http.Request) {
	c, appErr := h.ctrl.GetControl(chi.URLParam(r, "name"))
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) setControl(w http.ResponseWriter, r *http.Request) {
	var upd models.ControlUpdate
	if appErr := decodeBody(r, &upd); appErr != nil {
		writeError(w, appErr)
		return
	}
	state, appErr := h.ctrl.SetControl(r.Context(), chi.URLParam(r, "name"), upd)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) getFormats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"formats": h.ctrl.Formats()})
}

func (h *Handlers) getFrameSizes(w http.ResponseWriter, r *http.Request) {
	code, appErr := uintParam(r.URL.Query().Get("code"), "code", 32)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	sizes, appErr := h.ctrl.FrameSizes(uint32(code))
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"frame_sizes": sizes})
}

func (h *Handlers) getFormat(w http.ResponseWriter, r *http.Request) {
	which, appErr := whichParam(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.GetFormat(which))
}

func (h *Handlers) setFormat(w http.ResponseWriter, r *http.Request) {
	which, appErr := whichParam(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	var req models.FormatRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	f, appErr := h.ctrl.SetFormat(which, req)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handlers) getSelection(w http.ResponseWriter, r *http.Request) {
	which, appErr := whichParam(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	rect, appErr := h.ctrl.Selection(chi.URLParam(r, "target"), which)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, rect)
}

func (h *Handlers) streamCmd(w http.ResponseWriter, r *http.Request) {
	var (
		state  models.State
		appErr *models.AppError
	)
	switch cmd := chi.URLParam(r, "cmd"); cmd {
	case "start":
		state, appErr = h.ctrl.StartStream(r.Context())
	case "stop":
		state, appErr = h.ctrl.StopStream(r.Context())
	default:
		appErr = models.ErrNotFound("unknown stream command " + cmd)
	}
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handlers) readRegister(w http.ResponseWriter, r *http.Request) {
	addr, appErr := uintParam(chi.URLParam(r, "addr"), "addr", 16)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	rv, appErr := h.ctrl.ReadRegister(r.Context(), hardware.Register(addr))
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}
