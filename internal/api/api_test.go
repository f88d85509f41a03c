package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/micro-nova/imx585-go/internal/api"
	"github.com/micro-nova/imx585-go/internal/config"
	"github.com/micro-nova/imx585-go/internal/controller"
	"github.com/micro-nova/imx585-go/internal/events"
	"github.com/micro-nova/imx585-go/internal/hardware"
	"github.com/micro-nova/imx585-go/internal/metrics"
	"github.com/micro-nova/imx585-go/internal/models"
	"github.com/micro-nova/imx585-go/internal/sensor"
)

type testEnv struct {
	srv   *httptest.Server
	bus   *hardware.Mock
	power *hardware.MockPower
}

// newTestServer spins up a full router over a mock sensor.
func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{bus: hardware.NewMock(), power: hardware.NewMockPower()}
	m := metrics.New()

	dev, err := sensor.Attach(m.InstrumentBus(env.bus), env.power, sensor.Config{
		Variant:         sensor.VariantColor,
		ClockFrequency:  24 * physic.MegaHertz,
		Lanes:           4,
		LinkFrequencies: []int64{sensor.LinkFreq4Lane},
	}, sensor.WithSleep(func(time.Duration) {}), sensor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	bus := events.NewBus()
	ctrl, err := controller.New(dev, models.Info{Version: "test"}, config.NewMemStore(), bus, m)
	if err != nil {
		t.Fatalf("controller.New: %v", err)
	}

	env.srv = httptest.NewServer(api.NewRouter(ctrl, bus, m.Handler()))
	t.Cleanup(env.srv.Close)
	return env
}

func do(t *testing.T, env *testEnv, method, path, body string) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, env.srv.URL+path, bodyReader)
	if err != nil {
		t.Fatalf("NewRequest %s %s: %v", method, path, err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := env.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("Do %s %s: %v", method, path, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
}

func requireStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, expected, body)
	}
}

func TestGetState(t *testing.T) {
	env := newTestServer(t)
	for _, path := range []string{"/api", "/api/"} {
		resp := do(t, env, "GET", path, "")
		requireStatus(t, resp, http.StatusOK)

		var state models.State
		decodeJSON(t, resp, &state)
		if state.Stream != models.StreamIdle || state.Info.Version != "test" || len(state.Controls) != 8 {
			t.Errorf("GET %s = %+v", path, state)
		}
	}
}

func TestControls(t *testing.T) {
	env := newTestServer(t)

	resp := do(t, env, "GET", "/api/controls", "")
	requireStatus(t, resp, http.StatusOK)
	var list struct {
		Controls []models.Control `json:"controls"`
	}
	decodeJSON(t, resp, &list)
	if len(list.Controls) != 8 {
		t.Errorf("got %d controls", len(list.Controls))
	}

	resp = do(t, env, "PATCH", "/api/controls/exposure", `{"value": 100}`)
	requireStatus(t, resp, http.StatusOK)
	var state models.State
	decodeJSON(t, resp, &state)
	if c, _ := state.Control("exposure"); c.Value != 100 {
		t.Errorf("exposure = %d, want 100", c.Value)
	}

	resp = do(t, env, "GET", "/api/controls/exposure", "")
	requireStatus(t, resp, http.StatusOK)
	var c models.Control
	decodeJSON(t, resp, &c)
	if c.Value != 100 || c.Step != 2 {
		t.Errorf("GET exposure = %+v", c)
	}
}

func TestControls_Errors(t *testing.T) {
	env := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown control", "GET", "/api/controls/brightness", "", 404},
		{"bad json", "PATCH", "/api/controls/gain", "{nope", 400},
		{"missing value", "PATCH", "/api/controls/gain", "{}", 400},
		{"off step", "PATCH", "/api/controls/exposure", `{"value": 9}`, 400},
		{"read-only", "PATCH", "/api/controls/pixel_rate", `{"value": 1}`, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, env, tt.method, tt.path, tt.body)
			requireStatus(t, resp, tt.status)
			var appErr models.AppError
			decodeJSON(t, resp, &appErr)
			if appErr.Code == "" {
				t.Error("error body has no code")
			}
		})
	}
}

func TestFormats(t *testing.T) {
	env := newTestServer(t)

	resp := do(t, env, "GET", "/api/formats", "")
	requireStatus(t, resp, http.StatusOK)
	var fl struct {
		Formats []models.Format `json:"formats"`
	}
	decodeJSON(t, resp, &fl)
	if len(fl.Formats) != 2 || fl.Formats[1].CodeName != "SRGGB12_1X12" {
		t.Errorf("formats = %+v", fl.Formats)
	}

	resp = do(t, env, "GET", "/api/frame-sizes?code=0x3012", "")
	requireStatus(t, resp, http.StatusOK)
	var fs struct {
		Sizes []models.FrameSize `json:"frame_sizes"`
	}
	decodeJSON(t, resp, &fs)
	if len(fs.Sizes) != 1 || fs.Sizes[0].MaxWidth != 3856 {
		t.Errorf("frame sizes = %+v", fs.Sizes)
	}

	requireStatus(t, do(t, env, "GET", "/api/frame-sizes?code=zzz", ""), http.StatusBadRequest)
	requireStatus(t, do(t, env, "GET", "/api/frame-sizes?code=0x200a", ""), http.StatusBadRequest)
}

func TestFormat_TryAndActive(t *testing.T) {
	env := newTestServer(t)

	resp := do(t, env, "PUT", "/api/format?which=try", `{"width": 640, "height": 480, "code": 12306}`)
	requireStatus(t, resp, http.StatusOK)
	var f models.Format
	decodeJSON(t, resp, &f)
	if f.Code != sensor.CodeSRGGB12 || f.Width != 3856 {
		t.Errorf("try format = %+v", f)
	}

	resp = do(t, env, "GET", "/api/format", "")
	requireStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &f)
	if f.Code != sensor.CodeSRGGB10 {
		t.Errorf("active code changed by try: %+v", f)
	}

	resp = do(t, env, "PUT", "/api/format?which=active", `{"code": 12306}`)
	requireStatus(t, resp, http.StatusOK)
	resp = do(t, env, "GET", "/api/format?which=active", "")
	requireStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &f)
	if f.Code != sensor.CodeSRGGB12 {
		t.Errorf("active format = %+v", f)
	}

	requireStatus(t, do(t, env, "GET", "/api/format?which=later", ""), http.StatusBadRequest)
}

func TestSelection(t *testing.T) {
	env := newTestServer(t)
	resp := do(t, env, "GET", "/api/selection/crop_bounds", "")
	requireStatus(t, resp, http.StatusOK)
	var r models.Rect
	decodeJSON(t, resp, &r)
	if r != (models.Rect{Left: 0, Top: 20, Width: 3856, Height: 2180}) {
		t.Errorf("crop_bounds = %+v", r)
	}
	requireStatus(t, do(t, env, "GET", "/api/selection/compose", ""), http.StatusBadRequest)
}

func TestStream(t *testing.T) {
	env := newTestServer(t)

	resp := do(t, env, "POST", "/api/stream/start", "")
	requireStatus(t, resp, http.StatusOK)
	var state models.State
	decodeJSON(t, resp, &state)
	if state.Stream != models.StreamStreaming {
		t.Errorf("stream = %q", state.Stream)
	}
	requireStatus(t, do(t, env, "POST", "/api/stream/start", ""), http.StatusConflict)
	requireStatus(t, do(t, env, "PUT", "/api/format", `{}`), http.StatusConflict)

	// Flips while streaming are accepted and left pending.
	resp = do(t, env, "PATCH", "/api/controls/vflip", `{"value": 1}`)
	requireStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &state)
	if c, _ := state.Control("vflip"); !c.Pending {
		t.Errorf("vflip = %+v, want pending", c)
	}

	resp = do(t, env, "POST", "/api/stream/stop", "")
	requireStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp, &state)
	if state.Stream != models.StreamIdle || env.power.IsOn() {
		t.Errorf("stream = %q power %v", state.Stream, env.power.IsOn())
	}

	requireStatus(t, do(t, env, "POST", "/api/stream/pause", ""), http.StatusNotFound)
}

func TestStream_StartFailure(t *testing.T) {
	env := newTestServer(t)
	env.bus.FailAt(sensor.RegLaneRate)

	resp := do(t, env, "POST", "/api/stream/start", "")
	requireStatus(t, resp, http.StatusInternalServerError)
	var appErr models.AppError
	decodeJSON(t, resp, &appErr)
	if appErr.Field != "lane rate" {
		t.Errorf("error = %+v, want lane rate step", appErr)
	}
}

func TestReadRegister(t *testing.T) {
	env := newTestServer(t)
	env.bus.SetReg(0x3014, 0x03)

	resp := do(t, env, "GET", "/api/registers/0x3014", "")
	requireStatus(t, resp, http.StatusOK)
	var rv models.RegisterValue
	decodeJSON(t, resp, &rv)
	if rv.Value != 0x03 || rv.Addr != "0x3014" {
		t.Errorf("register = %+v", rv)
	}
	requireStatus(t, do(t, env, "GET", "/api/registers/0x123456", ""), http.StatusBadRequest)
}

func TestMetrics(t *testing.T) {
	env := newTestServer(t)
	requireStatus(t, do(t, env, "POST", "/api/stream/start", ""), http.StatusOK)

	resp := do(t, env, "GET", "/metrics", "")
	requireStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	for _, want := range []string{
		"imx585_sensor_streaming 1",
		`imx585_bus_operations_total{op="write",result="ok"}`,
		`imx585_sensor_control_value{control="exposure"} 2246`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestServer(t)
	resp := do(t, env, "OPTIONS", "/api/controls/gain", "")
	requireStatus(t, resp, http.StatusNoContent)
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestSSESubscribe(t *testing.T) {
	env := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.srv.URL+"/api/subscribe", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	next := func() models.State {
		t.Helper()
		timeout := time.After(3 * time.Second)
		for {
			select {
			case line, ok := <-lines:
				if !ok {
					t.Fatal("SSE stream closed")
				}
				if data, found := strings.CutPrefix(line, "data: "); found {
					var st models.State
					if err := json.Unmarshal([]byte(data), &st); err != nil {
						t.Fatalf("SSE data is not valid State JSON: %v", err)
					}
					return st
				}
			case <-timeout:
				t.Fatal("no SSE event")
			}
		}
	}

	if st := next(); st.Stream != models.StreamIdle {
		t.Errorf("initial stream = %q", st.Stream)
	}
	requireStatus(t, do(t, env, "PATCH", "/api/controls/gain", `{"value": 7}`), http.StatusOK)
	st := next()
	if c, _ := st.Control("gain"); c.Value != 7 {
		t.Errorf("pushed gain = %d, want 7", c.Value)
	}
}
