package sensor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/micro-nova/imx585-go/internal/hardware"
	"github.com/micro-nova/imx585-go/internal/sensor"
)

func mustControl(t *testing.T, d *sensor.Device, id sensor.ControlID) sensor.Control {
	t.Helper()
	c, err := d.GetControl(id)
	if err != nil {
		t.Fatalf("GetControl(%v): %v", id, err)
	}
	return c
}

func TestControls_Defaults(t *testing.T) {
	f := newFixture(t, testConfig())

	tests := []struct {
		id                     sensor.ControlID
		min, max, step, def, v int64
	}{
		{sensor.ControlGain, 0, 100, 1, 0, 0},
		{sensor.ControlExposure, 8, 2246, 2, 2246, 2246},
		{sensor.ControlHBlank, 4032, 0xffff - 3856, 1, 4032, 4032},
		{sensor.ControlVBlank, 70, 0x0fffff - 2180, 1, 70, 70},
		{sensor.ControlHFlip, 0, 1, 1, 0, 0},
		{sensor.ControlVFlip, 0, 1, 1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			c := mustControl(t, f.dev, tt.id)
			if c.Min != tt.min || c.Max != tt.max || c.Step != tt.step || c.Default != tt.def || c.Value != tt.v {
				t.Errorf("%v = [%d, %d] step %d default %d value %d, want [%d, %d] step %d default %d value %d",
					tt.id, c.Min, c.Max, c.Step, c.Default, c.Value, tt.min, tt.max, tt.step, tt.def, tt.v)
			}
		})
	}

	pr := mustControl(t, f.dev, sensor.ControlPixelRate)
	if !pr.ReadOnly || pr.Value != sensor.DefaultPixelRate {
		t.Errorf("pixel rate = %+v, want read-only %d", pr, sensor.DefaultPixelRate)
	}
}

func TestParseControlID(t *testing.T) {
	for _, id := range sensor.ControlIDs() {
		got, err := sensor.ParseControlID(id.String())
		if err != nil || got != id {
			t.Errorf("ParseControlID(%q) = %v, %v", id.String(), got, err)
		}
	}
	if _, err := sensor.ParseControlID("brightness"); !errors.Is(err, sensor.ErrUnknownControl) {
		t.Errorf("ParseControlID(brightness) error = %v, want ErrUnknownControl", err)
	}
}

func TestRegisterFormulas(t *testing.T) {
	m := &sensor.Modes()[0]

	tests := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"exposure at minimum", sensor.ExposureRegister(m, 70, 8), 2180 + 70 - 8 - 1},
		{"exposure at maximum", sensor.ExposureRegister(m, 70, 2246), 3},
		{"exposure with long frame", sensor.ExposureRegister(m, 1000, 100), 2180 + 1000 - 100 - 1},
		{"vmax default", sensor.VMaxRegister(m, 70), 0x08ca},
		{"hmax default", sensor.HMaxRegister(m, 4032), 3944},
		{"hmax truncates odd", sensor.HMaxRegister(m, 1), 1928},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %d, want %d", tt.got, tt.want)
			}
		})
	}
}

func TestRoundToRange(t *testing.T) {
	tests := []struct {
		v, want int64
	}{
		{2246, 2246},
		{2247, 2246},
		{5000, 2246},
		{2245, 2246},
		{9, 10},
		{10, 10},
		{11, 12},
		{5, 8},
		{-100, 8},
	}
	for _, tt := range tests {
		if got := sensor.RoundToRange(8, 2246, 2, tt.v); got != tt.want {
			t.Errorf("RoundToRange(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestSetControl_Rejects(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	tests := []struct {
		name string
		id   sensor.ControlID
		v    int64
		want error
	}{
		{"gain above max", sensor.ControlGain, 101, sensor.ErrOutOfRange},
		{"gain below min", sensor.ControlGain, -1, sensor.ErrOutOfRange},
		{"exposure off step", sensor.ControlExposure, 9, sensor.ErrOutOfRange},
		{"exposure above frame", sensor.ControlExposure, 2248, sensor.ErrOutOfRange},
		{"hblank below mode minimum", sensor.ControlHBlank, 4031, sensor.ErrOutOfRange},
		{"flip not boolean", sensor.ControlHFlip, 2, sensor.ErrOutOfRange},
		{"pixel rate", sensor.ControlPixelRate, 1, sensor.ErrReadOnly},
		{"link frequency", sensor.ControlLinkFrequency, 0, sensor.ErrReadOnly},
		{"unknown", sensor.ControlID(99), 0, sensor.ErrUnknownControl},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := f.dev.SetControl(ctx, tt.id, tt.v); !errors.Is(err, tt.want) {
				t.Errorf("SetControl error = %v, want %v", err, tt.want)
			}
		})
	}
	if n := len(f.bus.Writes()); n != 0 {
		t.Errorf("rejected controls wrote %d registers", n)
	}
}

func TestSetControl_IdleStoresWithoutIO(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	for _, id := range []sensor.ControlID{sensor.ControlGain, sensor.ControlHFlip} {
		if err := f.dev.SetControl(ctx, id, 1); err != nil {
			t.Fatalf("SetControl(%v): %v", id, err)
		}
	}
	if err := f.dev.SetControl(ctx, sensor.ControlVBlank, 1000); err != nil {
		t.Fatalf("SetControl(vblank): %v", err)
	}
	if n := len(f.bus.Writes()); n != 0 {
		t.Errorf("idle SetControl wrote %d registers, want 0", n)
	}
	if ons, _ := f.power.Counts(); ons != 0 {
		t.Errorf("idle SetControl powered the sensor %d times", ons)
	}
	if c := mustControl(t, f.dev, sensor.ControlGain); c.Value != 1 {
		t.Errorf("gain = %d, want 1", c.Value)
	}
}

func TestSetVBlank_RecomputesExposureRange(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	// Recomputation happens while idle too.
	if err := f.dev.SetControl(ctx, sensor.ControlVBlank, 1000); err != nil {
		t.Fatalf("SetControl(vblank): %v", err)
	}
	exp := mustControl(t, f.dev, sensor.ControlExposure)
	if exp.Min != 8 || exp.Max != 3176 || exp.Step != 2 || exp.Default != 3176 {
		t.Errorf("exposure range = [%d, %d] step %d default %d, want [8, 3176] step 2 default 3176",
			exp.Min, exp.Max, exp.Step, exp.Default)
	}
	if exp.Value != 2246 {
		t.Errorf("in-range exposure changed to %d, want 2246", exp.Value)
	}

	if err := f.dev.SetControl(ctx, sensor.ControlExposure, 3000); err != nil {
		t.Fatalf("SetControl(exposure): %v", err)
	}
	if err := f.dev.SetControl(ctx, sensor.ControlVBlank, 70); err != nil {
		t.Fatalf("SetControl(vblank): %v", err)
	}
	exp = mustControl(t, f.dev, sensor.ControlExposure)
	if exp.Max != 2246 || exp.Value != 2246 {
		t.Errorf("exposure after shrinking frame = max %d value %d, want 2246/2246", exp.Max, exp.Value)
	}
}

func TestSetVBlank_OddFrameLengthKeepsExposureOnGrid(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	// vmax = 71 + 2180 = 2251, so vmax - 4 = 2247 is off the step-2 grid.
	if err := f.dev.SetControl(ctx, sensor.ControlVBlank, 71); err != nil {
		t.Fatalf("SetControl(vblank): %v", err)
	}
	exp := mustControl(t, f.dev, sensor.ControlExposure)
	if exp.Max != 2246 || exp.Default != 2246 || exp.Value != 2246 {
		t.Errorf("exposure = max %d default %d value %d, want 2246/2246/2246", exp.Max, exp.Default, exp.Value)
	}
	if err := f.dev.SetControl(ctx, sensor.ControlExposure, exp.Default); err != nil {
		t.Errorf("SetControl(exposure, default): %v", err)
	}
	if err := f.dev.SetControl(ctx, sensor.ControlExposure, exp.Max+1); !errors.Is(err, sensor.ErrOutOfRange) {
		t.Errorf("SetControl(exposure, %d) = %v, want ErrOutOfRange", exp.Max+1, err)
	}

	// Growing the frame from a shrunk one clamps onto the new maximum.
	if err := f.dev.SetControl(ctx, sensor.ControlVBlank, 1001); err != nil {
		t.Fatalf("SetControl(vblank): %v", err)
	}
	if err := f.dev.SetControl(ctx, sensor.ControlExposure, 3176); err != nil {
		t.Fatalf("SetControl(exposure): %v", err)
	}
	if err := f.dev.SetControl(ctx, sensor.ControlVBlank, 71); err != nil {
		t.Fatalf("SetControl(vblank): %v", err)
	}
	if exp := mustControl(t, f.dev, sensor.ControlExposure); exp.Value != exp.Max {
		t.Errorf("clamped exposure = %d, want max %d", exp.Value, exp.Max)
	}
}

func TestSetVBlank_StreamingRewritesExposure(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	if err := f.dev.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := f.dev.SetControl(ctx, sensor.ControlExposure, 2000); err != nil {
		t.Fatalf("SetControl(exposure): %v", err)
	}
	f.bus.Reset()

	if err := f.dev.SetControl(ctx, sensor.ControlVBlank, 1000); err != nil {
		t.Fatalf("SetControl(vblank): %v", err)
	}
	// vmax = 3180 = 0x000c6c, shr = 2180 + 1000 - 2000 - 1 = 1179 = 0x00049b
	want := []hardware.Access{
		{Op: "write", Addr: sensor.RegHold, Val: 1},
		{Op: "write", Addr: sensor.RegVMax, Val: 0x6c},
		{Op: "write", Addr: sensor.RegVMax + 1, Val: 0x0c},
		{Op: "write", Addr: sensor.RegVMax + 2, Val: 0x00},
		{Op: "write", Addr: sensor.RegHold, Val: 0},
		{Op: "write", Addr: sensor.RegHold, Val: 1},
		{Op: "write", Addr: sensor.RegExposure, Val: 0x9b},
		{Op: "write", Addr: sensor.RegExposure + 1, Val: 0x04},
		{Op: "write", Addr: sensor.RegExposure + 2, Val: 0x00},
		{Op: "write", Addr: sensor.RegHold, Val: 0},
	}
	assertWrites(t, f.bus.Writes(), want)
}

func TestSetGain_ConversionGain(t *testing.T) {
	tests := []struct {
		name    string
		mapping *sensor.GainMapping
		gain    int64
		want    byte
	}{
		{"default below threshold", nil, 0x21, sensor.FDGSelHCG},
		{"default at threshold", nil, 0x22, sensor.FDGSelLCG},
		{"default at max", nil, 100, sensor.FDGSelLCG},
		{"custom threshold below", &sensor.GainMapping{Threshold: 50, Below: 0x01, AtOrAbove: 0x00}, 40, 0x01},
		{"custom threshold above", &sensor.GainMapping{Threshold: 50, Below: 0x01, AtOrAbove: 0x00}, 50, 0x00},
		{"zero threshold always above", &sensor.GainMapping{}, 0, 0x00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Gain = tt.mapping
			f := newFixture(t, cfg)
			ctx := context.Background()
			if err := f.dev.Start(ctx); err != nil {
				t.Fatalf("Start: %v", err)
			}
			f.bus.Reset()

			if err := f.dev.SetControl(ctx, sensor.ControlGain, tt.gain); err != nil {
				t.Fatalf("SetControl(gain): %v", err)
			}
			want := []hardware.Access{
				{Op: "write", Addr: sensor.RegHold, Val: 1},
				{Op: "write", Addr: sensor.RegGain, Val: byte(tt.gain)},
				{Op: "write", Addr: sensor.RegGain + 1, Val: 0},
				{Op: "write", Addr: sensor.RegHold, Val: 0},
				{Op: "write", Addr: sensor.RegFDGSel0, Val: tt.want},
			}
			assertWrites(t, f.bus.Writes(), want)
		})
	}
}

func TestSetHBlank_Streaming(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	if err := f.dev.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.bus.Reset()

	// (4033 + 3856) >> 1 = 3944
	if err := f.dev.SetControl(ctx, sensor.ControlHBlank, 4033); err != nil {
		t.Fatalf("SetControl(hblank): %v", err)
	}
	if lo, hi := f.bus.GetReg(sensor.RegHMax), f.bus.GetReg(sensor.RegHMax+1); lo != 0x68 || hi != 0x0f {
		t.Errorf("HMAX = 0x%02x%02x, want 0x0f68", hi, lo)
	}
}

func TestSetFlip_WhileStreamingIsDeferred(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	if err := f.dev.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.bus.Reset()

	if err := f.dev.SetControl(ctx, sensor.ControlHFlip, 1); err != nil {
		t.Fatalf("SetControl(hflip): %v", err)
	}
	if n := len(f.bus.Writes()); n != 0 {
		t.Errorf("flip while streaming wrote %d registers, want 0", n)
	}
	c := mustControl(t, f.dev, sensor.ControlHFlip)
	if c.Value != 1 || !c.Pending {
		t.Errorf("hflip = value %d pending %v, want 1/true", c.Value, c.Pending)
	}

	if err := f.dev.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := f.dev.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if v := f.bus.GetReg(sensor.RegFlipH); v != 1 {
		t.Errorf("WINMODEH = %d after restart, want 1", v)
	}
	if c := mustControl(t, f.dev, sensor.ControlHFlip); c.Pending {
		t.Error("hflip still pending after restart")
	}
}

func TestSetControl_WriteFailureKeepsOldValue(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	if err := f.dev.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.bus.FailAt(sensor.RegGain + 1)

	err := f.dev.SetControl(ctx, sensor.ControlGain, 10)
	var busErr *hardware.BusError
	if !errors.As(err, &busErr) || busErr.Addr != sensor.RegGain+1 {
		t.Fatalf("SetControl error = %v, want bus error at 0x%04x", err, sensor.RegGain+1)
	}
	if c := mustControl(t, f.dev, sensor.ControlGain); c.Value != 0 {
		t.Errorf("gain = %d after failed write, want 0", c.Value)
	}
	if v := f.bus.GetReg(sensor.RegHold); v != 0 {
		t.Errorf("hold latch left at %d after failed write", v)
	}
}

func assertWrites(t *testing.T, got, want []hardware.Access) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d writes, want %d:\n got  %v\n want %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("write %d = {0x%04x 0x%02x}, want {0x%04x 0x%02x}", i, got[i].Addr, got[i].Val, want[i].Addr, want[i].Val)
		}
	}
}
