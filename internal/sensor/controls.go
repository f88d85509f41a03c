package sensor

import (
	"context"
	"fmt"
	"math"

	"github.com/micro-nova/imx585-go/internal/hardware"
)

// ControlID names a sensor control. The set is closed; every switch over it
// lists all members.
type ControlID int

const (
	ControlGain ControlID = iota
	ControlExposure
	ControlHBlank
	ControlVBlank
	ControlHFlip
	ControlVFlip
	ControlPixelRate
	ControlLinkFrequency

	numControls
)

var controlNames = [numControls]string{
	ControlGain:          "gain",
	ControlExposure:      "exposure",
	ControlHBlank:        "hblank",
	ControlVBlank:        "vblank",
	ControlHFlip:         "hflip",
	ControlVFlip:         "vflip",
	ControlPixelRate:     "pixel_rate",
	ControlLinkFrequency: "link_frequency",
}

func (c ControlID) String() string {
	if c < 0 || c >= numControls {
		return fmt.Sprintf("control(%d)", int(c))
	}
	return controlNames[c]
}

// ParseControlID resolves a control name as returned by String.
func ParseControlID(name string) (ControlID, error) {
	for i, n := range controlNames {
		if n == name {
			return ControlID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownControl, name)
}

// ControlIDs lists every control in declaration order.
func ControlIDs() []ControlID {
	ids := make([]ControlID, numControls)
	for i := range ids {
		ids[i] = ControlID(i)
	}
	return ids
}

// Control is the range and value of one control.
type Control struct {
	ID       ControlID `json:"-"`
	Name     string    `json:"name"`
	Min      int64     `json:"min"`
	Max      int64     `json:"max"`
	Step     int64     `json:"step"`
	Default  int64     `json:"default"`
	Value    int64     `json:"value"`
	ReadOnly bool      `json:"read_only,omitempty"`
	// Pending is set on a flip changed while streaming. The new value reaches
	// the sensor at the next stream start.
	Pending bool    `json:"pending,omitempty"`
	Menu    []int64 `json:"menu,omitempty"`
}

// valid reports whether v lies on the control's grid.
func (c *Control) valid(v int64) bool {
	if v < c.Min || v > c.Max {
		return false
	}
	return c.Step <= 1 || (v-c.Min)%c.Step == 0
}

// modifyRange installs a new range and default and moves the current value
// onto it. Max and default are pulled down onto the step grid from min.
func (c *Control) modifyRange(min, max, step, def int64) {
	if step > 1 {
		max = min + (max-min)/step*step
	}
	c.Min, c.Max, c.Step = min, max, step
	c.Default = c.roundToRange(def)
	c.Value = c.roundToRange(c.Value)
}

// roundToRange follows v4l2's ROUND_TO_RANGE: v goes to the nearest step
// from the minimum, ties rounding up, then is clamped into [Min, Max].
func (c *Control) roundToRange(v int64) int64 {
	if v >= c.Max-c.Step/2 {
		v = c.Max
	} else {
		v += c.Step / 2
	}
	if v < c.Min {
		v = c.Min
	}
	if v > c.Max {
		v = c.Max
	}
	if c.Step > 1 {
		v = c.Min + ((v-c.Min)/c.Step)*c.Step
	}
	return v
}

// controlSet holds every control by ID. It is a value type so a mutation can
// be staged on a copy and committed only once the bus writes succeed.
type controlSet [numControls]Control

// GainMapping selects the conversion gain mode from the analog gain.
type GainMapping struct {
	Threshold int64
	Below     byte // written when gain < Threshold
	AtOrAbove byte // written when gain >= Threshold
}

// DefaultGainMapping selects high conversion gain below 0x22 and low
// conversion gain from there on.
func DefaultGainMapping() GainMapping {
	return GainMapping{
		Threshold: DefaultGainThreshold,
		Below:     FDGSelHCG,
		AtOrAbove: FDGSelLCG,
	}
}

// ConversionGain returns the FDG_SEL0 code for gain.
func (g GainMapping) ConversionGain(gain int64) byte {
	if gain < g.Threshold {
		return g.Below
	}
	return g.AtOrAbove
}

// ExposureRegister converts an exposure in lines to the SHR0 value, which
// counts from the end of the frame.
func ExposureRegister(m *Mode, vblank, exposure int64) uint32 {
	return uint32(int64(m.Height) + vblank - exposure - 1)
}

// VMaxRegister converts a vertical blanking to the frame length.
func VMaxRegister(m *Mode, vblank int64) uint32 {
	return uint32(vblank + int64(m.Height))
}

// HMaxRegister converts a horizontal blanking to the line length in
// half-pixel-clock units.
func HMaxRegister(m *Mode, hblank int64) uint32 {
	return uint32(hblank+int64(m.Width)) >> 1
}

// exposureMax is the largest exposure a frame length allows.
func exposureMax(vmax int64) int64 {
	return vmax - ExposureOffset
}

// newControlSet builds the controls for mode with every value at its default.
func newControlSet(m *Mode, lanes int) controlSet {
	var cs controlSet
	for i := range cs {
		cs[i].ID = ControlID(i)
		cs[i].Name = ControlID(i).String()
	}
	set := func(id ControlID, min, max, step, def int64) {
		c := &cs[id]
		c.Min, c.Max, c.Step, c.Default, c.Value = min, max, step, def, def
	}
	set(ControlGain, GainMin, GainMax, GainStep, 0)
	set(ControlHFlip, 0, 1, 1, 0)
	set(ControlVFlip, 0, 1, 1, 0)
	set(ControlPixelRate, 1, math.MaxInt32, 1, DefaultPixelRate)
	cs[ControlPixelRate].ReadOnly = true

	freq := int64(LinkFreq4Lane)
	if lanes == 2 {
		freq = LinkFreq2Lane
	}
	set(ControlLinkFrequency, 0, 0, 1, 0)
	cs[ControlLinkFrequency].Menu = []int64{freq}
	cs[ControlLinkFrequency].ReadOnly = true

	// The blanking controls start at their minimum and exposure at its
	// maximum; applyModeRanges puts them there.
	set(ControlExposure, ExposureMin, exposureMax(int64(m.VMax)), ExposureStep, exposureMax(int64(m.VMax)))
	cs.applyModeRanges(m)
	return cs
}

// applyModeRanges derives the blanking and exposure ranges from mode and
// resets both blanking values to their defaults.
func (cs *controlSet) applyModeRanges(m *Mode) {
	hb := &cs[ControlHBlank]
	hb.Min, hb.Max, hb.Step, hb.Default = int64(m.HBlankMin()), int64(HMaxMax-m.Width), 1, int64(m.HBlankMin())
	hb.Value = hb.Default

	vb := &cs[ControlVBlank]
	vb.Min, vb.Max, vb.Step, vb.Default = int64(m.VBlankMin()), int64(VMaxMax-m.Height), 1, int64(m.VBlankMin())
	vb.Value = vb.Default

	cs.applyVBlankToExposure(m)
	cs[ControlPixelRate].Value = DefaultPixelRate
}

// applyVBlankToExposure recomputes the exposure range from the current
// vertical blanking. The default becomes the new maximum.
func (cs *controlSet) applyVBlankToExposure(m *Mode) {
	vmax := int64(VMaxRegister(m, cs[ControlVBlank].Value))
	max := exposureMax(vmax)
	cs[ControlExposure].modifyRange(ExposureMin, max, ExposureStep, max)
}

// writeControl pushes one control's current value in cs to the sensor.
// The caller holds d.mu and has powered the sensor.
func (d *Device) writeControl(ctx context.Context, cs *controlSet, id ControlID) error {
	switch id {
	case ControlGain:
		return d.writeGain(ctx, cs[ControlGain].Value)
	case ControlExposure:
		return d.writeExposure(ctx, cs)
	case ControlHBlank:
		return d.writeHBlank(ctx, cs[ControlHBlank].Value)
	case ControlVBlank:
		return d.writeVBlank(ctx, cs)
	case ControlHFlip:
		return d.writeFlip(ctx, RegFlipH, cs[ControlHFlip].Value)
	case ControlVFlip:
		return d.writeFlip(ctx, RegFlipV, cs[ControlVFlip].Value)
	case ControlPixelRate, ControlLinkFrequency:
		// Informational only; nothing to program.
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnknownControl, id)
}

func (d *Device) writeGain(ctx context.Context, gain int64) error {
	if err := writeHeld(ctx, d.bus, RegGain, 2, uint32(gain)); err != nil {
		return fmt.Errorf("gain: %w", err)
	}
	if err := d.bus.Write(ctx, RegFDGSel0, d.gain.ConversionGain(gain)); err != nil {
		return fmt.Errorf("conversion gain: %w", err)
	}
	return nil
}

func (d *Device) writeExposure(ctx context.Context, cs *controlSet) error {
	shr := ExposureRegister(d.mode(), cs[ControlVBlank].Value, cs[ControlExposure].Value)
	if err := writeHeld(ctx, d.bus, RegExposure, 3, shr); err != nil {
		return fmt.Errorf("exposure: %w", err)
	}
	return nil
}

func (d *Device) writeHBlank(ctx context.Context, hblank int64) error {
	if err := writeHeld(ctx, d.bus, RegHMax, 2, HMaxRegister(d.mode(), hblank)); err != nil {
		return fmt.Errorf("hmax: %w", err)
	}
	return nil
}

// writeVBlank programs the frame length and then rewrites exposure: SHR0
// counts from the end of the frame, so a new VMAX alone would silently
// change the exposure time.
func (d *Device) writeVBlank(ctx context.Context, cs *controlSet) error {
	if err := writeHeld(ctx, d.bus, RegVMax, 3, VMaxRegister(d.mode(), cs[ControlVBlank].Value)); err != nil {
		return fmt.Errorf("vmax: %w", err)
	}
	return d.writeExposure(ctx, cs)
}

func (d *Device) writeFlip(ctx context.Context, reg hardware.Register, v int64) error {
	if err := d.bus.Write(ctx, reg, byte(v)); err != nil {
		return fmt.Errorf("flip: %w", err)
	}
	return nil
}

// replayOrder is the order in which controls are pushed at stream start.
var replayOrder = []ControlID{
	ControlGain,
	ControlExposure,
	ControlHBlank,
	ControlVBlank,
	ControlHFlip,
	ControlVFlip,
}

// SetControl validates v against the control's current range and stores it.
// When the sensor is streaming the value is also written; otherwise it is
// written at the next Start. Flips changed while streaming are held back
// until the next Start.
func (d *Device) SetControl(ctx context.Context, id ControlID, v int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if id < 0 || id >= numControls {
		return fmt.Errorf("%w: %v", ErrUnknownControl, id)
	}

	next := d.ctrls
	c := &next[id]
	if c.ReadOnly {
		return fmt.Errorf("%w: %v", ErrReadOnly, id)
	}
	if !c.valid(v) {
		return fmt.Errorf("%w: %v=%d not in [%d, %d] step %d", ErrOutOfRange, id, v, c.Min, c.Max, c.Step)
	}
	c.Value = v

	if id == ControlVBlank {
		next.applyVBlankToExposure(d.mode())
	}

	write := d.powered
	if (id == ControlHFlip || id == ControlVFlip) && d.state == StateStreaming {
		c.Pending = true
		write = false
		d.log.Warn("sensor: flip change deferred until next stream start", "control", id, "value", v)
	}

	if write {
		if err := d.writeControl(ctx, &next, id); err != nil {
			return err
		}
	}
	d.ctrls = next
	d.log.Debug("sensor: control set", "control", id, "value", v, "written", write)
	return nil
}

// GetControl returns a copy of one control.
func (d *Device) GetControl(id ControlID) (Control, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id < 0 || id >= numControls {
		return Control{}, fmt.Errorf("%w: %v", ErrUnknownControl, id)
	}
	return d.ctrls[id].clone(), nil
}

// Controls returns a copy of every control in ID order.
func (d *Device) Controls() []Control {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ctrls.list()
}

func (cs *controlSet) list() []Control {
	out := make([]Control, len(cs))
	for i := range cs {
		out[i] = cs[i].clone()
	}
	return out
}

func (c Control) clone() Control {
	if c.Menu != nil {
		c.Menu = append([]int64(nil), c.Menu...)
	}
	return c
}
