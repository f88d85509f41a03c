package sensor

import (
	"context"
	"fmt"
	"time"
)

// standbySettle is the wait after leaving or entering standby.
const standbySettle = 30 * time.Millisecond

// State is the streaming state of the device.
type State int

const (
	StateIdle State = iota
	StateConfiguring
	StateStreaming
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfiguring:
		return "configuring"
	case StateStreaming:
		return "streaming"
	case StateStopping:
		return "stopping"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// StartStep identifies a step of the stream start sequence.
type StartStep int

const (
	StepPowerOn StartStep = iota
	StepGlobalDefaults
	StepClockSelect
	StepFormat
	StepModeProgram
	StepLaneMode
	StepLaneRate
	StepControls
	StepStandbyClear
	StepMasterStart
)

var stepNames = [...]string{
	StepPowerOn:        "power on",
	StepGlobalDefaults: "global defaults",
	StepClockSelect:    "clock select",
	StepFormat:         "format",
	StepModeProgram:    "mode program",
	StepLaneMode:       "lane mode",
	StepLaneRate:       "lane rate",
	StepControls:       "controls",
	StepStandbyClear:   "standby clear",
	StepMasterStart:    "master start",
}

func (s StartStep) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// StartError reports the step at which Start failed. The sensor has been
// powered off and the device is idle again.
type StartError struct {
	Step StartStep
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start stream: %s: %v", e.Step, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// Start powers the sensor, programs it from scratch and begins streaming.
// The device lock is held throughout, so control and format changes wait
// until the sequence has finished.
func (d *Device) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.state != StateIdle {
		return ErrBusy
	}

	d.state = StateConfiguring
	if err := d.power.PowerOn(ctx); err != nil {
		d.state = StateIdle
		return &StartError{Step: StepPowerOn, Err: err}
	}
	d.powered = true

	if step, err := d.program(ctx); err != nil {
		d.log.Error("sensor: start failed", "step", step, "err", err)
		d.powerOffLocked()
		d.state = StateIdle
		return &StartError{Step: step, Err: err}
	}

	d.ctrls[ControlHFlip].Pending = false
	d.ctrls[ControlVFlip].Pending = false
	d.state = StateStreaming
	d.log.Info("sensor: streaming", "width", d.format.Width, "height", d.format.Height, "lanes", d.lanes)
	return nil
}

// program runs every register step of the start sequence after power-on.
func (d *Device) program(ctx context.Context) (StartStep, error) {
	if err := replay(ctx, d.bus, globalSettings, d.sleep); err != nil {
		return StepGlobalDefaults, err
	}
	if err := d.bus.Write(ctx, RegInckSel, d.inckSel); err != nil {
		return StepClockSelect, err
	}

	depth, err := bitDepthCode(d.formats[d.formatIdx].BPP)
	if err != nil {
		return StepFormat, err
	}
	if err := d.bus.Write(ctx, RegADBit, depth); err != nil {
		return StepFormat, err
	}
	if err := d.bus.Write(ctx, RegMDBit, depth); err != nil {
		return StepFormat, err
	}

	if err := replay(ctx, d.bus, d.mode().Program, d.sleep); err != nil {
		return StepModeProgram, err
	}

	laneMode, laneRate := LaneMode4, LaneRate594
	if d.lanes == 2 {
		laneMode, laneRate = LaneMode2, LaneRate1188
	}
	if err := d.bus.Write(ctx, RegLaneMode, laneMode); err != nil {
		return StepLaneMode, err
	}
	if err := d.bus.Write(ctx, RegLaneRate, laneRate); err != nil {
		return StepLaneRate, err
	}

	for _, id := range replayOrder {
		if err := d.writeControl(ctx, &d.ctrls, id); err != nil {
			return StepControls, err
		}
	}

	if err := d.bus.Write(ctx, RegStandby, 0x00); err != nil {
		return StepStandbyClear, err
	}
	d.sleep(standbySettle)
	if err := d.bus.Write(ctx, RegMasterStop, 0x00); err != nil {
		return StepMasterStart, err
	}
	return 0, nil
}

// Stop ends streaming and powers the sensor off. Register write failures
// are logged; power is always released. Stopping an idle device does
// nothing.
func (d *Device) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.state != StateStreaming {
		return nil
	}
	d.stopLocked(ctx)
	return nil
}

func (d *Device) stopLocked(ctx context.Context) {
	d.state = StateStopping
	// Teardown runs to completion even if the caller has given up.
	ctx = context.WithoutCancel(ctx)
	if err := d.bus.Write(ctx, RegStandby, 0x01); err != nil {
		d.log.Warn("sensor: enter standby failed", "err", err)
	}
	d.sleep(standbySettle)
	if err := d.bus.Write(ctx, RegMasterStop, 0x01); err != nil {
		d.log.Warn("sensor: master stop failed", "err", err)
	}
	d.powerOffLocked()
	d.state = StateIdle
	d.log.Info("sensor: stopped")
}

func (d *Device) powerOffLocked() {
	d.power.PowerOff()
	d.powered = false
}

// State returns the current streaming state.
func (d *Device) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}
