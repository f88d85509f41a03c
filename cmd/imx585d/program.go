package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/micro-nova/imx585-go/internal/config"
	"github.com/micro-nova/imx585-go/internal/hardware"
	"github.com/micro-nova/imx585-go/internal/sensor"
)

// newProgramCmd prints the register writes a stream start would issue for
// the configured sensor, without touching hardware.
func newProgramCmd(configPath *string) *cobra.Command {
	var width, height int
	var code uint32
	cmd := &cobra.Command{
		Use:   "program",
		Short: "Print the register sequence for a stream start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return dumpProgram(cmd, cfg, sensor.Format{Width: width, Height: height, Code: code}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVar(&width, "width", 3856, "requested width")
	cmd.Flags().IntVar(&height, "height", 2180, "requested height")
	cmd.Flags().Uint32Var(&code, "code", 0, "media bus code (0 selects the variant default)")
	return cmd
}

func dumpProgram(cmd *cobra.Command, cfg *config.Config, req sensor.Format, out io.Writer) error {
	sc, err := cfg.SensorConfig()
	if err != nil {
		return err
	}
	bus := hardware.NewMock()
	printed := 0
	flush := func() {
		ws := bus.Writes()
		for _, a := range ws[printed:] {
			fmt.Fprintf(out, "0x%04x 0x%02x\n", a.Addr, a.Val)
		}
		printed = len(ws)
	}
	dev, err := sensor.Attach(bus, hardware.NopPower{}, sc,
		sensor.WithSleep(func(d time.Duration) {
			flush()
			fmt.Fprintf(out, "# sleep %v\n", d)
		}),
		sensor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		return err
	}
	defer dev.Close(cmd.Context())

	f, err := dev.SetFormat(sensor.Active, nil, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# %dx%d code 0x%04x lanes %d\n", f.Width, f.Height, f.Code, dev.Lanes())
	if err := dev.Start(cmd.Context()); err != nil {
		return err
	}
	flush()
	return nil
}
