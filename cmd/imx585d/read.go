package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/micro-nova/imx585-go/internal/config"
)

func newReadCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "read <addr>",
		Short: "Read one sensor register",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseRegister(args[0])
			if err != nil {
				return err
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg.Logging, new(slog.LevelVar))
			dev, _, err := attach(cfg, nil, log)
			if err != nil {
				return err
			}
			defer dev.Close(cmd.Context())

			v, err := dev.ReadRegister(cmd.Context(), addr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "0x%04x = 0x%02x\n", addr, v)
			return nil
		},
	}
}
