// Command imx585d controls an IMX585 image sensor over its register bus and
// serves the control API over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

const defaultConfigPath = "/etc/imx585/imx585d.toml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "imx585d",
		Short:         "IMX585 sensor control daemon",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "configuration file")

	root.AddCommand(
		newServeCmd(&configPath),
		newProgramCmd(&configPath),
		newReadCmd(&configPath),
	)
	return root
}
