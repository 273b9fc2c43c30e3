package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	c "lautenbacher.net/potileds/config"
	"lautenbacher.net/potileds/logging"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "potileds",
		Short: "Control an LED strip with hue, saturation and brightness potis",
		Long: `potileds reads three potis through a multiplexed ADC and turns their
positions into the color and brightness of an LED strip. Without --real the
potis and the strip are simulated in the terminal.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfile, _ := cmd.Flags().GetString("config")
			realhw, _ := cmd.Flags().GetBool("real")

			ossignal := make(chan os.Signal, 4)
			signal.Notify(ossignal, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer signal.Stop(ossignal)

			err := NewApp(cfile, realhw, ossignal).Run()
			if err != nil {
				slog.Error("Controller stopped with error", "error", err)
			}
			if cerr := logging.Close(); cerr != nil && err == nil {
				err = cerr
			}
			return err
		},
	}
	root.PersistentFlags().StringP("config", "c", c.CONFILE, "Path to the config file")
	root.PersistentFlags().BoolP("real", "r", false, "Set to true if program runs on the real hardware")
	root.AddCommand(newCalibrateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
