package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	c "lautenbacher.net/potileds/config"
	"lautenbacher.net/potileds/hardware"
	pl "lautenbacher.net/potileds/platform"
	"lautenbacher.net/potileds/potis"
)

// potiRange is the observed range of one poti.
type potiRange struct {
	Min int
	Max int
}

func (p *potiRange) add(value int) {
	p.Min = min(p.Min, value)
	p.Max = max(p.Max, value)
}

type calibrationResult struct {
	Samples    int
	Hue        potiRange
	Brightness potiRange
	Saturation potiRange
}

// Suggested returns the calibration bounds covering all three potis.
func (r calibrationResult) Suggested() (int, int) {
	lo := min(r.Hue.Min, r.Brightness.Min, r.Saturation.Min)
	hi := max(r.Hue.Max, r.Brightness.Max, r.Saturation.Max)
	return lo, hi
}

func newCalibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Sample the potis and suggest MinAnalog and MaxAnalog",
		Long: `Turn every poti through its full range while this command samples them.
The observed extremes are the calibration bounds for the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfile, _ := cmd.Flags().GetString("config")
			realhw, _ := cmd.Flags().GetBool("real")
			duration, _ := cmd.Flags().GetDuration("duration")

			conf, err := c.ReadConfig(cfile, realhw)
			if err != nil {
				return err
			}

			var board hardware.Board
			if realhw {
				rpi := pl.NewRaspberryPiPlatform(conf)
				if err := rpi.Start(); err != nil {
					return fmt.Errorf("failed to start platform: %w", err)
				}
				defer rpi.Stop()
				board = rpi.Board()
			} else {
				sim := hardware.NewSimulatedBoard(conf.Simulation.Noise)
				sim.AttachPoti(conf.Potis.HuePin, conf.Simulation.Hue)
				sim.AttachPoti(conf.Potis.BrightnessPin, conf.Simulation.Brightness)
				sim.AttachPoti(conf.Potis.SaturationPin, conf.Simulation.Saturation)
				board = sim
			}

			controls := newPotisControls(conf.Potis, board, nil)
			if err := controls.Setup(); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt)
			defer signal.Stop(stop)

			fmt.Fprintf(cmd.OutOrStdout(), "Sampling potis for %s, turn each one through its full range...\n", duration)
			result := calibrate(controls, conf.Potis.PollInterval, time.After(duration), stop)
			printCalibration(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().DurationP("duration", "d", 10*time.Second, "How long to sample")
	return cmd
}

// calibrate samples on every interval until done fires or stop
// receives a signal.
func calibrate(controls *potis.Controls, interval time.Duration, done <-chan time.Time, stop <-chan os.Signal) calibrationResult {
	result := calibrationResult{
		Hue:        potiRange{Min: hardware.AdcMax, Max: 0},
		Brightness: potiRange{Min: hardware.AdcMax, Max: 0},
		Saturation: potiRange{Min: hardware.AdcMax, Max: 0},
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return result
		case <-stop:
			return result
		case <-ticker.C:
			sample := controls.Sample()
			result.Samples++
			result.Hue.add(sample.Hue)
			result.Brightness.add(sample.Brightness)
			result.Saturation.add(sample.Saturation)
		}
	}
}

func printCalibration(w io.Writer, result calibrationResult) {
	if result.Samples == 0 {
		fmt.Fprintln(w, "No samples taken.")
		return
	}
	fmt.Fprintf(w, "%-12s %5s %5s\n", "Poti", "Min", "Max")
	fmt.Fprintf(w, "%-12s %5d %5d\n", "hue", result.Hue.Min, result.Hue.Max)
	fmt.Fprintf(w, "%-12s %5d %5d\n", "brightness", result.Brightness.Min, result.Brightness.Max)
	fmt.Fprintf(w, "%-12s %5d %5d\n", "saturation", result.Saturation.Min, result.Saturation.Max)
	lo, hi := result.Suggested()
	fmt.Fprintf(w, "\n%d samples. Suggested calibration:\n  MinAnalog: %d\n  MaxAnalog: %d\n", result.Samples, lo, hi)
}
