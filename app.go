package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	c "lautenbacher.net/potileds/config"
	"lautenbacher.net/potileds/hardware"
	"lautenbacher.net/potileds/host"
	"lautenbacher.net/potileds/logging"
	"lautenbacher.net/potileds/metrics"
	pl "lautenbacher.net/potileds/platform"
	"lautenbacher.net/potileds/potis"
	r "lautenbacher.net/potileds/renderer"
)

// Events arriving this close after a config file change belong to the
// same save and are swallowed.
const reloadSettle = 200 * time.Millisecond

type App struct {
	cfile       string
	realHW      bool
	ossignal    chan os.Signal
	conf        *c.Config
	platform    pl.Platform
	renderer    *r.Renderer
	runtime     *host.Runtime
	server      *http.Server
	watcher     *fsnotify.Watcher
	unsubscribe func()
	// replaced in tests
	newPlatform func(conf *c.Config, ossignal chan os.Signal) pl.Platform
}

func NewApp(cfile string, realhw bool, ossignal chan os.Signal) *App {
	return &App{
		cfile:       cfile,
		realHW:      realhw,
		ossignal:    ossignal,
		newPlatform: defaultPlatform,
	}
}

func defaultPlatform(conf *c.Config, ossignal chan os.Signal) pl.Platform {
	if conf.RealHW {
		return pl.NewRaspberryPiPlatform(conf)
	}
	return pl.NewTUIPlatform(conf, ossignal)
}

// Run starts the controller and restarts it whenever the configuration
// changes or SIGHUP arrives. It returns when asked to exit or when the
// configuration can't be loaded.
func (a *App) Run() error {
	for {
		if err := a.initialise(); err != nil {
			a.shutdown()
			return err
		}
		reload := a.waitForEvent()
		a.shutdown()
		if !reload {
			return nil
		}
		slog.Info("Reloading configuration...", "file", a.cfile)
	}
}

func (a *App) initialise() error {
	conf, err := c.ReadConfig(a.cfile, a.realHW)
	if err != nil {
		return err
	}
	a.conf = conf

	if err := logging.Close(); err != nil {
		slog.Warn("Error closing previous log output", "error", err)
	}
	if conf.RealHW {
		err = logging.Init(conf.Logging.HW, false)
	} else {
		err = logging.Init(conf.Logging.TUI, true)
	}
	if err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}

	a.platform = a.newPlatform(conf, a.ossignal)
	if err := a.platform.Start(); err != nil {
		return fmt.Errorf("failed to start platform: %w", err)
	}

	a.renderer = r.New(conf.Hardware.Display.LedsTotal, a.platform)
	a.unsubscribe = a.renderer.Subscribe(func(ev r.StateChanged) {
		slog.Info("Color state changed", "state", ev.State.String(), "mode", ev.Mode.String())
	})
	a.renderer.Start()

	a.runtime = host.NewRuntime(conf.Hardware.LoopDelay)
	if conf.Potis.Enabled {
		a.runtime.Register(newPotisControls(conf.Potis, a.platform.Board(), a.renderer))
	} else {
		slog.Info("Potis usermod is disabled")
	}
	if err := a.runtime.Start(); err != nil {
		return fmt.Errorf("failed to start host runtime: %w", err)
	}

	if conf.Web.Enabled {
		a.startWebServer(conf.Web.Listen)
	}

	if err := a.watchConfig(); err != nil {
		slog.Warn("Config file changes will not be picked up", "error", err)
	}
	slog.Info("Controller started", "realhw", conf.RealHW, "leds", conf.Hardware.Display.LedsTotal)
	return nil
}

func newPotisControls(conf c.PotisConfig, board hardware.Board, sink potis.Sink) *potis.Controls {
	conv := potis.NewConverter(potis.Calibration{
		DeadZoneRadius: conf.DeadZoneRadius,
		MinAnalog:      conf.MinAnalog,
		MaxAnalog:      conf.MaxAnalog,
	})
	pins := potis.Pins{
		Hue:        conf.HuePin,
		Brightness: conf.BrightnessPin,
		Saturation: conf.SaturationPin,
		Analog:     conf.AnalogChannel,
	}
	return potis.NewControls(board, pins, conv, conf.PollInterval, sink)
}

func (a *App) startWebServer(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/api/config", c.ConfigHandler(a.cfile))
	mux.Handle("/api/state", r.StateHandler(a.renderer))
	mux.Handle("/metrics", metrics.Handler())
	a.server = &http.Server{Addr: listen, Handler: mux}

	go func(server *http.Server) {
		slog.Info("Starting web server", "listen", listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Web server failed", "error", err)
		}
	}(a.server)
}

// watchConfig watches the directory of the config file, as editors
// often replace the file instead of writing it.
func (a *App) watchConfig() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(a.cfile)); err != nil {
		watcher.Close()
		return err
	}
	a.watcher = watcher
	return nil
}

func (a *App) isConfigChange(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(a.cfile) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// waitForEvent blocks until the app should stop (false) or reload (true).
func (a *App) waitForEvent() bool {
	var events <-chan fsnotify.Event
	var errs <-chan error
	if a.watcher != nil {
		events = a.watcher.Events
		errs = a.watcher.Errors
	}
	for {
		select {
		case sig := <-a.ossignal:
			slog.Info("Received signal", "signal", sig)
			return sig == syscall.SIGHUP
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if a.isConfigChange(ev) {
				slog.Info("Config file changed", "event", ev.String())
				a.settle(events)
				return true
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Error("Config watcher error", "error", err)
		}
	}
}

func (a *App) settle(events <-chan fsnotify.Event) {
	timer := time.NewTimer(reloadSettle)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			timer.Reset(reloadSettle)
		}
	}
}

// shutdown stops everything initialise started, in reverse order. It
// copes with a partially initialised app.
func (a *App) shutdown() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			slog.Error("Error closing config watcher", "error", err)
		}
		a.watcher = nil
	}
	if a.server != nil {
		if err := a.server.Close(); err != nil {
			slog.Error("Error closing web server", "error", err)
		}
		a.server = nil
	}
	if a.runtime != nil {
		a.runtime.Stop()
		a.runtime = nil
	}
	if a.renderer != nil {
		a.unsubscribe()
		a.renderer.Stop()
		a.renderer = nil
	}
	if a.platform != nil {
		a.platform.Stop()
		a.platform = nil
	}
}
