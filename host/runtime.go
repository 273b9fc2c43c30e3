// Package host runs usermods the way the firmware main loop does: one
// Setup call each at boot, then Loop on every iteration from a single
// go-routine.
package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Usermod is the contract between the host loop and a plugged in module.
type Usermod interface {
	// Setup is called once before the first Loop.
	Setup() error
	// Loop is called on every host loop iteration with the current
	// millisecond counter.
	Loop(nowMillis uint32)
}

type Runtime struct {
	usermods  []Usermod
	loopDelay time.Duration
	now       func() time.Time
	start     time.Time
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	started   bool
}

func NewRuntime(loopDelay time.Duration) *Runtime {
	return &Runtime{
		loopDelay: loopDelay,
		now:       time.Now,
		stop:      make(chan struct{}),
	}
}

// SetClock replaces the wall clock used for Millis. Must be called
// before Start.
func (s *Runtime) SetClock(now func() time.Time) {
	s.now = now
}

// Register adds a usermod. Usermods are set up and looped in
// registration order.
func (s *Runtime) Register(m Usermod) {
	s.usermods = append(s.usermods, m)
}

// Millis returns the milliseconds since Start, wrapping like the
// firmware counter does.
func (s *Runtime) Millis() uint32 {
	return uint32(s.now().Sub(s.start).Milliseconds())
}

// Start sets up all usermods and starts the loop go-routine. If a
// usermod fails to set up, no loop is started.
func (s *Runtime) Start() error {
	if s.started {
		return errors.New("runtime already started")
	}
	s.start = s.now()
	for i, m := range s.usermods {
		if err := m.Setup(); err != nil {
			return fmt.Errorf("failed to set up usermod %d (%T): %w", i, m, err)
		}
	}
	s.started = true
	s.wg.Add(1)
	go s.loop()
	return nil
}

// Stop ends the loop and waits for the current iteration to finish. It
// is safe to call more than once.
func (s *Runtime) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
}

// RunOnce performs a single loop iteration on the calling go-routine.
// It must not be used while the loop go-routine is running.
func (s *Runtime) RunOnce() {
	now := s.Millis()
	for _, m := range s.usermods {
		m.Loop(now)
	}
}

func (s *Runtime) loop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.loopDelay)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			slog.Info("Ending host loop go-routine...")
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}
