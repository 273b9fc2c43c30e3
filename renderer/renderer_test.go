package renderer

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisplay struct {
	mu     sync.Mutex
	frames [][]Led
}

func (f *fakeDisplay) DisplayLeds(leds []Led) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, slices.Clone(leds))
}

func (f *fakeDisplay) last() []Led {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}

func TestState_Render(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Led
	}{
		{"off", State{Color: [3]int{255, 255, 255}, Brightness: 0}, Led{}},
		{"full", State{Color: [3]int{255, 128, 0}, Brightness: 255}, Led{Red: 255, Green: 128, Blue: 0}},
		{"brightness above range", State{Color: [3]int{255, 128, 0}, Brightness: 256}, Led{Red: 255, Green: 128, Blue: 0}},
		{"channels above range", State{Color: [3]int{255, 265, 262}, Brightness: 255}, Led{Red: 255, Green: 255, Blue: 255}},
		{"half", State{Color: [3]int{255, 100, 0}, Brightness: 128}, Led{Red: 128, Green: 50, Blue: 0}},
		{"negative", State{Color: [3]int{-5, 10, 20}, Brightness: -3}, Led{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Render())
		})
	}
}

func TestRenderer_ColorUpdatedStoresStateUnclamped(t *testing.T) {
	r := New(3, &fakeDisplay{})
	r.ColorUpdated([3]int{0, 225, 255}, 256, CallModeNoNotify)

	assert.Equal(t, State{Color: [3]int{0, 225, 255}, Brightness: 256}, r.State())
	assert.Equal(t, []Led{
		{Red: 0, Green: 225, Blue: 255},
		{Red: 0, Green: 225, Blue: 255},
		{Red: 0, Green: 225, Blue: 255},
	}, r.Frame())
}

func TestRenderer_DisplaysLatestState(t *testing.T) {
	display := &fakeDisplay{}
	r := New(2, display)
	r.Start()
	t.Cleanup(r.Stop)

	r.ColorUpdated([3]int{10, 20, 30}, 255, CallModeNoNotify)
	r.ColorUpdated([3]int{40, 50, 60}, 255, CallModeNoNotify)

	want := []Led{{Red: 40, Green: 50, Blue: 60}, {Red: 40, Green: 50, Blue: 60}}
	assert.Eventually(t, func() bool {
		return slices.Equal(display.last(), want)
	}, time.Second, time.Millisecond)
}

func TestRenderer_NotifiesUnlessSuppressed(t *testing.T) {
	r := New(1, &fakeDisplay{})
	var mu sync.Mutex
	var received []StateChanged
	unsubscribe := r.Subscribe(func(ev StateChanged) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, ev)
	})
	t.Cleanup(unsubscribe)

	r.ColorUpdated([3]int{1, 2, 3}, 100, CallModeNoNotify)
	r.ColorUpdated([3]int{4, 5, 6}, 100, CallModeNotification)
	r.ColorUpdated([3]int{7, 8, 9}, 200, CallModeDirectChange)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) > 0
	}, time.Second, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, StateChanged{State: State{Color: [3]int{7, 8, 9}, Brightness: 200}, Mode: CallModeDirectChange}, received[0])
}

func TestRenderer_StopIsIdempotent(t *testing.T) {
	r := New(1, &fakeDisplay{})
	r.Start()
	r.Stop()
	r.Stop()
}

func TestCallMode_String(t *testing.T) {
	assert.Equal(t, "no-notify", CallModeNoNotify.String())
	assert.Equal(t, "callmode(42)", CallMode(42).String())
}
