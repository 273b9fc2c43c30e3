package renderer

import "fmt"

// CallMode tells the renderer who changed the color and whether other
// subsystems should hear about it.
type CallMode int

const (
	CallModeInit CallMode = iota
	CallModeDirectChange
	CallModeButton
	CallModeNotification
	CallModeNoNotify
)

func (m CallMode) String() string {
	switch m {
	case CallModeInit:
		return "init"
	case CallModeDirectChange:
		return "direct"
	case CallModeButton:
		return "button"
	case CallModeNotification:
		return "notification"
	case CallModeNoNotify:
		return "no-notify"
	default:
		return fmt.Sprintf("callmode(%d)", int(m))
	}
}

// notifies reports whether a change with this mode is published to
// subscribers. Notifications that came in from outside are not echoed.
func (m CallMode) notifies() bool {
	return m != CallModeNoNotify && m != CallModeNotification
}

// State is the global color state: one channel triple and a brightness
// level that applies to every LED. Values are stored as received and
// only clamped when a frame is rendered.
type State struct {
	Color      [3]int `json:"col"`
	Brightness int    `json:"bri"`
}

func (s State) String() string {
	return fmt.Sprintf("col=%d,%d,%d bri=%d", s.Color[0], s.Color[1], s.Color[2], s.Brightness)
}

type Led struct {
	Red   byte
	Green byte
	Blue  byte
}

// True if all components are zero, false otherwise
func (s Led) IsEmpty() bool {
	return s.Red == 0 && s.Green == 0 && s.Blue == 0
}

// Display receives rendered frames.
type Display interface {
	DisplayLeds(leds []Led)
}

// StateChanged is published when the state changed in a way other
// subsystems should hear about.
type StateChanged struct {
	State State
	Mode  CallMode
}

const typeStateChanged uint32 = 1

func (e StateChanged) Type() uint32 { return typeStateChanged }

// Render computes the LED value of state: channels and brightness are
// clamped to [0,255] and each channel is scaled by brightness.
func (s State) Render() Led {
	bri := clampByte(s.Brightness)
	scale := func(c int) byte {
		return byte(clampByte(c) * bri / 255)
	}
	return Led{Red: scale(s.Color[0]), Green: scale(s.Color[1]), Blue: scale(s.Color[2])}
}

func clampByte(v int) int {
	return max(0, min(v, 255))
}
