package potis

import "github.com/chewxy/math32"

// Phase offsets of the three channels on the hue circle. Red uses a
// full turn instead of 0 so that fract sees the same argument as the
// firmware this was calibrated against, which matters for hue values
// below zero.
const (
	redPhase   float32 = 1.0
	greenPhase float32 = 0.6666666
	bluePhase  float32 = 0.3333333
)

// fract returns the fractional part of x by truncating toward zero.
// fract(-1.7) is -0.7, not 0.3.
func fract(x float32) float32 {
	return x - math32.Trunc(x)
}

// mix linearly interpolates between a and b.
func mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

func constrain(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// wave is the piecewise linear triangle used for every channel.
func wave(h, phase float32) float32 {
	return constrain(math32.Abs(fract(h+phase)*6-3)-1, 0, 1)
}

// HSV converts hue and saturation (both nominally in [0,1]) to an 8 bit
// channel triple at full value. Saturation blends each channel from
// white towards the pure hue.
func HSV(h, s float32) [3]int {
	var v float32 = 1
	return [3]int{
		int(v * mix(1, wave(h, redPhase), s) * 255),
		int(v * mix(1, wave(h, greenPhase), s) * 255),
		int(v * mix(1, wave(h, bluePhase), s) * 255),
	}
}
