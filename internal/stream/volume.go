package stream

import "fmt"

// Volume scales samples around the 8-bit midpoint. 0 is silence, 1 is the
// program's raw output.
type Volume float64

const (
	Silent Volume = 0
	Full   Volume = 1
)

// Clamp forces v into [0, 1].
func (v Volume) Clamp() Volume {
	if v < Silent {
		return Silent
	}
	if v > Full {
		return Full
	}
	return v
}

func (v Volume) String() string {
	return fmt.Sprintf("%d%%", int(v.Clamp()*100))
}

// apply scales a sample toward 128 so attenuation lowers loudness instead of
// shifting the DC offset.
func (v Volume) apply(sample uint8) uint8 {
	scaled := 128 + (float64(sample)-128)*float64(v)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
