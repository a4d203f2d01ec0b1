// Package stream renders compiled programs into 8-bit mono PCM, either raw or
// wrapped in a WAV container. A Renderer holds the current program behind an
// atomic value so live sources (the file watcher, the HTTP server) can swap
// programs while a render is in flight.
package stream

import (
	"math"
	"sync/atomic"

	"github.com/soracane/bytebeat/internal/beat"
)

// DefaultRate is the canonical bytebeat sample rate.
const DefaultRate = 8000

type Renderer struct {
	program atomic.Value // *beat.Program
	volume  atomic.Uint64
}

// NewRenderer starts with the given program at full volume.
func NewRenderer(program *beat.Program) *Renderer {
	r := &Renderer{}
	r.Swap(program)
	r.SetVolume(Full)
	return r
}

// Swap replaces the current program. The previous program is returned so
// callers can report what was displaced.
func (r *Renderer) Swap(program *beat.Program) *beat.Program {
	prev, _ := r.program.Swap(program).(*beat.Program)
	return prev
}

// Program returns the program currently being rendered.
func (r *Renderer) Program() *beat.Program {
	program, _ := r.program.Load().(*beat.Program)
	return program
}

func (r *Renderer) SetVolume(v Volume) {
	r.volume.Store(math.Float64bits(float64(v.Clamp())))
}

func (r *Renderer) Volume() Volume {
	return Volume(math.Float64frombits(r.volume.Load()))
}

// Fill renders len(buf) consecutive samples starting at time from. The
// program is loaded once, so a concurrent Swap takes effect on the next call
// rather than mid-buffer.
func (r *Renderer) Fill(buf []uint8, from int32) {
	program := r.Program()
	volume := r.Volume()
	for i := range buf {
		buf[i] = volume.apply(program.Sample(from + int32(i)))
	}
}
