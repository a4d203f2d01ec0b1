package stream

import (
	"encoding/binary"
	"fmt"
	"io"
)

// RenderOptions selects the slice of the timeline to render.
type RenderOptions struct {
	From    int32
	Samples int
	Rate    int
}

func (o RenderOptions) rate() int {
	if o.Rate <= 0 {
		return DefaultRate
	}
	return o.Rate
}

// WriteRaw renders headerless unsigned 8-bit mono PCM. Rendering happens in
// fixed-size chunks so arbitrarily long renders stay at constant memory.
func (r *Renderer) WriteRaw(w io.Writer, opts RenderOptions) error {
	const chunk = 4096
	buf := make([]uint8, chunk)

	t := opts.From
	remaining := opts.Samples
	for remaining > 0 {
		n := min(remaining, chunk)
		r.Fill(buf[:n], t)
		if _, err := w.Write(buf[:n]); err != nil {
			return fmt.Errorf("w.Write: %w", err)
		}
		t += int32(n)
		remaining -= n
	}
	return nil
}

// WriteWAV renders a complete RIFF/WAVE file: a canonical 44-byte header for
// mono 8-bit PCM followed by the raw samples.
func (r *Renderer) WriteWAV(w io.Writer, opts RenderOptions) error {
	if err := writeWAVHeader(w, opts.Samples, opts.rate()); err != nil {
		return err
	}
	return r.WriteRaw(w, opts)
}

func writeWAVHeader(w io.Writer, samples, rate int) error {
	var header [44]byte

	// 8-bit mono: one byte per sample, block align 1.
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+samples))
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1)  // channels
	binary.LittleEndian.PutUint32(header[24:28], uint32(rate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(rate)) // byte rate
	binary.LittleEndian.PutUint16(header[32:34], 1)            // block align
	binary.LittleEndian.PutUint16(header[34:36], 8)            // bits per sample

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(samples))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	return nil
}
