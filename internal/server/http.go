// Package server exposes a Renderer over HTTP: POST /compile swaps in a new
// program, GET /render streams audio for a window of the timeline, and
// GET /program reports what is currently playing.
package server

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/soracane/bytebeat/internal/beat"
	"github.com/soracane/bytebeat/internal/stream"
)

// maxRenderSamples caps one /render response at ten minutes of audio at the
// default rate.
const maxRenderSamples = 10 * 60 * stream.DefaultRate

type diagnosticJSON struct {
	Column   int    `json:"column"`
	End      int    `json:"end"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func diagnosticsJSON(diags beat.Diagnostics) []diagnosticJSON {
	return lo.Map(diags, func(d beat.Diagnostic, _ int) diagnosticJSON {
		return diagnosticJSON{
			Column:   d.Pos,
			End:      d.End,
			Message:  d.Message,
			Severity: d.Severity.String(),
		}
	})
}

type compileRequest struct {
	Code string `json:"code"`
}

type programResponse struct {
	Code     string           `json:"code"`
	Volume   string           `json:"volume"`
	Warnings []diagnosticJSON `json:"warnings,omitempty"`
}

type httpHandler struct {
	renderer *stream.Renderer
}

// NewHTTPHandler serves the given renderer. The renderer is shared with the
// caller, so programs swapped in over HTTP are heard by every consumer.
func NewHTTPHandler(renderer *stream.Renderer) http.Handler {
	return &httpHandler{renderer: renderer}
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/compile":
		if r.Method != http.MethodPost {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.compile(w, r)

	case "/render":
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.render(w, r)

	case "/program":
		if r.Method != http.MethodGet {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.program(w, r)

	default:
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

func (h *httpHandler) compile(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("failed to decode request body: %v", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	program, err := beat.Compile(req.Code)
	if err != nil {
		diags, _ := err.(beat.Diagnostics)
		resJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors": diagnosticsJSON(diags),
		})
		return
	}

	if prev := h.renderer.Swap(program); prev != nil && prev.Source() != program.Source() {
		log.Printf("program replaced: %q -> %q", prev.Source(), program.Source())
	}
	resJSON(w, http.StatusOK, programResponse{
		Code:     program.Source(),
		Volume:   h.renderer.Volume().String(),
		Warnings: diagnosticsJSON(program.Warnings()),
	})
}

func (h *httpHandler) render(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	samples, err := queryInt(query.Get("samples"), stream.DefaultRate)
	if err != nil || samples < 0 {
		http.Error(w, "Bad Request: samples", http.StatusBadRequest)
		return
	}
	if samples > maxRenderSamples {
		http.Error(w, fmt.Sprintf("Bad Request: samples exceeds %d", maxRenderSamples), http.StatusBadRequest)
		return
	}
	from, err := queryInt(query.Get("from"), 0)
	if err != nil {
		http.Error(w, "Bad Request: from", http.StatusBadRequest)
		return
	}
	rate, err := queryInt(query.Get("rate"), stream.DefaultRate)
	if err != nil || rate <= 0 {
		http.Error(w, "Bad Request: rate", http.StatusBadRequest)
		return
	}

	opts := stream.RenderOptions{From: int32(from), Samples: samples, Rate: rate}
	switch format := query.Get("format"); format {
	case "", "wav":
		w.Header().Set("Content-Type", "audio/wav")
		err = h.renderer.WriteWAV(w, opts)
	case "raw":
		w.Header().Set("Content-Type", "application/octet-stream")
		err = h.renderer.WriteRaw(w, opts)
	default:
		http.Error(w, "Bad Request: format", http.StatusBadRequest)
		return
	}
	if err != nil {
		// Headers are gone already; all we can do is log.
		log.Printf("failed to render: %v", err)
	}
}

func (h *httpHandler) program(w http.ResponseWriter, r *http.Request) {
	program := h.renderer.Program()
	if program == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	resJSON(w, http.StatusOK, programResponse{
		Code:     program.Source(),
		Volume:   h.renderer.Volume().String(),
		Warnings: diagnosticsJSON(program.Warnings()),
	})
}

func queryInt(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	return strconv.Atoi(value)
}

func resJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)+1))
	w.WriteHeader(status)

	if _, err = w.Write(b); err != nil {
		return fmt.Errorf("w.Write: %w", err)
	}
	if _, err = io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("io.WriteString: %w", err)
	}
	return nil
}
