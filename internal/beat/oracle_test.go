package beat_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/soracane/bytebeat/internal/beat"
)

// The evaluator's correctness contract: for every expression in the corpus,
// the full 65536-sample output must byte-for-byte equal the fixture produced
// by compiling the identical expression with a C compiler and sampling t over
// the same range. The fixtures live in testdata/ and are regenerated with
// testdata/generate_references.c, never hardcoded here.

const oracleSamples = 1 << 16

type referenceSong struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

func loadReferenceManifest(t *testing.T) []referenceSong {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join("testdata", "references.json"))
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}

	var songs []referenceSong
	if err := json.Unmarshal(raw, &songs); err != nil {
		t.Fatalf("parsing manifest: %v", err)
	}
	if len(songs) == 0 {
		t.Fatal("empty reference manifest")
	}
	return songs
}

func TestOracleParity(t *testing.T) {
	t.Parallel()

	for _, song := range loadReferenceManifest(t) {
		song := song
		t.Run(song.Name, func(t *testing.T) {
			t.Parallel()

			expected, err := os.ReadFile(filepath.Join("testdata", song.Name+".ref"))
			if err != nil {
				t.Fatalf("reading fixture: %v", err)
			}
			if len(expected) != oracleSamples {
				t.Fatalf("fixture has %d samples, expected %d", len(expected), oracleSamples)
			}

			program, err := beat.Compile(song.Expression)
			if err != nil {
				t.Fatalf("Compile(%q): %v", song.Expression, err)
			}

			for t32 := int32(0); t32 < oracleSamples; t32++ {
				got := program.Sample(t32)
				if got != expected[t32] {
					t.Fatalf("t=%d: expected %d, got %d (expression %q)", t32, expected[t32], got, song.Expression)
				}
			}
		})
	}
}
