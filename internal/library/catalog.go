package library

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/mitchellh/mapstructure"

	"github.com/soracane/bytebeat/internal/beat"
)

// LoadCatalog reads a song catalog file, dispatching on the file extension.
func LoadCatalog(path string) ([]Song, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ParseCatalogJSON(f)
	case ".yaml", ".yml":
		return ParseCatalogYAML(f)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %q", ext)
	}
}

func ParseCatalogYAML(r io.Reader) ([]Song, error) {
	yamlBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	jsonBytes, err := yaml.YAMLToJSON(yamlBytes)
	if err != nil {
		return nil, fmt.Errorf("yaml.YAMLToJSON: %w", err)
	}

	return ParseCatalogJSON(bytes.NewReader(jsonBytes))
}

func ParseCatalogJSON(r io.Reader) ([]Song, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var entries []map[string]any
	if err := decoder.Decode(&entries); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}

	songs := make([]Song, 0, len(entries))
	for i, entry := range entries {
		var song Song
		if err := mapstructure.Decode(entry, &song); err != nil {
			return nil, fmt.Errorf("song %d: %w", i, err)
		}
		if err := validate(song); err != nil {
			return nil, fmt.Errorf("song %d: %w", i, err)
		}
		songs = append(songs, song)
	}
	return songs, nil
}

func validate(song Song) error {
	if song.Name == "" {
		return fmt.Errorf("missing name")
	}
	if song.Code == "" {
		return fmt.Errorf("%s: missing code", song.Name)
	}
	if _, err := beat.Compile(song.Code); err != nil {
		return fmt.Errorf("%s: %w", song.Name, err)
	}
	return nil
}
