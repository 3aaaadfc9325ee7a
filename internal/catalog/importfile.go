package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// importFile is the on-disk layout shared by every supported format:
//
//	[[anime]]
//	title = "Sousou no Frieren"
//	synonyms = ["Frieren"]
type importFile struct {
	Anime []Anime `json:"anime" toml:"anime" yaml:"anime"`
}

// ParseImportFile reads a catalog import file. The format follows the
// extension: .toml, .yaml/.yml or .json.
func ParseImportFile(path string) ([]Anime, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	entries, err := ParseImport(ext, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

// ParseImport decodes import data in the format named by ext (".toml", ".yaml", ".yml", ".json").
func ParseImport(ext string, data []byte) ([]Anime, error) {
	var file importFile
	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "toml":
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&file); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case "yaml", "yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case "json":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &file.Anime); err != nil {
				return nil, fmt.Errorf("parse json: %w", err)
			}
			break
		}
		decoder := json.NewDecoder(bytes.NewReader(trimmed))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&file); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, &ValidationError{Field: "import format", Reason: fmt.Sprintf("unsupported extension %q", ext)}
	}

	for i := range file.Anime {
		file.Anime[i] = sanitize(file.Anime[i])
		if err := file.Anime[i].Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	return file.Anime, nil
}
