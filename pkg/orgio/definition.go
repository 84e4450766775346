package orgio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
)

// CurrentVersion is the definition format version written by this package.
// Definitions without a version are read as version 1.
const CurrentVersion = 1

// Format is a definition encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Definition is a named tree of node specs.
type Definition struct {
	Version int                 `json:"version,omitempty" toml:"version,omitempty" yaml:"version,omitempty"`
	Name    string              `json:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Nodes   []orgchart.NodeSpec `json:"nodes" toml:"nodes" yaml:"nodes"`
}

// Count returns the number of nodes in the definition.
func (d Definition) Count() int {
	n := 0
	for _, s := range d.Nodes {
		n += s.Count()
	}
	return n
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	if err := errors.ValidateDefinitionPath(path); err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return FormatJSON, nil
	}
}

// Read decodes a definition from r.
func Read(r io.Reader, format Format) (Definition, error) {
	var def Definition
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&def); err != nil {
			return Definition{}, errors.Wrap(errors.ErrCodeInvalidSpec, err, "decode json")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&def); err != nil {
			return Definition{}, errors.Wrap(errors.ErrCodeInvalidSpec, err, "decode toml")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&def); err != nil && err != io.EOF {
			return Definition{}, errors.Wrap(errors.ErrCodeInvalidSpec, err, "decode yaml")
		}
	default:
		return Definition{}, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
	if def.Version == 0 {
		def.Version = CurrentVersion
	}
	if def.Version != CurrentVersion {
		return Definition{}, errors.New(errors.ErrCodeInvalidSpec, "unsupported definition version %d", def.Version)
	}
	return def, nil
}

// Load reads the definition file at path.
func Load(path string) (Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Definition{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Definition{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	def, err := Read(f, format)
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return def, nil
}

// Write encodes def to w.
func Write(w io.Writer, def Definition, format Format) error {
	if def.Version == 0 {
		def.Version = CurrentVersion
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(def); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(def); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(def); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
	return nil
}

// Export writes def to path in the format its extension names.
func Export(def Definition, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(&buf, def, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// FromSnapshot turns a snapshot back into a definition.
func FromSnapshot(name string, s orgchart.Snapshot) Definition {
	return Definition{Version: CurrentVersion, Name: name, Nodes: s.Specs()}
}
