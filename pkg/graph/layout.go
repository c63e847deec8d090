package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tidytree/pkg/errors"
)

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// MarshalLayoutYAML serializes a Layout to YAML bytes.
func MarshalLayoutYAML(l Layout) ([]byte, error) {
	return yaml.Marshal(l)
}

// UnmarshalLayout deserializes JSON bytes into a Layout and validates it.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal layout")
	}
	return checked(l)
}

// UnmarshalLayoutYAML deserializes YAML bytes into a Layout and validates it.
func UnmarshalLayoutYAML(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "unmarshal layout")
	}
	return checked(l)
}

func checked(l Layout) (Layout, error) {
	if l.VizType == "" {
		l.VizType = VizTypeTidy
	}
	if l.VizType != VizTypeTidy {
		return Layout{}, errors.New(errors.ErrCodeUnsupported, "unsupported layout type %q", l.VizType)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// IsLayoutFile reports whether path names a serialized layout.
func IsLayoutFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, ext := range []string{".layout.json", ".layout.yaml", ".layout.yml"} {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

// WriteLayoutFile writes a Layout to path, as YAML when the extension is
// .yaml or .yml and as JSON otherwise.
func WriteLayoutFile(l Layout, path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = MarshalLayoutYAML(l)
	} else {
		data, err = MarshalLayout(l)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout written by WriteLayoutFile.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	if isYAML(path) {
		return UnmarshalLayoutYAML(data)
	}
	return UnmarshalLayout(data)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
