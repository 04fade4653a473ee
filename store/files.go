// Copyright 2026 The JazzPetri Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store persists separators: as JSON or YAML files, and as records
// in a SQLite catalogue keyed by UUID.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jazzpetri/bisep/separator"
)

// Format is a file encoding.
type Format int

const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "json"
}

// FormatOf picks the encoding from path's extension: .json, .yaml or .yml.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return JSON, fmt.Errorf("unknown separator file extension %q", filepath.Ext(path))
}

// Encode serializes f in format.
func Encode(f *separator.Formula, format Format) ([]byte, error) {
	if format == YAML {
		return separator.EncodeYAML(f)
	}
	return separator.EncodeJSON(f)
}

// Decode parses data in format.
func Decode(data []byte, format Format) (*separator.Formula, error) {
	if format == YAML {
		return separator.DecodeYAML(data)
	}
	return separator.DecodeJSON(data)
}

// SaveFile writes f to path, encoded according to the extension. The file
// is created with 0644 permissions.
func SaveFile(path string, f *separator.Formula) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(f, format)
	if err != nil {
		return fmt.Errorf("failed to encode separator: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write separator file: %w", err)
	}
	return nil
}

// LoadFile reads a separator written by SaveFile.
func LoadFile(path string) (*separator.Formula, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read separator file: %w", err)
	}
	return Decode(data, format)
}
