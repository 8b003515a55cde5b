// Package tablefile reads and writes critical value tables.
//
// Every format carries the same document: a table name and an ordered list
// of {size, value} entries. Values may be written as numbers or strings;
// strings keep their exact digits.
//
//	name = "dixon-95"
//
//	[[entries]]
//	size = 3
//	value = "0.970"
package tablefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ogre-kun/outliers-calculator/internal/errors"
	"github.com/ogre-kun/outliers-calculator/internal/output"
	"github.com/ogre-kun/outliers-calculator/internal/paths"
	"github.com/ogre-kun/outliers-calculator/internal/qdixon"
)

// Format identifies a table file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.Newf(errors.InvalidTable,
			"unsupported table file extension %q (want .toml, .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// entry is the format-neutral row every decoder produces.
type entry struct {
	Size  int
	Value decimal.Decimal
}

// Load reads a table file; the format follows the extension.
func Load(path string) (*qdixon.CriticalTable, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.InvalidTable, fmt.Sprintf("failed to read table file %s", path), err)
	}

	return decodeNamed(format, data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// Save writes table to path, creating parent directories as needed.
func Save(path string, table *qdixon.CriticalTable) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(format, table)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if _, err := paths.EnsureDir(dir); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Decode parses data in the given format. A missing name becomes "custom".
func Decode(format Format, data []byte) (*qdixon.CriticalTable, error) {
	return decodeNamed(format, data, "custom")
}

func decodeNamed(format Format, data []byte, fallbackName string) (*qdixon.CriticalTable, error) {
	var (
		name    string
		entries []entry
		err     error
	)
	switch format {
	case FormatTOML:
		name, entries, err = decodeTOML(data)
	case FormatYAML:
		name, entries, err = decodeYAML(data)
	case FormatJSON:
		name, entries, err = decodeJSON(data)
	default:
		return nil, errors.Newf(errors.InvalidTable, "unsupported table format %q", format)
	}
	if err != nil {
		return nil, errors.New(errors.InvalidTable, fmt.Sprintf("failed to parse %s table", format), err)
	}
	if name == "" {
		name = fallbackName
	}
	return build(name, entries)
}

// Encode renders table in the given format.
func Encode(format Format, table *qdixon.CriticalTable) ([]byte, error) {
	switch format {
	case FormatTOML:
		return encodeTOML(table)
	case FormatYAML:
		return encodeYAML(table)
	case FormatJSON:
		return encodeJSON(table)
	default:
		return nil, errors.Newf(errors.InvalidTable, "unsupported table format %q", format)
	}
}

func build(name string, entries []entry) (*qdixon.CriticalTable, error) {
	values := make(map[int]decimal.Decimal, len(entries))
	for _, e := range entries {
		if _, dup := values[e.Size]; dup {
			return nil, errors.Newf(errors.InvalidTable, "table %q lists size %d more than once", name, e.Size)
		}
		values[e.Size] = e.Value
	}
	return qdixon.NewCriticalTable(name, values)
}

// valueText renders a critical value with at least three places.
func valueText(v decimal.Decimal) string {
	return output.FormatCritical(v)
}
