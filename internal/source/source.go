// Package source loads items from JSON, YAML and iCalendar files.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/calgrid/internal/item"
)

// ErrUnsupportedFormat is returned for files that are not JSON, YAML or ICS.
var ErrUnsupportedFormat = errors.New("unsupported item file format")

// Format identifies an item file encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	ICS  Format = "ics"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".ics", ".ical":
		return ICS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// LoadFile reads every item in path.
func LoadFile(path string) ([]item.Item, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}
	items, err := Decode(format, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// Decode reads items encoded as format from r.
func Decode(format Format, r io.Reader) ([]item.Item, error) {
	switch format {
	case JSON:
		return decodeJSON(r)
	case YAML:
		return decodeYAML(r)
	case ICS:
		return decodeICS(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// document is the wrapped form {"items": [...]} accepted next to a bare list.
type document struct {
	Items []map[string]any `json:"items" yaml:"items"`
}

func decodeJSON(r io.Reader) ([]item.Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var raw []map[string]any
	if data[0] == '{' {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
		raw = doc.Items
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return toItems(raw), nil
}

func decodeYAML(r io.Reader) ([]item.Item, error) {
	var node yaml.Node
	if err := yaml.NewDecoder(r).Decode(&node); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	var raw []map[string]any
	root := &node
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == yaml.MappingNode {
		var doc document
		if err := root.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
		raw = doc.Items
	} else if err := root.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return toItems(raw), nil
}

func toItems(raw []map[string]any) []item.Item {
	out := make([]item.Item, 0, len(raw))
	for _, m := range raw {
		out = append(out, item.Item(m))
	}
	return out
}

// File is an item.Source backed by a file on disk. The file is re-read on
// every call so edits show up without a restart.
type File struct {
	Path     string
	Fields   item.FieldPair
	Location *time.Location
}

// ListItems returns the items of the file intersecting [start, end]. Items
// whose interval cannot be read are kept so the caller can report them.
func (f File) ListItems(ctx context.Context, start, end time.Time) ([]item.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := LoadFile(f.Path)
	if err != nil {
		return nil, err
	}
	return Window(items, f.Fields, f.Location, start, end), nil
}

// Close implements item.Source.
func (File) Close() error { return nil }

// Window keeps the items intersecting [start, end], in input order.
func Window(items []item.Item, fields item.FieldPair, loc *time.Location, start, end time.Time) []item.Item {
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		iv, _, err := item.IntervalOf(it, fields, loc)
		if err != nil || iv.Intersects(start, end) {
			out = append(out, it)
		}
	}
	return out
}
