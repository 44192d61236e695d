// Package config loads the game's data files: CSV object catalogs and
// language JSON files. Everything is read once at startup.
package config

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Value is a decoded CSV cell: string, int, float64, bool, nil, or a slice
// of those for tuple/list cells.
type Value interface{}

// ObjectConfig holds the decoded attributes of a single catalog row.
type ObjectConfig map[string]Value

// Catalog maps object names to their configs, across every loaded category.
type Catalog struct {
	objects    map[string]ObjectConfig
	categories map[string][]string
}

// NewCatalog creates an empty catalog, useful for tests building configs by
// hand.
func NewCatalog() *Catalog {
	return &Catalog{
		objects:    make(map[string]ObjectConfig),
		categories: make(map[string][]string),
	}
}

// ReadCSVFiles reads every csv file in the directory into one catalog. Each
// file is a category (units, buildings, weapons, technologies); each row is
// keyed by its object_name column. A file that fails to parse is reported
// and skipped so one bad catalog cannot take the game down.
func ReadCSVFiles(configsPath string) (*Catalog, error) {
	entries, err := os.ReadDir(configsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configs directory: %w", err)
	}
	catalog := NewCatalog()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		category := strings.TrimSuffix(entry.Name(), ".csv")
		if err := catalog.readSingleFile(filepath.Join(configsPath, entry.Name()), category); err != nil {
			slog.Warn("skipping config file", "file", entry.Name(), "error", err)
		}
	}
	return catalog, nil
}

func (c *Catalog) readSingleFile(path, category string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) < 1 {
		return fmt.Errorf("%s: empty file", path)
	}
	header := rows[0]
	for _, row := range rows[1:] {
		decoded := make(ObjectConfig, len(header))
		for i, key := range header {
			if i >= len(row) {
				break
			}
			decoded[key] = DecodeValue(row[i])
		}
		name, ok := decoded["object_name"].(string)
		if !ok {
			return fmt.Errorf("%s: row without object_name", path)
		}
		c.Put(category, name, decoded)
	}
	return nil
}

// Put registers an object config under a category.
func (c *Catalog) Put(category, name string, cfg ObjectConfig) {
	c.objects[name] = cfg
	c.categories[category] = append(c.categories[category], name)
}

// Get returns the config of an object. The boolean is false when the catalog
// has no such entry; callers report and ignore rather than crash the tick.
func (c *Catalog) Get(name string) (ObjectConfig, bool) {
	cfg, ok := c.objects[name]
	return cfg, ok
}

// Category lists the object names of one category in file order.
func (c *Catalog) Category(category string) []string {
	return c.categories[category]
}

// Names lists every object name in the catalog.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.objects))
	for name := range c.objects {
		names = append(names, name)
	}
	return names
}

// DecodeValue unpacks a CSV cell. Decoding rules:
// "(a;b;c)" becomes a tuple (slice), "[a;b;c]" a list (slice),
// "True"/"False"/"None" the matching literal, numeric strings int or float,
// everything else stays a string.
func DecodeValue(raw string) Value {
	if strings.HasPrefix(raw, "(") || strings.HasPrefix(raw, "[") {
		trimmed := strings.Trim(raw, "([)]")
		if trimmed == "" {
			return []Value{}
		}
		parts := strings.Split(trimmed, ";")
		values := make([]Value, 0, len(parts))
		for _, part := range parts {
			values = append(values, decodeScalar(part))
		}
		return values
	}
	return decodeScalar(raw)
}

func decodeScalar(raw string) Value {
	switch raw {
	case "True":
		return true
	case "False":
		return false
	case "None", "":
		return nil
	}
	if raw[0] >= '0' && raw[0] <= '9' {
		if strings.Contains(raw, ".") {
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				return f
			}
		}
		if i, err := strconv.Atoi(raw); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

// Int reads an integer attribute, tolerating float cells.
func (o ObjectConfig) Int(key string) int {
	switch v := o[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Float reads a float attribute, tolerating int cells.
func (o ObjectConfig) Float(key string) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Str reads a string attribute.
func (o ObjectConfig) Str(key string) string {
	s, _ := o[key].(string)
	return s
}

// Bool reads a boolean attribute.
func (o ObjectConfig) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// Strings reads a tuple or list attribute as strings.
func (o ObjectConfig) Strings(key string) []string {
	values, ok := o[key].([]Value)
	if !ok {
		return nil
	}
	strs := make([]string, 0, len(values))
	for _, v := range values {
		if s, isStr := v.(string); isStr {
			strs = append(strs, s)
		}
	}
	return strs
}
