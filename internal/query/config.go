package query

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed role_config.schema.json
var roleConfigSchema string

// Filter kinds.
const (
	FilterMembership = "membership"
	FilterRange      = "range"
)

// FilterSchema declares one faceted filter dimension for a collection.
type FilterSchema struct {
	Field   string   `json:"field"`
	Kind    string   `json:"kind"`
	Options []string `json:"options,omitempty"` // static option list, optional
	Min     *float64 `json:"min,omitempty"`     // open extreme; defaults to 0
	Max     *float64 `json:"max,omitempty"`     // open extreme; defaults to +inf
}

// OpenMin returns the schema's lower open extreme. A filter bound equal to it
// contributes no constraint.
func (fs FilterSchema) OpenMin() float64 {
	if fs.Min != nil {
		return *fs.Min
	}
	return 0
}

// OpenMax returns the schema's upper open extreme.
func (fs FilterSchema) OpenMax() float64 {
	if fs.Max != nil {
		return *fs.Max
	}
	return math.Inf(1)
}

// CollectionConfig declares how one role searches one collection. The order of
// SearchFields encodes relevance priority: earlier fields score higher.
type CollectionConfig struct {
	Key          string         `json:"key"`
	Label        string         `json:"label"`
	SearchFields []string       `json:"search_fields"`
	Filters      []FilterSchema `json:"filters,omitempty"`
}

// RoleConfig lists the collections a role may search.
type RoleConfig struct {
	Collections []CollectionConfig `json:"collections"`
}

// Config is the static role search configuration.
type Config struct {
	Roles map[string]RoleConfig `json:"roles"`
}

// CollectionOption is a {key, label} pair for collection pickers.
type CollectionOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// RoleConfig returns the configuration for a role, or nil if unknown.
func (c *Config) RoleConfig(role string) *RoleConfig {
	if c == nil {
		return nil
	}
	rc, ok := c.Roles[role]
	if !ok {
		return nil
	}
	return &rc
}

// CollectionConfig returns the configuration for (role, collection), or nil.
func (c *Config) CollectionConfig(role, collection string) *CollectionConfig {
	rc := c.RoleConfig(role)
	if rc == nil {
		return nil
	}
	for i := range rc.Collections {
		if rc.Collections[i].Key == collection {
			return &rc.Collections[i]
		}
	}
	return nil
}

// AvailableCollections returns the {key, label} pairs a role may search, in
// configuration order.
func (c *Config) AvailableCollections(role string) []CollectionOption {
	rc := c.RoleConfig(role)
	if rc == nil {
		return nil
	}
	out := make([]CollectionOption, 0, len(rc.Collections))
	for _, cc := range rc.Collections {
		out = append(out, CollectionOption{Key: cc.Key, Label: cc.Label})
	}
	return out
}

// ValidateConfigJSON checks a role configuration document against the embedded
// JSON Schema before it is parsed.
func ValidateConfigJSON(content []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(roleConfigSchema)
	documentLoader := gojsonschema.NewBytesLoader(content)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate role config: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ConfigValidationError{}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Errors = append(verr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return verr
}

// LoadConfig reads and validates a role configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read role config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig validates and parses a role configuration document.
func ParseConfig(data []byte) (*Config, error) {
	if err := ValidateConfigJSON(data); err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse role config: %w", err)
	}
	return &cfg, nil
}
