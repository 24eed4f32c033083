package member

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Field value types.
const (
	TypeText     = "text"
	TypeDate     = "date"
	TypeDropdown = "dropdown"
)

//go:embed custom_fields.yaml
var defaultSchemaYAML []byte

var (
	defaultSchema     Schema
	defaultSchemaErr  error
	defaultSchemaOnce sync.Once
)

// FieldDef describes one custom slot.
type FieldDef struct {
	Slot     int               `yaml:"slot" json:"slot"`
	Name     string            `yaml:"name" json:"name"`
	Type     string            `yaml:"type" json:"type"`
	ListID   *int              `yaml:"list_id,omitempty" json:"list_id"`
	Labels   map[string]string `yaml:"labels" json:"labels"`
	Editable bool              `yaml:"-" json:"editable"`
}

// Column returns the person_custom column name of the slot.
func (f FieldDef) Column() string {
	return fmt.Sprintf("c%d", f.Slot)
}

// Schema is the ordered list of the 20 slot definitions.
type Schema struct {
	Fields []FieldDef
}

// ParseSchema decodes and checks a YAML schema: every slot 1..20 exactly once,
// unique names, known types and a list id on each dropdown.
func ParseSchema(data []byte) (Schema, error) {
	var fields []FieldDef
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return Schema{}, errors.Wrap(err, "decoding custom field schema")
	}
	if len(fields) != NumCustomSlots {
		return Schema{}, errors.Errorf("custom field schema: want %d slots, got %d", NumCustomSlots, len(fields))
	}

	slots := make(map[int]bool, len(fields))
	names := make(map[string]bool, len(fields))
	for i, f := range fields {
		if f.Slot < 1 || f.Slot > NumCustomSlots || slots[f.Slot] {
			return Schema{}, errors.Errorf("custom field schema: invalid or duplicate slot %d", f.Slot)
		}
		if f.Name == "" || names[f.Name] {
			return Schema{}, errors.Errorf("custom field schema: invalid or duplicate name %q", f.Name)
		}
		switch f.Type {
		case TypeText, TypeDate:
			fields[i].ListID = nil
		case TypeDropdown:
			if f.ListID == nil {
				return Schema{}, errors.Errorf("custom field schema: dropdown %q has no list_id", f.Name)
			}
		default:
			return Schema{}, errors.Errorf("custom field schema: unknown type %q for %q", f.Type, f.Name)
		}
		slots[f.Slot] = true
		names[f.Name] = true
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Slot < fields[j].Slot })
	return Schema{Fields: fields}, nil
}

// DefaultSchema returns the embedded schema.
func DefaultSchema() (Schema, error) {
	defaultSchemaOnce.Do(func() {
		defaultSchema, defaultSchemaErr = ParseSchema(defaultSchemaYAML)
	})
	return defaultSchema, defaultSchemaErr
}

// MustDefaultSchema panics if the embedded schema is broken.
func MustDefaultSchema() Schema {
	s, err := DefaultSchema()
	if err != nil {
		panic(err)
	}
	return s
}

// Field returns the definition with the given semantic name.
func (s Schema) Field(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// ListIDs returns the distinct dropdown list ids referenced by the schema, ascending.
func (s Schema) ListIDs() []int {
	seen := make(map[int]bool)
	ids := make([]int, 0)
	for _, f := range s.Fields {
		if f.ListID != nil && !seen[*f.ListID] {
			seen[*f.ListID] = true
			ids = append(ids, *f.ListID)
		}
	}
	sort.Ints(ids)
	return ids
}
