package binding

import (
	"fmt"
	"io"
	"regexp"

	"gopkg.in/yaml.v3"
)

// yamlBinding is the on-disk shape of one vendor-supplied binding entry,
// additively merged into a Catalogue by LoadYAML. It intentionally
// covers a subset of Binding's fields: AdditionalCheck and RequiredFunc
// are Go closures and cannot be expressed declaratively.
type yamlBinding struct {
	Name     string   `yaml:"name"`
	Pattern  string   `yaml:"pattern"`
	Types    []string `yaml:"types"`
	List     bool     `yaml:"list"`
	Required string   `yaml:"required"`
	Default  string   `yaml:"default"`
	Enum     []string `yaml:"enum"`

	Deprecated bool `yaml:"deprecated"`
}

type yamlDocument struct {
	Bindings []yamlBinding `yaml:"bindings"`
}

var typeByName = map[string]PropertyType{
	"empty":              Empty,
	"u32":                U32,
	"u64":                U64,
	"string":             String,
	"prop-encoded-array": PropEncodedArray,
	"stringlist":         StringList,
	"bytestring":         ByteString,
}

func requirementByName(s string) (Requirement, error) {
	switch s {
	case "", "optional":
		return Optional, nil
	case "required":
		return Required, nil
	case "omitted":
		return Omitted, nil
	default:
		return Optional, fmt.Errorf("binding: unknown required value %q", s)
	}
}

// LoadYAML additively merges vendor-supplied bindings declared in YAML
// into the catalogue, supplementing (never replacing) the hand-written
// Standard() table. Each entry's "types" field lists one TypeSpec slot
// name per position; composite multi-type slots (as Assignable widens
// PROP_ENCODED_ARRAY/STRINGLIST) are expressed by naming the wider type
// directly rather than by an explicit union in YAML.
func (c *Catalogue) LoadYAML(r io.Reader) error {
	var doc yamlDocument

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil
		}

		return fmt.Errorf("binding: decode yaml: %w", err)
	}

	for _, yb := range doc.Bindings {
		b, err := toBinding(yb)
		if err != nil {
			return err
		}

		c.Register(b)
	}

	return nil
}

func toBinding(yb yamlBinding) (Binding, error) {
	if yb.Name == "" && yb.Pattern == "" {
		return Binding{}, fmt.Errorf("binding: entry needs a name or a pattern")
	}

	req, err := requirementByName(yb.Required)
	if err != nil {
		return Binding{}, err
	}

	b := Binding{
		Name:       yb.Name,
		List:       yb.List,
		Required:   req,
		Enum:       yb.Enum,
		Deprecated: yb.Deprecated,
	}

	if yb.Default != "" {
		b.Default = &yb.Default
	}

	if yb.Pattern != "" {
		re, err := regexp.Compile(yb.Pattern)
		if err != nil {
			return Binding{}, fmt.Errorf("binding: bad pattern %q: %w", yb.Pattern, err)
		}

		b.Pattern = re
	}

	for _, name := range yb.Types {
		t, ok := typeByName[name]
		if !ok {
			return Binding{}, fmt.Errorf("binding: unknown type %q", name)
		}

		b.TypeSpec = append(b.TypeSpec, Slot(t))
	}

	return b, nil
}
