// Package binding is the declarative registry of property-binding rules
// keyed by property name (literal or pattern) that the validator
// dispatches every RuntimeTree property through. It generalizes the
// teacher's declarative-registry shape (a name-keyed table of rules with
// optional function fields) to standard devicetree bindings, and adds a
// YAML loader so vendor binding packs can extend the built-in table
// without a recompile, the same way the sibling example repos load
// declarative configuration via gopkg.in/yaml.v3.
package binding

import (
	"regexp"

	"github.com/golangee/dts/context"
	"github.com/golangee/dts/diag"
)

// PropertyType is one member of the closed set of value shapes a
// property's values can be classified into (§4.5/4.6).
type PropertyType int

const (
	Empty PropertyType = iota
	U32
	U64
	String
	PropEncodedArray
	StringList
	ByteString
	Unknown
)

func (t PropertyType) String() string {
	switch t {
	case Empty:
		return "EMPTY"
	case U32:
		return "U32"
	case U64:
		return "U64"
	case String:
		return "STRING"
	case PropEncodedArray:
		return "PROP_ENCODED_ARRAY"
	case StringList:
		return "STRINGLIST"
	case ByteString:
		return "BYTESTRING"
	default:
		return "UNKNOWN"
	}
}

// Assignable reports whether a value classified as `have` satisfies a
// TypeSlot accepting `want`, applying the two documented widening rules
// (§4.5): a STRINGLIST slot accepts STRING or STRINGLIST; a
// PROP_ENCODED_ARRAY slot accepts U32 or U64.
func Assignable(want, have PropertyType) bool {
	if want == have {
		return true
	}

	if want == StringList && (have == String || have == StringList) {
		return true
	}

	if want == PropEncodedArray && (have == U32 || have == U64) {
		return true
	}

	return false
}

// TypeSlot is the set of PropertyTypes acceptable at one position of a
// binding's TypeSpec.
type TypeSlot map[PropertyType]bool

// Slot builds a TypeSlot accepting any of the given types.
func Slot(types ...PropertyType) TypeSlot {
	s := make(TypeSlot, len(types))
	for _, t := range types {
		s[t] = true
	}

	return s
}

// Accepts reports whether have satisfies this slot under the widening
// rules in Assignable.
func (s TypeSlot) Accepts(have PropertyType) bool {
	for want := range s {
		if Assignable(want, have) {
			return true
		}
	}

	return false
}

// Requirement is whether a property must, may, or must not be present.
type Requirement int

const (
	Optional Requirement = iota
	Required
	Omitted
)

// RequiredFunc lets a binding make its requirement conditional on the
// owning node, e.g. "reg is required only if #address-cells > 0".
type RequiredFunc func(node *context.Node) Requirement

// CheckFunc runs after type checks pass, producing any extra
// diagnostics a binding needs beyond shape/enum checking (the
// interrupts-extended cell-width walk being the illustrative case in
// §4.6). It must not mutate the tree.
type CheckFunc func(node *context.Node, prop *context.Property, tree *context.RuntimeTree) []diag.Diagnostic

// Binding is one registered property-binding rule.
type Binding struct {
	// Name matches a literal property name. Exactly one of Name/Pattern
	// must be set.
	Name string
	// Pattern matches property names by regular expression, used for
	// vendor-namespaced properties like "^[a-z]+,.*-gpio$".
	Pattern *regexp.Regexp

	TypeSpec []TypeSlot
	// List is true when a single TypeSpec slot is repeated across every
	// value instead of TypeSpec describing a fixed-length tuple.
	List bool

	Required     Requirement
	RequiredFunc RequiredFunc

	Default *string
	Enum    []string

	AdditionalCheck CheckFunc

	Deprecated bool
}

// RequirementFor resolves this binding's effective requirement for node,
// preferring RequiredFunc when set.
func (b Binding) RequirementFor(node *context.Node) Requirement {
	if b.RequiredFunc != nil {
		return b.RequiredFunc(node)
	}

	return b.Required
}

// Matches reports whether this binding governs propertyName.
func (b Binding) Matches(propertyName string) bool {
	if b.Pattern != nil {
		return b.Pattern.MatchString(propertyName)
	}

	return b.Name == propertyName
}

// Catalogue is the registry of Bindings the validator dispatches
// through. When several bindings match one property name, none of them
// wins over the others: Lookup returns all of them in registration order
// and the validator applies each one.
type Catalogue struct {
	bindings []Binding
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{}
}

// Register adds a binding to the catalogue.
func (c *Catalogue) Register(b Binding) {
	c.bindings = append(c.bindings, b)
}

// Lookup returns every binding whose Name or Pattern matches
// propertyName, in registration order.
func (c *Catalogue) Lookup(propertyName string) []Binding {
	var out []Binding

	for _, b := range c.bindings {
		if b.Matches(propertyName) {
			out = append(out, b)
		}
	}

	return out
}

// All returns every registered binding, used by the validator to walk
// "required" bindings that have no matching property at all.
func (c *Catalogue) All() []Binding {
	return c.bindings
}
