// Package validate walks a RuntimeTree, dispatches each property through
// its registered binding.Binding, and emits diagnostics for shape,
// enum, and requirement mismatches, plus whatever a binding's
// AdditionalCheck contributes. It is the terminal stage of the pipeline
// described in the module's own spec (§2/§5.6).
package validate

import (
	gocontext "context"

	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/binding"
	"github.com/golangee/dts/context"
	"github.com/golangee/dts/diag"
)

// Validate walks every node of tree and every binding registered in cat,
// returning the accumulated diagnostic set. It never mutates tree.
func Validate(ctx gocontext.Context, tree *context.RuntimeTree, cat *binding.Catalogue) []diag.Diagnostic {
	v := &validator{cat: cat, tree: tree}
	v.walk(ctx, tree.Root)

	return v.issues
}

type validator struct {
	cat    *binding.Catalogue
	tree   *context.RuntimeTree
	issues []diag.Diagnostic
}

func (v *validator) report(d diag.Diagnostic) {
	v.issues = append(v.issues, d)
}

func (v *validator) walk(ctx gocontext.Context, node *context.Node) {
	if ctx != nil && ctx.Err() != nil {
		return
	}

	v.checkRequirements(node)

	for _, prop := range node.Properties {
		v.checkProperty(node, prop)
	}

	for _, child := range node.Children {
		v.walk(ctx, child)
	}
}

// checkRequirements enforces required/omitted for every literally-named
// binding (pattern bindings only ever "match" a present property, so
// they cannot meaningfully participate in an absence check).
func (v *validator) checkRequirements(node *context.Node) {
	if len(node.Definitions) == 0 {
		return
	}

	anchor := node.Definitions[len(node.Definitions)-1]

	for _, b := range v.cat.All() {
		if b.Name == "" {
			continue
		}

		prop := node.Property(b.Name)
		req := b.RequirementFor(node)

		switch {
		case req == binding.Required && prop == nil:
			v.report(diag.New(anchor, diag.Required, b.Name))
		case req == binding.Omitted && prop != nil:
			v.report(diag.New(prop.Current, diag.Omitted, b.Name))
		}
	}
}

func (v *validator) checkProperty(node *context.Node, prop *context.Property) {
	profile := classify(prop.Current)

	for _, b := range v.cat.Lookup(prop.Name) {
		v.dispatch(node, prop, b, profile)
	}
}

// classify turns a property's AST values into a ValueProfile: one
// PropertyType per value, per §4.6's classification rules. A valueless
// boolean property classifies as a single EMPTY value.
func classify(prop *ast.DtcProperty) []binding.PropertyType {
	if len(prop.Values) == 0 {
		return []binding.PropertyType{binding.Empty}
	}

	profile := make([]binding.PropertyType, 0, len(prop.Values))

	for _, val := range prop.Values {
		profile = append(profile, classifyOne(val))
	}

	return profile
}

func classifyOne(val ast.PropertyValue) binding.PropertyType {
	switch t := val.(type) {
	case *ast.StringValue:
		return binding.String
	case *ast.ByteString:
		return binding.ByteString
	case *ast.LabelRefValue:
		// Open question carried from the module's own spec (§10): a
		// label/phandle reference is classified U32 regardless of the
		// target node's #address-cells.
		return binding.U32
	case *ast.NodePathValue:
		return binding.U32
	case *ast.ArrayValues:
		switch len(t.Cells) {
		case 0:
			return binding.Empty
		case 1:
			return binding.U32
		case 2:
			return binding.U64
		default:
			return binding.PropEncodedArray
		}
	default:
		return binding.Unknown
	}
}

func (v *validator) dispatch(node *context.Node, prop *context.Property, b binding.Binding, profile []binding.PropertyType) {
	ok := v.checkShape(prop, b, profile)

	if !ok {
		return
	}

	if b.Deprecated {
		v.report(diag.New(prop.Current, diag.Ignored, prop.Name).
			WithSeverity(diag.Warning).
			WithTags(diag.Deprecated))
	}

	if len(b.Enum) > 0 {
		v.checkEnum(prop, b)
	}

	if b.AdditionalCheck != nil {
		for _, d := range b.AdditionalCheck(node, prop, v.tree) {
			v.report(d)
		}
	}
}

// checkShape implements §4.6's composite/singleton/list dispatch and
// returns whether the shape was acceptable. A length or arity mismatch
// yields one diagnostic; otherwise each mismatching composite slot or
// list value yields its own diagnostic.
func (v *validator) checkShape(prop *context.Property, b binding.Binding, profile []binding.PropertyType) bool {
	spec := b.TypeSpec
	if len(spec) == 0 {
		return true
	}

	if len(spec) > 1 && !b.List {
		if len(spec) != len(profile) {
			v.report(diag.New(prop.Current, diag.ExpectedCompositeLength, prop.Name))
			return false
		}

		ok := true

		for i, slot := range spec {
			if !slot.Accepts(profile[i]) {
				v.report(diag.New(prop.Current, expectedKind(slot), prop.Name))
				ok = false
			}
		}

		return ok
	}

	slot := spec[0]

	if slot[binding.StringList] {
		if !slot.Accepts(profile[0]) {
			v.report(diag.New(prop.Current, expectedKind(slot), prop.Name))
			return false
		}

		return true
	}

	if b.List {
		ok := true

		for _, have := range profile {
			if !slot.Accepts(have) {
				v.report(diag.New(prop.Current, expectedKind(slot), prop.Name))
				ok = false
			}
		}

		return ok
	}

	if len(profile) > 1 && !slot[binding.Empty] {
		v.report(diag.New(prop.Current, diag.ExpectedOne, prop.Name))
		return false
	}

	if !slot.Accepts(profile[0]) {
		v.report(diag.New(prop.Current, expectedKind(slot), prop.Name))
		return false
	}

	return true
}

// expectedKind maps a TypeSlot back to the single most specific
// StandardTypeIssue kind for a "wrong shape" diagnostic, in priority
// order across the slot's accepted types.
func expectedKind(slot binding.TypeSlot) diag.StandardTypeIssue {
	order := []struct {
		t binding.PropertyType
		k diag.StandardTypeIssue
	}{
		{binding.Empty, diag.ExpectedEmpty},
		{binding.String, diag.ExpectedString},
		{binding.StringList, diag.ExpectedStringList},
		{binding.U32, diag.ExpectedU32},
		{binding.U64, diag.ExpectedU64},
		{binding.PropEncodedArray, diag.ExpectedPropEncodedArray},
	}

	for _, o := range order {
		if slot[o.t] {
			return o.k
		}
	}

	return diag.ExpectedEmpty
}

func (v *validator) checkEnum(prop *context.Property, b binding.Binding) {
	if len(prop.Current.Values) == 0 {
		return
	}

	sv, ok := prop.Current.Values[0].(*ast.StringValue)
	if !ok {
		return
	}

	for _, allowed := range b.Enum {
		if sv.Value == allowed {
			return
		}
	}

	v.report(diag.New(prop.Current, diag.ExpectedEnum, prop.Name, sv.Value))
}
