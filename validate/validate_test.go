package validate

import (
	gocontext "context"
	"testing"

	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/binding"
	"github.com/golangee/dts/context"
	"github.com/golangee/dts/diag"
	"github.com/golangee/dts/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T, text string) *context.RuntimeTree {
	t.Helper()

	res := parser.NewParser("test.dts", text).Parse(gocontext.Background())
	require.Empty(t, res.Issues, "unexpected parse issues: %+v", res.Issues)

	tree, issues := context.Build(gocontext.Background(), []*ast.RootDoc{res.Root})
	require.Empty(t, issues, "unexpected context issues: %+v", issues)

	return tree
}

func TestValidateMissingRequired(t *testing.T) {
	tree := buildTree(t, `/{ node@1 { reg = <0x1>; }; };`)

	issues := Validate(gocontext.Background(), tree, binding.Standard())

	require.NotEmpty(t, issues)

	found := false
	for _, iss := range issues {
		if iss.Kinds[0].String() == "REQUIRED" {
			found = true
		}
	}

	assert.True(t, found, "expected a REQUIRED diagnostic for missing compatible, got %+v", issues)
}

func TestValidateWrongType(t *testing.T) {
	tree := buildTree(t, `/{ node@1 { compatible = "v,x"; status = <1>; }; };`)

	issues := Validate(gocontext.Background(), tree, binding.Standard())

	found := false
	for _, iss := range issues {
		if iss.Kinds[0].String() == "EXPECTED_STRING" {
			found = true
		}
	}

	assert.True(t, found, "expected EXPECTED_STRING for status=<1>, got %+v", issues)
}

func TestValidateEnumMismatch(t *testing.T) {
	tree := buildTree(t, `/{ node@1 { compatible = "v,x"; status = "bogus"; }; };`)

	issues := Validate(gocontext.Background(), tree, binding.Standard())

	found := false
	for _, iss := range issues {
		if iss.Kinds[0].String() == "EXPECTED_ENUM" {
			found = true
		}
	}

	assert.True(t, found, "expected EXPECTED_ENUM for status=bogus, got %+v", issues)
}

func TestValidateCompositeLength(t *testing.T) {
	cat := binding.NewCatalogue()
	cat.Register(binding.Binding{
		Name:     "foo",
		TypeSpec: []binding.TypeSlot{binding.Slot(binding.U32), binding.Slot(binding.U32)},
	})

	tree := buildTree(t, `/{ node@1 { foo = <1>; }; };`)

	issues := Validate(gocontext.Background(), tree, cat)
	require.Len(t, issues, 1)
	assert.Equal(t, "EXPECTED_COMPOSITE_LENGTH", issues[0].Kinds[0].String())
}

func TestValidateExpectedOne(t *testing.T) {
	cat := binding.NewCatalogue()
	cat.Register(binding.Binding{
		Name:     "foo",
		TypeSpec: []binding.TypeSlot{binding.Slot(binding.String)},
	})

	tree := buildTree(t, `/{ node@1 { foo = "a", "b"; }; };`)

	issues := Validate(gocontext.Background(), tree, cat)
	require.Len(t, issues, 1)
	assert.Equal(t, "EXPECTED_ONE", issues[0].Kinds[0].String())
}

func TestValidateListBinding(t *testing.T) {
	cat := binding.NewCatalogue()
	cat.Register(binding.Binding{
		Name:     "foo",
		TypeSpec: []binding.TypeSlot{binding.Slot(binding.U32)},
		List:     true,
	})

	tree := buildTree(t, `/{ node@1 { foo = <1>, <2>, "bad"; }; };`)

	issues := Validate(gocontext.Background(), tree, cat)
	require.Len(t, issues, 1)
	assert.Equal(t, "EXPECTED_U32", issues[0].Kinds[0].String())
}

func TestValidateOmittedPresent(t *testing.T) {
	cat := binding.NewCatalogue()
	cat.Register(binding.Binding{Name: "legacy-flag", Required: binding.Omitted})

	tree := buildTree(t, `/{ node@1 { legacy-flag; }; };`)

	issues := Validate(gocontext.Background(), tree, cat)
	require.Len(t, issues, 1)
	assert.Equal(t, "OMITTED", issues[0].Kinds[0].String())
}

func TestValidateInterruptsExtended(t *testing.T) {
	tree := buildTree(t, `/{
		intc: interrupt-controller {
			#interrupt-cells = <1>;
		};
		dev {
			compatible = "v,x";
			interrupts-extended = <&intc 5>;
		};
	};`)

	issues := Validate(gocontext.Background(), tree, binding.Standard())

	for _, iss := range issues {
		assert.NotContains(t, []string{
			"INTERRUPTS_PARENT_NODE_NOT_FOUND",
			"INTERRUPTS_VALUE_CELL_MISS_MATCH",
			"PROPERTY_REQUIRES_OTHER_PROPERTY_IN_NODE",
		}, iss.Kinds[0].String())
	}
}

func TestValidateInterruptsExtendedCellMismatch(t *testing.T) {
	tree := buildTree(t, `/{
		intc: interrupt-controller {
			#interrupt-cells = <2>;
		};
		dev {
			compatible = "v,x";
			interrupts-extended = <&intc 5>;
		};
	};`)

	issues := Validate(gocontext.Background(), tree, binding.Standard())

	found := false
	for _, iss := range issues {
		if iss.Kinds[0].String() == "INTERRUPTS_VALUE_CELL_MISS_MATCH" {
			found = true
		}
	}

	assert.True(t, found, "expected a cell mismatch diagnostic, got %+v", issues)
}

func TestValidateInterruptsExtendedUnresolvedParent(t *testing.T) {
	tree := buildTree(t, `/{
		dev {
			compatible = "v,x";
			interrupts-extended = <&missing 5>;
		};
	};`)

	issues := Validate(gocontext.Background(), tree, binding.Standard())

	found := false
	for _, iss := range issues {
		if iss.Kinds[0].String() == "INTERRUPTS_PARENT_NODE_NOT_FOUND" {
			found = true
		}
	}

	assert.True(t, found, "expected unresolved parent diagnostic, got %+v", issues)
}

func TestValidateDeprecatedProperty(t *testing.T) {
	cat := binding.NewCatalogue()
	cat.Register(binding.Binding{
		Name:       "linux,phandle",
		TypeSpec:   []binding.TypeSlot{binding.Slot(binding.U32)},
		Deprecated: true,
	})

	tree := buildTree(t, `/{ node@1 { linux,phandle = <1>; }; };`)

	issues := Validate(gocontext.Background(), tree, cat)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Tags, diag.Deprecated)
}
