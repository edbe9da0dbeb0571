package binding

import (
	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/context"
	"github.com/golangee/dts/diag"
)

// Standard returns a Catalogue pre-populated with the widely-used
// devicetree properties named in the module's own spec: compatible,
// reg, #address-cells, #size-cells, interrupts, interrupt-parent,
// interrupts-extended (with its cell-width AdditionalCheck), status,
// ranges, and a handful of ethernet/phy/clock convenience bindings.
func Standard() *Catalogue {
	c := NewCatalogue()

	c.Register(Binding{
		Name:     "compatible",
		TypeSpec: []TypeSlot{Slot(StringList)},
		Required: Required,
	})

	c.Register(Binding{
		Name:     "reg",
		TypeSpec: []TypeSlot{Slot(PropEncodedArray)},
		List:     true,
		Required: Optional,
	})

	c.Register(Binding{
		Name:     "#address-cells",
		TypeSpec: []TypeSlot{Slot(U32)},
		Required: Optional,
		Default:  strPtr("2"),
	})

	c.Register(Binding{
		Name:     "#size-cells",
		TypeSpec: []TypeSlot{Slot(U32)},
		Required: Optional,
		Default:  strPtr("1"),
	})

	c.Register(Binding{
		Name:     "#interrupt-cells",
		TypeSpec: []TypeSlot{Slot(U32)},
		Required: Optional,
	})

	c.Register(Binding{
		Name:     "interrupts",
		TypeSpec: []TypeSlot{Slot(PropEncodedArray)},
		List:     true,
		Required: Optional,
	})

	c.Register(Binding{
		Name:     "interrupt-parent",
		TypeSpec: []TypeSlot{Slot(U32)},
		Required: Optional,
	})

	c.Register(Binding{
		Name:            "interrupts-extended",
		TypeSpec:        []TypeSlot{Slot(PropEncodedArray)},
		List:            true,
		Required:        Optional,
		AdditionalCheck: interruptsExtendedCheck,
	})

	c.Register(Binding{
		Name:     "status",
		TypeSpec: []TypeSlot{Slot(String)},
		Required: Optional,
		Default:  strPtr("okay"),
		Enum:     []string{"okay", "disabled", "reserved", "fail", "fail-sss"},
	})

	c.Register(Binding{
		Name:     "ranges",
		TypeSpec: []TypeSlot{Slot(PropEncodedArray, Empty)},
		List:     true,
		Required: Optional,
	})

	c.Register(Binding{
		Name:     "phandle",
		TypeSpec: []TypeSlot{Slot(U32)},
		Required: Optional,
	})

	c.Register(Binding{
		Name:     "clocks",
		TypeSpec: []TypeSlot{Slot(PropEncodedArray)},
		List:     true,
		Required: Optional,
	})

	c.Register(Binding{
		Name:     "clock-names",
		TypeSpec: []TypeSlot{Slot(StringList)},
		Required: Optional,
	})

	c.Register(Binding{
		Name:     "#clock-cells",
		TypeSpec: []TypeSlot{Slot(U32)},
		Required: Optional,
	})

	c.Register(Binding{
		Name:     "clock-frequency",
		TypeSpec: []TypeSlot{Slot(U32)},
		Required: Optional,
	})

	c.Register(Binding{
		Name:     "phy-mode",
		TypeSpec: []TypeSlot{Slot(String)},
		Required: Optional,
		Enum:     []string{"mii", "rmii", "gmii", "rgmii", "sgmii", "internal"},
	})

	c.Register(Binding{
		Name:       "linux,phandle",
		TypeSpec:   []TypeSlot{Slot(U32)},
		Required:   Optional,
		Deprecated: true,
	})

	return c
}

func strPtr(s string) *string { return &s }

// interruptsExtendedCheck implements the illustrative additionalCheck
// from §4.6: it walks interrupts-extended's value sequence as
// "[&parent, cell...]" tuples, sized by each target's own
// #interrupt-cells, and warns when interrupts/interrupt-parent coexist
// on the same node.
func interruptsExtendedCheck(node *context.Node, prop *context.Property, tree *context.RuntimeTree) []diag.Diagnostic {
	var issues []diag.Diagnostic

	if node.Property("interrupts") != nil {
		issues = append(issues, diag.New(prop.Current, diag.Ignored, "interrupts").WithSeverity(diag.Warning))
	}

	if node.Property("interrupt-parent") != nil {
		issues = append(issues, diag.New(prop.Current, diag.Ignored, "interrupt-parent").WithSeverity(diag.Warning))
	}

	for _, val := range prop.Current.Values {
		av, ok := val.(*ast.ArrayValues)
		if !ok {
			continue
		}

		issues = append(issues, walkInterruptTuples(av, tree)...)
	}

	return issues
}

// walkInterruptTuples splits one <...> array into consecutive
// "[&parent, cell...]" tuples (a tuple starts at every phandle cell) and
// validates each against its resolved parent's #interrupt-cells.
func walkInterruptTuples(av *ast.ArrayValues, tree *context.RuntimeTree) []diag.Diagnostic {
	var issues []diag.Diagnostic

	i := 0
	for i < len(av.CellRefs) {
		ref := av.CellRefs[i]
		if ref == nil {
			i++
			continue
		}

		start := i
		i++

		for i < len(av.CellRefs) && av.CellRefs[i] == nil {
			i++
		}

		cellCount := i - start - 1

		parentNode := tree.FindByLabel(ref.Value)
		if parentNode == nil {
			issues = append(issues, diag.New(av, diag.InterruptsParentNodeNotFound, ref.Value))
			continue
		}

		cellsProp := parentNode.Property("#interrupt-cells")
		if cellsProp == nil {
			issues = append(issues, diag.New(av, diag.PropertyRequiresOtherPropertyInNode, "#interrupt-cells", ref.Value))
			continue
		}

		want := interruptCellWidth(cellsProp)
		if cellCount != want {
			issues = append(issues, diag.New(av, diag.InterruptsValueCellMissMatch, ref.Value))
		}
	}

	return issues
}

func interruptCellWidth(prop *context.Property) int {
	if len(prop.Current.Values) != 1 {
		return -1
	}

	av, ok := prop.Current.Values[0].(*ast.ArrayValues)
	if !ok || len(av.Cells) != 1 {
		return -1
	}

	return int(av.Cells[0])
}
