package parser

import (
	gocontext "context"
	"testing"

	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/diag"
	"github.com/golangee/dts/token"
)

func parse(text string) *Result {
	return NewParser("test.dts", text).Parse(gocontext.Background())
}

func kindsOf(d diag.Diagnostic) []string {
	var out []string
	for _, k := range d.Kinds {
		out = append(out, k.String())
	}

	return out
}

// TestScenarios exercises the seven numbered end-to-end scenarios from
// the module's own spec (§9 / distilled spec §8).
func TestScenarios(t *testing.T) {
	t.Run("scenario 1: empty root block missing semicolon", func(t *testing.T) {
		res := parse("/{}")

		if len(res.Issues) != 1 {
			t.Fatalf("want 1 issue, got %d: %+v", len(res.Issues), res.Issues)
		}

		if got := kindsOf(res.Issues[0]); len(got) != 1 || got[0] != "END_STATMENT" {
			t.Fatalf("want [END_STATMENT], got %v", got)
		}

		pos := res.Issues[0].Element.LastToken().Pos
		if pos.Line != 0 || pos.Col != 2 || pos.Len != 1 {
			t.Fatalf("want pos {0,2,1}, got %+v", pos)
		}

		if len(res.Root.Children) != 1 {
			t.Fatalf("want 1 top-level child, got %d", len(res.Root.Children))
		}

		if _, ok := res.Root.Children[0].(*ast.DtcRootNode); !ok {
			t.Fatalf("want DtcRootNode, got %T", res.Root.Children[0])
		}
	})

	t.Run("scenario 2: nested child node missing outer semicolon", func(t *testing.T) {
		res := parse("/{ node {}};")

		if len(res.Issues) != 1 {
			t.Fatalf("want 1 issue, got %d: %+v", len(res.Issues), res.Issues)
		}

		if got := kindsOf(res.Issues[0]); len(got) != 1 || got[0] != "END_STATMENT" {
			t.Fatalf("want [END_STATMENT], got %v", got)
		}

		pos := res.Issues[0].Element.LastToken().Pos
		if pos != (token.Pos{Line: 0, Col: 9, Len: 1}) {
			t.Fatalf("want pos {0,9,1}, got %+v", pos)
		}

		root := res.Root.Children[0].(*ast.DtcRootNode)
		if len(root.Children) != 1 {
			t.Fatalf("want 1 root child, got %d", len(root.Children))
		}

		child, ok := root.Children[0].(*ast.DtcChildNode)
		if !ok {
			t.Fatalf("want DtcChildNode, got %T", root.Children[0])
		}

		if child.Name == nil || child.Name.Name != "node" {
			t.Fatalf("want name %q, got %+v", "node", child.Name)
		}
	})

	t.Run("scenario 3: both semicolons missing", func(t *testing.T) {
		res := parse("/{ node {}}")

		if len(res.Issues) != 2 {
			t.Fatalf("want 2 issues, got %d: %+v", len(res.Issues), res.Issues)
		}

		for _, iss := range res.Issues {
			if got := kindsOf(iss); len(got) != 1 || got[0] != "END_STATMENT" {
				t.Fatalf("want [END_STATMENT], got %v", got)
			}
		}

		want := []token.Pos{{Line: 0, Col: 9, Len: 1}, {Line: 0, Col: 10, Len: 1}}
		for i, iss := range res.Issues {
			if got := iss.Element.LastToken().Pos; got != want[i] {
				t.Fatalf("issue %d: want pos %+v, got %+v", i, want[i], got)
			}
		}
	})

	t.Run("scenario 4: node with address, no issues", func(t *testing.T) {
		res := parse("/{node1@20{};};")

		if len(res.Issues) != 0 {
			t.Fatalf("want 0 issues, got %d: %+v", len(res.Issues), res.Issues)
		}

		root := res.Root.Children[0].(*ast.DtcRootNode)
		child := root.Children[0].(*ast.DtcChildNode)

		if child.Name.Name != "node1" || !child.Name.HasAddress || child.Name.Address != 0x20 {
			t.Fatalf("unexpected name/address: %+v", child.Name)
		}

		if child.First.Pos.Col != 2 || child.Last.Pos.End().Col != 12 {
			t.Fatalf("want cols 2..12, got %d..%d", child.First.Pos.Col, child.Last.Pos.End().Col)
		}
	})

	t.Run("scenario 5: address token with no number", func(t *testing.T) {
		res := parse("/{node1@{};};")

		if len(res.Issues) != 1 {
			t.Fatalf("want 1 issue, got %d: %+v", len(res.Issues), res.Issues)
		}

		if got := kindsOf(res.Issues[0]); len(got) != 1 || got[0] != "NODE_ADDRESS" {
			t.Fatalf("want [NODE_ADDRESS], got %v", got)
		}

		pos := res.Issues[0].Element.LastToken().Pos
		if pos != (token.Pos{Line: 0, Col: 7, Len: 1}) {
			t.Fatalf("want pos {0,7,1}, got %+v", pos)
		}
	})

	t.Run("scenario 6: whitespace between name, @, and address", func(t *testing.T) {
		res := parse("/{node1@ 20{};};")

		if len(res.Issues) != 1 {
			t.Fatalf("want 1 issue, got %d: %+v", len(res.Issues), res.Issues)
		}

		if got := kindsOf(res.Issues[0]); len(got) != 1 || got[0] != "NODE_NAME_ADDRESS_WHITE_SPACE" {
			t.Fatalf("want [NODE_NAME_ADDRESS_WHITE_SPACE], got %v", got)
		}

		root := res.Root.Children[0].(*ast.DtcRootNode)
		child := root.Children[0].(*ast.DtcChildNode)

		if child.Name.Name != "node1" || child.Name.Address != 0x20 {
			t.Fatalf("unexpected name/address: %+v", child.Name)
		}

		if child.First.Pos.Col != 2 || child.Last.Pos.End().Col != 13 {
			t.Fatalf("want cols 2..13, got %d..%d", child.First.Pos.Col, child.Last.Pos.End().Col)
		}
	})

	t.Run("scenario 7: reference node", func(t *testing.T) {
		res := parse("&label{};")

		if len(res.Issues) != 0 {
			t.Fatalf("want 0 issues, got %d: %+v", len(res.Issues), res.Issues)
		}

		ref, ok := res.Root.Children[0].(*ast.DtcRefNode)
		if !ok {
			t.Fatalf("want DtcRefNode, got %T", res.Root.Children[0])
		}

		if ref.Ref.Value != "label" {
			t.Fatalf("want ref value %q, got %q", "label", ref.Ref.Value)
		}

		if ref.First.Pos.Col != 0 || ref.Last.Pos.End().Col != 8 {
			t.Fatalf("want cols 0..8, got %d..%d", ref.First.Pos.Col, ref.Last.Pos.End().Col)
		}
	})
}

// TestParserTotality feeds a battery of malformed inputs through the
// parser and only requires that it terminates and returns a non-nil
// tree, per the "parser totality" testable property (§8/§9).
func TestParserTotality(t *testing.T) {
	inputs := []string{
		"",
		"/",
		"/{",
		"&",
		"&{",
		"node@",
		"node@ {",
		`prop = "unterminated`,
		"prop = <1 2",
		"prop = [ab cd",
		"/delete-node/",
		"/delete-property/",
		"/unknown-directive/ foo;",
		"@@@@@",
		"/{ a { b { c {}}}",
	}

	for _, in := range inputs {
		res := parse(in)
		if res == nil || res.Root == nil {
			t.Fatalf("input %q: parser did not return a usable tree", in)
		}
	}
}

// TestPropertyValues checks that each PropertyValue variant is parsed
// with the right concrete type and payload.
func TestPropertyValues(t *testing.T) {
	res := parse(`/{
		a = "hello";
		b = <0x1 0x2 0x3>;
		c = [ab cd ef];
		d = &phandle;
		e = &{/soc/uart@1000};
		f;
		g = "x", "y";
	};`)

	if len(res.Issues) != 0 {
		t.Fatalf("want 0 issues, got %d: %+v", len(res.Issues), res.Issues)
	}

	root := res.Root.Children[0].(*ast.DtcRootNode)

	props := map[string]*ast.DtcProperty{}
	for _, c := range root.Children {
		if p, ok := c.(*ast.DtcProperty); ok {
			props[p.PropertyName] = p
		}
	}

	if sv, ok := props["a"].Values[0].(*ast.StringValue); !ok || sv.Value != "hello" {
		t.Fatalf("property a: want StringValue(hello), got %#v", props["a"].Values[0])
	}

	av, ok := props["b"].Values[0].(*ast.ArrayValues)
	if !ok || len(av.Cells) != 3 || av.Cells[1] != 2 {
		t.Fatalf("property b: unexpected array values %#v", props["b"].Values[0])
	}

	bs, ok := props["c"].Values[0].(*ast.ByteString)
	if !ok || len(bs.Bytes) != 3 || bs.Bytes[0] != 0xab {
		t.Fatalf("property c: unexpected bytestring %#v", props["c"].Values[0])
	}

	lr, ok := props["d"].Values[0].(*ast.LabelRefValue)
	if !ok || lr.Ref.Value != "phandle" {
		t.Fatalf("property d: unexpected label ref %#v", props["d"].Values[0])
	}

	np, ok := props["e"].Values[0].(*ast.NodePathValue)
	if !ok || np.Path != "/soc/uart@1000" {
		t.Fatalf("property e: unexpected node path %#v", props["e"].Values[0])
	}

	if len(props["f"].Values) != 0 {
		t.Fatalf("property f: want boolean (no values), got %#v", props["f"].Values)
	}

	if len(props["g"].Values) != 2 {
		t.Fatalf("property g: want 2 values, got %d", len(props["g"].Values))
	}
}

// TestLabelAttachment checks that labels are collected and attached even
// though ownership only becomes known after the labeled element parses.
func TestLabelAttachment(t *testing.T) {
	res := parse(`/{
		lbl: node@1 {
			p2: prop = <1>;
		};
	};`)

	if len(res.Issues) != 0 {
		t.Fatalf("want 0 issues, got %+v", res.Issues)
	}

	root := res.Root.Children[0].(*ast.DtcRootNode)
	child := root.Children[0].(*ast.DtcChildNode)

	if len(child.Labels) != 1 || child.Labels[0].Name != "lbl" || child.Labels[0].Owner != ast.Node(child) {
		t.Fatalf("unexpected labels on child: %+v", child.Labels)
	}

	prop := child.Children[0].(*ast.DtcProperty)
	if len(prop.Labels) != 1 || prop.Labels[0].Name != "p2" {
		t.Fatalf("unexpected labels on property: %+v", prop.Labels)
	}
}
