// Package ast defines the concrete/abstract syntax tree produced by the
// parser: a tagged union of node variants that all share a common
// position/label/children header, following the same "shared header
// record embedded in every variant" shape the teacher uses for its own
// grammar (ast.Position embedded throughout ast.go).
package ast

import "github.com/golangee/dts/token"

// Node is the common interface implemented by every AST variant. Base
// position accessors are used for range-monotonicity checks and for
// anchoring diagnostics.
type Node interface {
	FirstToken() token.Token
	LastToken() token.Token
	Walk(Visitor)
}

// Visitor is called on Enter/Exit of every node during a Walk, mirroring
// the teacher's visitor.go traversal style.
type Visitor interface {
	Enter(Node)
	Exit(Node)
}

// Base is the shared header embedded in every concrete node. It is
// intentionally a plain struct (not an interface) so variants can embed
// it and get FirstToken/LastToken for free while still overriding Walk.
type Base struct {
	First  token.Token
	Last   token.Token
	Labels []*LabelAssign

	// DocSymbol carries an opaque, editor-facing symbol name. Its
	// content is never interpreted by the core, per the OUT-OF-SCOPE
	// note that documentation/presentation payloads are shipped
	// verbatim.
	DocSymbol string
}

func (b Base) FirstToken() token.Token { return b.First }
func (b Base) LastToken() token.Token  { return b.Last }

// AddLabel attaches a label assignment to this node, regardless of
// whether the context is one where labels are conventionally allowed —
// forbidden-context labels are still attached and only flagged via a
// diagnostic (§3.2 invariant).
func (b *Base) AddLabel(l *LabelAssign) {
	b.Labels = append(b.Labels, l)
}

// RootDoc is the top-level container for one parsed file: an ordered
// sequence of top-level declarations.
type RootDoc struct {
	Base
	URI      string
	Children []Node
}

func (n *RootDoc) Walk(v Visitor) {
	v.Enter(n)

	for _, c := range n.Children {
		c.Walk(v)
	}

	v.Exit(n)
}

// DtcRootNode is a "/{ ... };" block.
type DtcRootNode struct {
	Base
	Children []Node
}

func (n *DtcRootNode) Walk(v Visitor) {
	v.Enter(n)

	for _, c := range n.Children {
		c.Walk(v)
	}

	v.Exit(n)
}

// NodeName holds a child node's name and optional numeric unit-address,
// e.g. "node1@20".
type NodeName struct {
	Base
	Name string
	// HasAddress is false when "name@" appears with nothing after the
	// '@' (NODE_ADDRESS diagnostic case) — Address is then 0 and
	// meaningless.
	HasAddress bool
	Address    uint64
}

func (n *NodeName) Walk(v Visitor) {
	v.Enter(n)
	v.Exit(n)
}

// DtcChildNode is "name[@address] { ... };". It is present in the tree
// even when its name could not be parsed (§3.2 invariant) — Name.Name is
// then empty rather than the node being omitted.
type DtcChildNode struct {
	Base
	Name     *NodeName
	Children []Node
}

func (n *DtcChildNode) Walk(v Visitor) {
	v.Enter(n)

	if n.Name != nil {
		n.Name.Walk(v)
	}

	for _, c := range n.Children {
		c.Walk(v)
	}

	v.Exit(n)
}

// LabelRef is "&name", used both as a standalone reference-node target
// and as a property value.
type LabelRef struct {
	Base
	Value string
}

func (n *LabelRef) Walk(v Visitor) {
	v.Enter(n)
	v.Exit(n)
}

// DtcRefNode is "&label { ... };" — contributes its children into the
// node that the label resolves to.
type DtcRefNode struct {
	Base
	Ref      *LabelRef
	Children []Node
}

func (n *DtcRefNode) Walk(v Visitor) {
	v.Enter(n)

	if n.Ref != nil {
		n.Ref.Walk(v)
	}

	for _, c := range n.Children {
		c.Walk(v)
	}

	v.Exit(n)
}

// DtcProperty is "name = value, value, ...;" or a valueless boolean
// property "name;".
type DtcProperty struct {
	Base
	PropertyName string
	Values       []PropertyValue
}

func (n *DtcProperty) Walk(v Visitor) {
	v.Enter(n)

	for _, val := range n.Values {
		val.Walk(v)
	}

	v.Exit(n)
}

// PropertyValue is the tagged union of value forms a property can carry.
type PropertyValue interface {
	Node
	isPropertyValue()
}

// StringValue is a double-quoted string literal value.
type StringValue struct {
	Base
	Value string
}

func (n *StringValue) isPropertyValue() {}
func (n *StringValue) Walk(v Visitor)   { v.Enter(n); v.Exit(n) }

// ArrayValues is a "<...>" cell array. Each cell is either a literal
// integer (Cells) or a label reference occupying one cell slot
// (CellRefs, nil entry when the cell at that index is a literal).
type ArrayValues struct {
	Base
	Cells    []int64
	CellRefs []*LabelRef // same length as Cells; non-nil entries override the literal
}

func (n *ArrayValues) isPropertyValue() {}
func (n *ArrayValues) Walk(v Visitor) {
	v.Enter(n)

	for _, ref := range n.CellRefs {
		if ref != nil {
			ref.Walk(v)
		}
	}

	v.Exit(n)
}

// LabelRefValue is a bare "&label" used directly as a property value
// (e.g. "interrupt-parent = &gic;").
type LabelRefValue struct {
	Base
	Ref *LabelRef
}

func (n *LabelRefValue) isPropertyValue() {}
func (n *LabelRefValue) Walk(v Visitor) {
	v.Enter(n)

	if n.Ref != nil {
		n.Ref.Walk(v)
	}

	v.Exit(n)
}

// NodePathValue is a "&{/path/to/node}" value.
type NodePathValue struct {
	Base
	Path string
}

func (n *NodePathValue) isPropertyValue() {}
func (n *NodePathValue) Walk(v Visitor)   { v.Enter(n); v.Exit(n) }

// ByteString is a "[ab cd ef]" hex-byte literal.
type ByteString struct {
	Base
	Bytes []byte
}

func (n *ByteString) isPropertyValue() {}
func (n *ByteString) Walk(v Visitor)   { v.Enter(n); v.Exit(n) }

// DeleteNode is "/delete-node/ name;" or "/delete-node/ &label;".
type DeleteNode struct {
	Base
	Name string   // set when deleting by name
	Ref  *LabelRef // set when deleting by label reference
}

func (n *DeleteNode) Walk(v Visitor) {
	v.Enter(n)

	if n.Ref != nil {
		n.Ref.Walk(v)
	}

	v.Exit(n)
}

// DeleteProperty is "/delete-property/ name;".
type DeleteProperty struct {
	Base
	Name string
}

func (n *DeleteProperty) Walk(v Visitor) {
	v.Enter(n)
	v.Exit(n)
}

// Directive is an inert pass-through node for source constructs this
// module tokenizes but does not evaluate: '#'-prefixed preprocessor
// lines and the native "/include/ "file";" form. Evaluating macro
// preprocessor directives beyond tokenization is a non-goal (§1); the
// node exists only so the construct still has a range and can carry
// labels without being misrepresented as a property deletion.
type Directive struct {
	Base
	Text string
}

func (n *Directive) Walk(v Visitor) {
	v.Enter(n)
	v.Exit(n)
}

// LabelAssign is a "name:" prefix, attached to the AST element that
// immediately follows it.
type LabelAssign struct {
	Base
	Name string
	// Owner is filled in by the parser once the labeled element is
	// known, giving diagnostics and the context builder a direct
	// back-reference without a second pass.
	Owner Node
}

func (n *LabelAssign) Walk(v Visitor) {
	v.Enter(n)
	v.Exit(n)
}
