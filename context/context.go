// Package context builds the logical RuntimeTree that is the
// fixed-point of merging one or more per-file ASTs: override semantics
// (later definitions replace earlier ones), label-based cross
// references, and node/property deletions. It generalizes the shape of
// the teacher's own module-resolution step (types.Workspace/Module
// folding several ast.ModFiles into one resolved unit) to the DTS
// domain's node/property merge rules.
package context

import (
	gocontext "context"
	"fmt"
	"strings"

	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/diag"
)

// Node is a logical devicetree node identified by its absolute path.
type Node struct {
	Name   string
	Parent *Node

	Children   []*Node
	childIndex map[string]int

	Properties []*Property
	propIndex  map[string]int

	// Definitions is every AST DtcChildNode that contributed to this
	// logical node, in merge order. DtcRootNode blocks are folded into
	// the root without being recorded, so the root's Definitions is
	// always empty.
	Definitions []ast.Node

	// ReferencedBy is every AST DtcRefNode that merged into this node.
	ReferencedBy []*ast.DtcRefNode

	// Labels is the union of every LabelAssign targeting this node.
	Labels []*ast.LabelAssign
}

// Path returns the absolute, "/"-joined path from the root to this node.
func (n *Node) Path() string {
	if n.Parent == nil {
		return "/"
	}

	if n.Parent.Parent == nil {
		return "/" + n.Name
	}

	return n.Parent.Path() + "/" + n.Name
}

// Property is a logical property: the last-wins AST definition plus a
// chain back to every prior definition, used for DUPLICATE_PROPERTY_NAME
// diagnostics and "replaces" queries.
type Property struct {
	Name     string
	Current  *ast.DtcProperty
	Replaces *Property
}

// RuntimeTree is the fixed point of merging every file's AST, created
// fresh for each Build call and immutable once returned except for
// validator-appended diagnostics (which live in a separate collection,
// never inside the tree itself).
type RuntimeTree struct {
	Root *Node

	// LabelToPath is the resolved label -> absolute-path map the builder
	// accumulated while folding the tree; the validator reuses it to
	// resolve phandle-typed property values against the same state.
	LabelToPath map[string]string
}

func newNode(name string, parent *Node) *Node {
	return &Node{
		Name:       name,
		Parent:     parent,
		childIndex: make(map[string]int),
		propIndex:  make(map[string]int),
	}
}

// labelEntry tracks one LabelAssign occurrence for LABEL_ALREADY_IN_USE
// detection. ownerKey identifies the logical runtime object the label
// targets: a Node's path when the label decorates a DtcChildNode or
// DtcRefNode (the only owners resolvePath considers), otherwise a
// per-AST-node identity so labels on unrelated constructs are never
// treated as "the same owner".
type labelEntry struct {
	assign   *ast.LabelAssign
	ownerKey string
}

type builder struct {
	root        *Node
	nodesByPath map[string]*Node
	labelToPath map[string]string
	pool        map[string][]labelEntry
	issues      []diag.Diagnostic
}

// Build folds a sequence of per-file ASTs, in caller order, into a
// single RuntimeTree, applying override, deletion, and cross-reference
// semantics exactly as described by §4.4 of the module's own spec.
func Build(ctx gocontext.Context, docs []*ast.RootDoc) (*RuntimeTree, []diag.Diagnostic) {
	b := &builder{
		root:        newNode("", nil),
		nodesByPath: make(map[string]*Node),
		labelToPath: make(map[string]string),
		pool:        make(map[string][]labelEntry),
	}
	b.nodesByPath["/"] = b.root

	for _, doc := range docs {
		if ctx != nil && ctx.Err() != nil {
			break
		}

		b.foldChildren(b.root, doc.Children)
	}

	b.checkLabelPool()

	return &RuntimeTree{Root: b.root, LabelToPath: b.labelToPath}, b.issues
}

func (b *builder) report(d diag.Diagnostic) {
	b.issues = append(b.issues, d)
}

// foldChildren merges one AST block's declarations into target, enforcing
// sibling-name uniqueness within this single block (§4.4 step 3).
func (b *builder) foldChildren(target *Node, children []ast.Node) {
	seenInBlock := make(map[string]*ast.DtcChildNode)

	for _, child := range children {
		switch t := child.(type) {
		case *ast.DtcRootNode:
			b.foldChildren(target, t.Children)
		case *ast.DtcChildNode:
			b.foldChildNode(target, t, seenInBlock)
		case *ast.DtcRefNode:
			b.foldRefNode(target, t)
		case *ast.DtcProperty:
			b.addProperty(target, t)
		case *ast.DeleteNode:
			b.deleteNode(target, t)
		case *ast.DeleteProperty:
			b.deleteProperty(target, t)
		default:
			// Directive and other inert pass-through nodes contribute
			// nothing to the runtime tree.
		}
	}
}

// segmentName renders a child node's path segment the way real
// devicetree paths write it: "name" alone, or "name@address" (address
// in lowercase hex, no "0x" prefix) when a unit address is present. Two
// siblings that differ only by unit address are distinct logical nodes,
// so the segment — not the bare identifier — is what identity and
// duplicate-detection key on.
func segmentName(nn *ast.NodeName) string {
	if nn == nil {
		return ""
	}

	if !nn.HasAddress {
		return nn.Name
	}

	return fmt.Sprintf("%s@%x", nn.Name, nn.Address)
}

func (b *builder) foldChildNode(target *Node, t *ast.DtcChildNode, seenInBlock map[string]*ast.DtcChildNode) {
	name := segmentName(t.Name)

	if name != "" {
		if prev, ok := seenInBlock[name]; ok {
			b.report(diag.New(t, diag.DuplicateNodeName, name).WithLinked(prev))
		} else {
			seenInBlock[name] = t
		}
	}

	child := b.findOrCreateChild(target, name)
	child.Definitions = append(child.Definitions, t)
	b.attachNodeLabels(child, t.Labels)
	b.foldChildren(child, t.Children)
}

func (b *builder) foldRefNode(target *Node, t *ast.DtcRefNode) {
	if t.Ref == nil || t.Ref.Value == "" {
		b.report(diag.New(t, diag.UnableToResolveChildNode, ""))
		return
	}

	path, ok := b.labelToPath[t.Ref.Value]
	if !ok {
		b.report(diag.New(t, diag.UnableToResolveChildNode, t.Ref.Value))
		return
	}

	dest, ok := b.nodesByPath[path]
	if !ok {
		b.report(diag.New(t, diag.UnableToResolveChildNode, t.Ref.Value))
		return
	}

	dest.ReferencedBy = append(dest.ReferencedBy, t)
	b.attachNodeLabels(dest, t.Labels)
	b.foldChildren(dest, t.Children)
	_ = target // a ref node's resolution is independent of its lexical parent
}

func (b *builder) findOrCreateChild(parent *Node, name string) *Node {
	if idx, ok := parent.childIndex[name]; ok {
		return parent.Children[idx]
	}

	child := newNode(name, parent)
	parent.childIndex[name] = len(parent.Children)
	parent.Children = append(parent.Children, child)
	b.nodesByPath[child.Path()] = child

	return child
}

// attachNodeLabels attaches labels syntactically written on a
// DtcChildNode or DtcRefNode to the runtime Node they resolved to,
// registers them for path resolution, and records them in the global
// pool for LABEL_ALREADY_IN_USE detection.
func (b *builder) attachNodeLabels(node *Node, labels []*ast.LabelAssign) {
	for _, l := range labels {
		node.Labels = append(node.Labels, l)

		if _, exists := b.labelToPath[l.Name]; !exists {
			b.labelToPath[l.Name] = node.Path()
		}

		b.pool[l.Name] = append(b.pool[l.Name], labelEntry{assign: l, ownerKey: node.Path()})
	}
}

// attachOpaqueLabels records labels on AST nodes whose owner is not a
// Node (properties, delete-node/-property, directives) purely for pool
// conflict detection; they never participate in path resolution.
func (b *builder) attachOpaqueLabels(labels []*ast.LabelAssign, owner ast.Node) {
	key := fmt.Sprintf("ast:%p", owner)

	for _, l := range labels {
		b.pool[l.Name] = append(b.pool[l.Name], labelEntry{assign: l, ownerKey: key})
	}
}

func (b *builder) addProperty(node *Node, t *ast.DtcProperty) {
	prop := &Property{Name: t.PropertyName, Current: t}

	if idx, ok := node.propIndex[t.PropertyName]; ok {
		existing := node.Properties[idx]
		prop.Replaces = existing
		b.report(diag.New(existing.Current, diag.DuplicatePropertyName, t.PropertyName).
			WithSeverity(diag.Hint).
			WithTags(diag.Unnecessary).
			WithLinked(t))
		node.Properties[idx] = prop
	} else {
		node.propIndex[t.PropertyName] = len(node.Properties)
		node.Properties = append(node.Properties, prop)
	}

	b.attachOpaqueLabels(t.Labels, t)
}

func (b *builder) deleteNode(parent *Node, t *ast.DeleteNode) {
	var target *Node

	switch {
	case t.Ref != nil:
		path, ok := b.labelToPath[t.Ref.Value]
		if !ok {
			b.report(diag.New(t, diag.NodeDoesNotExist, t.Ref.Value))
			return
		}

		target = b.nodesByPath[path]
	case t.Name != "":
		idx, ok := parent.childIndex[t.Name]
		if !ok {
			b.report(diag.New(t, diag.NodeDoesNotExist, t.Name))
			return
		}

		target = parent.Children[idx]
	default:
		b.report(diag.New(t, diag.NodeDoesNotExist, ""))
		return
	}

	if target == nil {
		b.report(diag.New(t, diag.NodeDoesNotExist))
		return
	}

	b.detach(target)
	b.attachOpaqueLabels(t.Labels, t)
}

// detach removes node from its parent's child list and purges its
// (and its descendants') labels from both the resolution map and the
// conflict pool, per §4.4: "its labels do not contribute to the label
// pool".
func (b *builder) detach(node *Node) {
	if node.Parent != nil {
		parent := node.Parent
		idx, ok := parent.childIndex[node.Name]

		if ok && parent.Children[idx] == node {
			parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
			parent.childIndex = make(map[string]int, len(parent.Children))

			for i, c := range parent.Children {
				parent.childIndex[c.Name] = i
			}
		}
	}

	b.detachDescendant(node)
}

// detachDescendant purges node's own labels (and, recursively, every
// descendant's) from label resolution and the conflict pool, and drops
// each from the path index — the whole deleted subtree stops
// contributing anything to the label pool, not just its root.
func (b *builder) detachDescendant(node *Node) {
	b.purgeLabels(node)
	delete(b.nodesByPath, node.Path())

	for _, c := range node.Children {
		b.detachDescendant(c)
	}
}

func (b *builder) purgeLabels(node *Node) {
	for _, l := range node.Labels {
		if b.labelToPath[l.Name] == node.Path() {
			delete(b.labelToPath, l.Name)
		}

		entries := b.pool[l.Name]
		filtered := entries[:0]

		for _, e := range entries {
			if e.ownerKey != node.Path() {
				filtered = append(filtered, e)
			}
		}

		b.pool[l.Name] = filtered
	}
}

func (b *builder) deleteProperty(node *Node, t *ast.DeleteProperty) {
	idx, ok := node.propIndex[t.Name]
	if !ok {
		b.report(diag.New(t, diag.PropertyDoesNotExist, t.Name))
		return
	}

	node.Properties = append(node.Properties[:idx], node.Properties[idx+1:]...)
	node.propIndex = make(map[string]int, len(node.Properties))

	for i, p := range node.Properties {
		node.propIndex[p.Name] = i
	}

	b.attachOpaqueLabels(t.Labels, t)
}

// checkLabelPool emits LABEL_ALREADY_IN_USE for every label text whose
// occurrences do not all share the same owner.
func (b *builder) checkLabelPool() {
	for _, entries := range b.pool {
		if len(entries) < 2 {
			continue
		}

		first := entries[0].ownerKey
		allSame := true

		for _, e := range entries[1:] {
			if e.ownerKey != first {
				allSame = false
				break
			}
		}

		if allSame {
			continue
		}

		last := entries[len(entries)-1]

		var linked []ast.Node
		for _, e := range entries[:len(entries)-1] {
			linked = append(linked, e.assign)
		}

		b.report(diag.New(last.assign, diag.LabelAlreadyInUse, last.assign.Name).WithLinked(linked...))
	}
}

// FindByPath looks up a node by its "/"-joined absolute path, e.g.
// "/soc/uart@1000". An empty or "/" path returns the root.
func (t *RuntimeTree) FindByPath(path string) *Node {
	path = strings.Trim(path, "/")
	if path == "" {
		return t.Root
	}

	cur := t.Root

	for _, seg := range strings.Split(path, "/") {
		idx, ok := cur.childIndex[seg]
		if !ok {
			return nil
		}

		cur = cur.Children[idx]
	}

	return cur
}

// FindByLabel resolves a "&label" style reference to the Node it
// designates, mirroring the resolvePath rule that only DtcChildNode and
// DtcRefNode owners register into path resolution.
func (t *RuntimeTree) FindByLabel(label string) *Node {
	path, ok := t.LabelToPath[label]
	if !ok {
		return nil
	}

	return t.FindByPath(path)
}

// Property looks up a property by name on this node, returning nil if
// absent.
func (n *Node) Property(name string) *Property {
	if idx, ok := n.propIndex[name]; ok {
		return n.Properties[idx]
	}

	return nil
}

// Child looks up an immediate child by name, returning nil if absent.
func (n *Node) Child(name string) *Node {
	if idx, ok := n.childIndex[name]; ok {
		return n.Children[idx]
	}

	return nil
}
