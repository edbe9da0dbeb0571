// Package xmldump renders a RuntimeTree as XML, adapting the teacher's
// stream-xml-encoder recursive tree walk (encodeRek: open tag, render
// attributes, recurse into children, close tag) from dyml's own AST to
// this module's Node/Property tree. It exists so cmd/dtslint has a
// stable, greppable dump format for debugging a merged context without
// reaching into Go structs.
package xmldump

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/context"
)

// Write renders tree as an indented XML document to w.
func Write(w io.Writer, tree *context.RuntimeTree) error {
	if _, err := io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"); err != nil {
		return err
	}

	return writeNode(w, tree.Root, 0)
}

func writeNode(w io.Writer, node *context.Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	name := node.Name

	if name == "" {
		name = "root"
	}

	if _, err := fmt.Fprintf(w, "%s<node name=%q path=%q>\n", indent, name, node.Path()); err != nil {
		return err
	}

	if err := writeLabels(w, node.Labels, depth+1); err != nil {
		return err
	}

	for _, prop := range node.Properties {
		if err := writeProperty(w, prop, depth+1); err != nil {
			return err
		}
	}

	for _, child := range node.Children {
		if err := writeNode(w, child, depth+1); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%s</node>\n", indent)

	return err
}

func writeLabels(w io.Writer, labels []*ast.LabelAssign, depth int) error {
	if len(labels) == 0 {
		return nil
	}

	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}

	sort.Strings(names)

	indent := strings.Repeat("  ", depth)
	_, err := fmt.Fprintf(w, "%s<labels>%s</labels>\n", indent, strings.Join(names, ","))

	return err
}

func writeProperty(w io.Writer, prop *context.Property, depth int) error {
	indent := strings.Repeat("  ", depth)

	if len(prop.Current.Values) == 0 {
		_, err := fmt.Fprintf(w, "%s<property name=%q/>\n", indent, prop.Name)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s<property name=%q>\n", indent, prop.Name); err != nil {
		return err
	}

	valueIndent := strings.Repeat("  ", depth+1)

	for _, val := range prop.Current.Values {
		if _, err := fmt.Fprintf(w, "%s%s\n", valueIndent, renderValue(val)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%s</property>\n", indent)

	return err
}

func renderValue(val ast.PropertyValue) string {
	switch t := val.(type) {
	case *ast.StringValue:
		return fmt.Sprintf("<string>%s</string>", xmlEscape(t.Value))
	case *ast.ByteString:
		return fmt.Sprintf("<bytestring length=%q/>", fmt.Sprint(len(t.Bytes)))
	case *ast.LabelRefValue:
		return fmt.Sprintf("<labelref>%s</labelref>", t.Ref.Value)
	case *ast.NodePathValue:
		return fmt.Sprintf("<nodepath>%s</nodepath>", t.Path)
	case *ast.ArrayValues:
		return fmt.Sprintf("<cells length=%q/>", fmt.Sprint(len(t.Cells)))
	default:
		return "<unknown/>"
	}
}

func xmlEscape(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;")
	return r.Replace(s)
}
