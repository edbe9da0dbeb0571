package xmldump

import (
	"bytes"
	gocontext "context"
	"strings"
	"testing"

	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/context"
	"github.com/golangee/dts/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteProducesWellFormedTags(t *testing.T) {
	res := parser.NewParser("t.dts", `/{ lbl: soc { status = "okay"; }; };`).Parse(gocontext.Background())
	require.Empty(t, res.Issues)

	tree, issues := context.Build(gocontext.Background(), []*ast.RootDoc{res.Root})
	require.Empty(t, issues)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tree))

	out := buf.String()
	assert.Contains(t, out, `<node name="root" path="/">`)
	assert.Contains(t, out, `<node name="soc" path="/soc">`)
	assert.Contains(t, out, `<labels>lbl</labels>`)
	assert.Contains(t, out, `<string>okay</string>`)
	assert.Equal(t, strings.Count(out, "<node "), strings.Count(out, "</node>"))
}
