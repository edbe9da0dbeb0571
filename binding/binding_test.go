package binding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignableWidening(t *testing.T) {
	assert.True(t, Assignable(StringList, String))
	assert.True(t, Assignable(StringList, StringList))
	assert.True(t, Assignable(PropEncodedArray, U32))
	assert.True(t, Assignable(PropEncodedArray, U64))
	assert.False(t, Assignable(U32, U64))
	assert.False(t, Assignable(String, StringList))
}

func TestStandardCatalogueLookup(t *testing.T) {
	cat := Standard()

	compat := cat.Lookup("compatible")
	require.Len(t, compat, 1)
	assert.Equal(t, Required, compat[0].Required)

	iext := cat.Lookup("interrupts-extended")
	require.Len(t, iext, 1)
	assert.NotNil(t, iext[0].AdditionalCheck)

	assert.Empty(t, cat.Lookup("no-such-property"))
}

func TestLoadYAMLMergesAdditively(t *testing.T) {
	cat := Standard()
	before := len(cat.All())

	doc := `
bindings:
  - name: vendor,custom-flag
    types: [string]
    required: optional
    enum: [a, b]
  - pattern: "^vendor,.*-gpio$"
    types: [u32]
`

	require.NoError(t, cat.LoadYAML(strings.NewReader(doc)))
	assert.Equal(t, before+2, len(cat.All()))

	matches := cat.Lookup("vendor,foo-gpio")
	require.Len(t, matches, 1)
	assert.Equal(t, []PropertyType{U32}, keysOf(matches[0].TypeSpec[0]))
}

func TestLoadYAMLRejectsUnknownType(t *testing.T) {
	cat := NewCatalogue()
	doc := `
bindings:
  - name: broken
    types: [not-a-real-type]
`
	err := cat.LoadYAML(strings.NewReader(doc))
	assert.Error(t, err)
}

func keysOf(s TypeSlot) []PropertyType {
	var out []PropertyType
	for k := range s {
		out = append(out, k)
	}

	return out
}
