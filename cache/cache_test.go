package cache

import (
	gocontext "context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateCachesUntilContentChanges(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	c := New(logger)

	first := c.GetOrCreate(gocontext.Background(), "a.dts", "/{};")
	require.NotNil(t, first)
	assert.Equal(t, 1, c.Len())

	second := c.GetOrCreate(gocontext.Background(), "a.dts", "/{};")
	assert.Same(t, first, second, "unchanged content should hit the cache")

	third := c.GetOrCreate(gocontext.Background(), "a.dts", "/{ n {}; };")
	assert.NotSame(t, first, third, "changed content should invalidate the cache entry")
	assert.Equal(t, 1, c.Len())
}

func TestResetClearsEntries(t *testing.T) {
	c := New(nil)

	c.GetOrCreate(gocontext.Background(), "a.dts", "/{};")
	c.GetOrCreate(gocontext.Background(), "b.dts", "/{};")
	require.Equal(t, 2, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
}
