package rendercache_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jp-knj/jetmd/pkg/rendercache"
)

func openCache(t *testing.T) *rendercache.Cache {
	t.Helper()
	c, err := rendercache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_PutGet(t *testing.T) {
	t.Parallel()

	c := openCache(t)
	key := rendercache.Key([]byte("# doc"), "gfm=true")

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(key, "<h1>doc</h1>\n"))

	html, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<h1>doc</h1>\n", html)
}

func TestCache_KeyVariesWithOptions(t *testing.T) {
	t.Parallel()

	src := []byte("# doc")
	a := rendercache.Key(src, "gfm=true")
	b := rendercache.Key(src, "gfm=false")
	c := rendercache.Key([]byte("# other"), "gfm=true")

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, rendercache.Key(src, "gfm=true"))
}

func TestCache_Purge(t *testing.T) {
	t.Parallel()

	c := openCache(t)
	key := rendercache.Key([]byte("x"), "")
	require.NoError(t, c.Put(key, "y"))
	require.NoError(t, c.Purge())

	_, ok, err := c.Get(key)
	require.NoError(t, err)
	assert.False(t, ok)
}
