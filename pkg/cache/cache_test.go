package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qzx-dev/go-qzx/pkg/diagram"
	"github.com/qzx-dev/go-qzx/pkg/phase"
)

func TestLRUBasicOperations(t *testing.T) {
	c := New(Options{MaxSize: 4})

	c.Set("a", 1)
	c.Set("b", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, c.Len())

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestLRUOverwrite(t *testing.T) {
	c := New(Options{MaxSize: 4})
	c.Set("a", 1)
	c.Set("a", 2)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestLRUEviction(t *testing.T) {
	var evicted []string
	c := New(Options{
		MaxSize: 2,
		OnEvict: func(key string, _ interface{}) { evicted = append(evicted, key) },
	})

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a so b is least recently used
	c.Set("c", 3)

	assert.Equal(t, []string{"b"}, evicted)
	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestLRUConcurrentAccess(t *testing.T) {
	c := New(Options{MaxSize: 64})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d", j%16)
				c.Set(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, c.Len())
}

func wireDiagram(t *testing.T, dim int, p phase.Clifford) *diagram.Diagram {
	t.Helper()
	g, err := diagram.New(dim)
	require.NoError(t, err)
	in := g.AddVertexAt(diagram.Boundary, phase.Zero(dim), 0, 0)
	v := g.AddVertexAt(diagram.ZSpider, p, 0, 1)
	out := g.AddVertexAt(diagram.Boundary, phase.Zero(dim), 0, 2)
	require.NoError(t, g.AddEdge(in, v, diagram.Plain(dim, 1)))
	require.NoError(t, g.AddEdge(v, out, diagram.Plain(dim, 1)))
	g.SetInputs(in)
	g.SetOutputs(out)
	return g
}

func TestDiagramCacheRoundTrip(t *testing.T) {
	c := NewDiagramCache(8)
	g := wireDiagram(t, 3, phase.New(3, 1, 0))

	key := g.Signature()
	c.Set(key, g)

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, key, got.Signature())
	assert.Equal(t, g.NumVertices(), got.NumVertices())
}

func TestDiagramCacheCopiesOnGet(t *testing.T) {
	c := NewDiagramCache(8)
	g := wireDiagram(t, 3, phase.New(3, 1, 0))
	key := g.Signature()
	c.Set(key, g)

	first, ok := c.Get(key)
	require.True(t, ok)
	first.AddVertex(diagram.ZSpider, phase.Zero(3))

	second, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, g.NumVertices(), second.NumVertices(),
		"mutating a returned diagram must not touch the cached copy")
}

func TestDiagramCacheStats(t *testing.T) {
	c := NewDiagramCache(8)
	g := wireDiagram(t, 5, phase.New(5, 2, 1))
	key := g.Signature()

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, g)
	_, ok = c.Get(key)
	assert.True(t, ok)

	st := c.Stats()
	assert.Equal(t, 1, st.Length)
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
}
