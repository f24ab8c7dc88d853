package unionfind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSingletons(t *testing.T) {
	uf := New(3)
	require.False(t, uf.Same(0, 1))
	require.False(t, uf.Same(1, 2))
	require.Equal(t, 0, uf.Find(0))
}

func TestUnion(t *testing.T) {
	uf := New(4)
	require.True(t, uf.Union(0, 1))
	require.True(t, uf.Same(0, 1))
	require.False(t, uf.Same(0, 2))

	require.False(t, uf.Union(1, 0), "repeated union reports no change")
}

func TestTransitivity(t *testing.T) {
	uf := New(5)
	uf.Union(0, 1)
	uf.Union(1, 2)
	require.True(t, uf.Same(0, 2))
	require.False(t, uf.Same(0, 3))

	uf.Union(3, 4)
	uf.Union(2, 3)
	for i := 0; i < 5; i++ {
		require.True(t, uf.Same(0, i))
	}
}

func TestRepresentativeConsistent(t *testing.T) {
	uf := New(6)
	uf.Union(0, 1)
	uf.Union(2, 3)
	uf.Union(0, 3)

	root := uf.Find(0)
	for _, x := range []int{1, 2, 3} {
		require.Equal(t, root, uf.Find(x))
	}
}

func TestOrderIndependence(t *testing.T) {
	a := New(4)
	a.Union(0, 1)
	a.Union(2, 3)
	a.Union(1, 2)

	b := New(4)
	b.Union(2, 3)
	b.Union(1, 2)
	b.Union(0, 1)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			require.Equal(t, a.Same(i, j), b.Same(i, j))
		}
	}
}
