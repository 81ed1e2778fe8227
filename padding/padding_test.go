package padding

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedPolicy(t *testing.T) {
	f := Fixed(40)
	require.Equal(t, 40, f.Next())
	require.Equal(t, 40, f.Next())
}

func TestIMIXStaysWithinMix(t *testing.T) {
	allowedV4 := map[int]bool{8: true, 534: true, 1458: true}
	m := NewIMIX(false, rand.New(rand.NewSource(1)))
	for i := 0; i < 200; i++ {
		require.True(t, allowedV4[m.Next()])
	}

	allowedV6 := map[int]bool{0: true, 514: true, 1438: true}
	m6 := NewIMIX(true, rand.New(rand.NewSource(2)))
	for i := 0; i < 200; i++ {
		require.True(t, allowedV6[m6.Next()])
	}
}

func TestIMIXDistribution(t *testing.T) {
	m := NewIMIX(false, rand.New(rand.NewSource(42)))
	counts := map[int]int{}
	const n = 12000
	for i := 0; i < n; i++ {
		counts[m.Next()]++
	}
	// Expect roughly 7/12, 4/12, 1/12 split; allow generous tolerance.
	require.InDelta(t, float64(n)*7/12, counts[8], float64(n)*0.1)
	require.InDelta(t, float64(n)*4/12, counts[534], float64(n)*0.1)
	require.InDelta(t, float64(n)*1/12, counts[1458], float64(n)*0.1)
}
