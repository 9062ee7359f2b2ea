package highlight

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupIndicesEmpty(t *testing.T) {
	assert.Empty(t, GroupIndices(nil, 1))
	assert.Empty(t, GroupIndices([]int{}, 3))
}

func TestGroupIndicesSingle(t *testing.T) {
	groups := GroupIndices([]int{7}, 1)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{7}, groups[0])
}

func TestGroupIndices(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		maxGap  int
		want    [][]int
	}{
		{"consecutive", []int{1, 2, 3}, 1, [][]int{{1, 2, 3}}},
		{"split on gap", []int{1, 2, 5, 6, 10}, 1, [][]int{{1, 2}, {5, 6}, {10}}},
		{"wider gap joins", []int{1, 3, 5, 9}, 2, [][]int{{1, 3, 5}, {9}}},
		{"gap equal to max stays", []int{0, 4, 8}, 4, [][]int{{0, 4, 8}}},
		{"zero gap splits everything", []int{0, 1, 2}, 0, [][]int{{0}, {1}, {2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GroupIndices(tt.indices, tt.maxGap))
		})
	}
}

func TestGroupIndicesPartitionProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		seen := map[int]bool{}
		var indices []int
		for i := 0; i < rng.Intn(60); i++ {
			v := rng.Intn(300)
			if !seen[v] {
				seen[v] = true
				indices = append(indices, v)
			}
		}
		sort.Ints(indices)
		maxGap := rng.Intn(6)

		groups := GroupIndices(indices, maxGap)

		var flat []int
		for gi, g := range groups {
			require.NotEmpty(t, g)
			for k := 1; k < len(g); k++ {
				assert.LessOrEqual(t, g[k]-g[k-1], maxGap)
			}
			if gi > 0 {
				prev := groups[gi-1]
				assert.Greater(t, g[0]-prev[len(prev)-1], maxGap)
			}
			flat = append(flat, g...)
		}
		if len(indices) == 0 {
			assert.Empty(t, flat)
		} else {
			assert.Equal(t, indices, flat)
		}
	}
}

func TestIndicesAbove(t *testing.T) {
	got := IndicesAbove([]float64{0.1, 0.9, 0.5, 0.91, 0.9}, 0.5)
	assert.Equal(t, []int{1, 3, 4}, got)
}
