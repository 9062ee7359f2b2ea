package highlight

// GroupIndices splits ascending sample indices into clusters. Within a cluster
// consecutive indices differ by at most maxGap; the first index of a cluster is
// more than maxGap past the last index of the previous one.
func GroupIndices(indices []int, maxGap int) [][]int {
	if len(indices) == 0 {
		return nil
	}

	groups := make([][]int, 0, 4)
	current := []int{indices[0]}

	for _, idx := range indices[1:] {
		if idx-current[len(current)-1] <= maxGap {
			current = append(current, idx)
			continue
		}
		groups = append(groups, current)
		current = []int{idx}
	}

	return append(groups, current)
}

// IndicesAbove returns the ascending indices whose value is strictly greater
// than threshold
func IndicesAbove(values []float64, threshold float64) []int {
	var out []int
	for i, v := range values {
		if v > threshold {
			out = append(out, i)
		}
	}
	return out
}
