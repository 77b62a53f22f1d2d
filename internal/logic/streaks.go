package logic

// StreakLevels runs the contraction phase over the hit positions of a
// sequence of length n. Level 0 is the number of hits; level k counts the
// hits that survive k rounds of "is the next hit adjacent?". A run of length
// L contributes max(L-k, 0) to level k, so levels overlap.
func StreakLevels(n int, hit func(i int) bool) []int {
	positions := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if hit(i) {
			positions = append(positions, i)
		}
	}

	var levels []int
	for len(positions) > 0 {
		levels = append(levels, len(positions))
		// Survivors are indexes into the current level, not original
		// positions: runs stay runs and the gap between runs becomes 2.
		next := make([]int, 0, len(positions))
		for i := 0; i+1 < len(positions); i++ {
			if positions[i+1]-positions[i] == 1 {
				next = append(next, i)
			}
		}
		positions = next
	}
	return levels
}

// resolveStreakLevels removes the overlap from contraction levels in place.
// Working down from the deepest level, each cleaned count is subtracted from
// every shallower level with weight 2, 3, 4... by distance. Afterwards
// levels[k] is the number of runs of length exactly k+1.
func resolveStreakLevels(levels []int) []int {
	for deep := len(levels) - 1; deep > 0; deep-- {
		for dist, shallow := 0, deep-1; shallow >= 0; dist, shallow = dist+1, shallow-1 {
			levels[shallow] -= (dist + 2) * levels[deep]
		}
	}
	return levels
}

// DetectStreaks counts maximal runs of consecutive hits by exact length.
// Each run is counted once, at its own length. Lengths with no runs are
// omitted.
func DetectStreaks(n int, hit func(i int) bool) map[int]int {
	counts := make(map[int]int)
	for k, c := range resolveStreakLevels(StreakLevels(n, hit)) {
		if c != 0 {
			counts[k+1] = c
		}
	}
	return counts
}
