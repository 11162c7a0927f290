package perception

import "slices"

// Vote picks the value seen most often. When several values share the top
// count the largest candidate wins; an empty set yields 0.
func Vote(candidates []int) int {
	if len(candidates) == 0 {
		return 0
	}

	counts := make(map[int]int, len(candidates))
	best, bestCount, tied := 0, 0, false
	for _, c := range candidates {
		counts[c]++
		n := counts[c]
		switch {
		case n > bestCount:
			best, bestCount, tied = c, n, false
		case n == bestCount && c != best:
			tied = true
		}
	}

	if tied {
		return slices.Max(candidates)
	}
	return best
}

// AllowedWallPrices is the closed set of wall upgrade prices shown in game.
var AllowedWallPrices = []int{
	1_000, 5_000, 10_000, 20_000, 30_000, 50_000, 75_000,
	100_000, 200_000, 500_000, 1_000_000, 1_500_000,
	2_000_000, 3_000_000, 4_000_000, 5_000_000,
	7_000_000, 10_000_000,
}

// IsAllowedWallPrice reports whether v is a real wall price.
func IsAllowedWallPrice(v int) bool {
	_, found := slices.BinarySearch(AllowedWallPrices, v)
	return found
}
