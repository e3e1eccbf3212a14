package country

// Similarity returns a symmetric edit-distance ratio in [0, 1] between a and
// b: (len(a)+len(b)-d) / (len(a)+len(b)) where d is the insert/delete edit
// distance. Equivalently 2*LCS/(len(a)+len(b)). Lengths are in runes. Two
// empty strings are identical.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2 * float64(lcsLength(ra, rb)) / float64(total)
}

// lcsLength computes the longest common subsequence length with two rows.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
