package names

import (
	"math"
	"strings"
	"unicode"
)

// Ratio scores how alike two strings are on a 0..100 scale:
// round(200 * LCS(a, b) / (len(a) + len(b))), counted in runes. It is symmetric;
// identical strings score 100.
func Ratio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	return int(math.Round(200 * float64(lcs(ra, rb)) / float64(total)))
}

// lcs is the length of the longest common subsequence, two-row DP.
func lcs(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Fold lowercases s, turns everything that is not a letter or digit into a space and
// trims the ends, so "P.J. Washington" and "pj washington" compare closely.
func Fold(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.TrimSpace(mapped)
}
