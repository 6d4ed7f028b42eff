package scholar

import (
	"strconv"
	"strings"
)

// ParseCount is the cited-by policy: the trimmed text must be made only of
// ASCII decimal digits, anything else (including empty text or a value that
// overflows int) counts as 0.
func ParseCount(text string) int {
	n, ok := parseDigits(strings.TrimSpace(text))
	if !ok {
		return 0
	}
	return n
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
