package pdf

import "strings"

// WrapText splits s into lines of at most limit characters. Input newlines
// are respected; each logical line is wrapped independently. Breaks happen
// at the last space within the budget, then at the last hyphen (which stays
// on the first line), then as a hard cut when a run has neither. The loop is
// iterative on purpose: pathological input must not grow the stack.
func WrapText(s string, limit int) []string {
	if limit <= 0 {
		return []string{s}
	}

	var lines []string
	for _, logical := range strings.Split(s, "\n") {
		runes := []rune(logical)
		for len(runes) > limit {
			cut := breakIndex(runes, limit)
			lines = append(lines, strings.TrimRight(string(runes[:cut]), " "))
			for cut < len(runes) && runes[cut] == ' ' {
				cut++
			}
			runes = runes[cut:]
		}
		lines = append(lines, string(runes))
	}
	return lines
}

func breakIndex(runes []rune, limit int) int {
	for i := limit; i > 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	for i := limit - 1; i > 0; i-- {
		if runes[i] == '-' {
			return i + 1
		}
	}
	return limit
}
