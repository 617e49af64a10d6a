package shikigami

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// formatCodeFrame renders the source line holding pos with carets under the
// word that starts there:
//
//	  --> line 1, column 3
//	 1 | + Y 1
//	   |   ^
func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	lineText := strings.TrimRight(lines[pos.Line-1], "\r")
	runes := []rune(lineText)
	column := min(max(pos.Column, 1), len(runes)+1)

	width := 0
	for i := column - 1; i < len(runes) && !unicode.IsSpace(runes[i]); i++ {
		width++
		if i == column-1 && strings.ContainsRune("(),;", runes[i]) {
			break
		}
	}
	width = max(width, 1)

	label := strconv.Itoa(pos.Line)
	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s%s",
		pos.Line,
		column,
		label,
		lineText,
		strings.Repeat(" ", len(label)),
		strings.Repeat(" ", column-1),
		strings.Repeat("^", width),
	)
}
