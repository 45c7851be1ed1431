package ast

import "strings"

// BraceBalancedBody cuts a declaration out of lines starting at start
// (0-indexed). Lines are taken whole until the first line containing '{' has
// been seen and the running count of '{' minus '}' returns to zero. Braces in
// strings and comments are counted too. The second result is the 0-indexed
// last line taken; when the braces never balance the cut runs to the end.
func BraceBalancedBody(lines []string, start int) (string, int) {
	if start < 0 || start >= len(lines) {
		return "", start
	}

	open := 0
	opened := false
	end := len(lines) - 1
	for i := start; i < len(lines); i++ {
		line := lines[i]
		open += strings.Count(line, "{")
		open -= strings.Count(line, "}")
		if !opened && strings.Contains(line, "{") {
			opened = true
		}
		if opened && open == 0 {
			end = i
			break
		}
	}
	return strings.Join(lines[start:end+1], "\n"), end
}

// splitLines splits source text on newlines, dropping a trailing '\r' from
// each line.
func splitLines(content []byte) []string {
	lines := strings.Split(string(content), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
