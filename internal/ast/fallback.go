//go:build !cgo

package ast

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

var (
	typePattern   = regexp.MustCompile(`\b(?:class|interface|enum|record)\s+([A-Za-z_$][\w$]*)`)
	headerPattern = regexp.MustCompile(`^\s*((?:(?:public|protected|private|static|final|abstract|synchronized|native|default|strictfp)\s+)*)(?:<[^>]*>\s*)?(?:([\w.$]+(?:<[^>]*>)?(?:\[\])*)\s+)?([A-Za-z_$][\w$]*)\s*\(`)
)

// Words that can precede "name(" in a statement but never as a return type.
var statementWords = map[string]bool{
	"return": true, "new": true, "throw": true, "else": true, "case": true, "yield": true,
}

var controlWords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"synchronized": true, "try": true, "do": true, "return": true, "new": true,
}

// fallbackExtractor finds method headers line by line and cuts their bodies by
// balancing braces. It is used when tree-sitter is unavailable (CGO disabled).
type fallbackExtractor struct{}

// NewExtractor returns the regex/brace-balancing Java method extractor.
func NewExtractor() Extractor {
	slog.Warn("Tree-Sitter not available (CGO disabled), using fallback method extractor")
	return &fallbackExtractor{}
}

func (e *fallbackExtractor) Name() string {
	return "fallback"
}

func (e *fallbackExtractor) Extract(ctx context.Context, content []byte) ([]Method, error) {
	lines := splitLines(content)
	var methods []Method
	class := ""

	for i := 0; i < len(lines); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := lines[i]
		if m := typePattern.FindStringSubmatch(line); m != nil && !strings.Contains(line, "(") {
			class = m[1]
			continue
		}

		name, ok := methodHeader(line, class)
		if !ok {
			continue
		}
		body, end := BraceBalancedBody(lines, i)
		methods = append(methods, Method{
			Name:      name,
			Class:     class,
			StartLine: i + 1,
			EndLine:   end + 1,
			Body:      body,
		})
	}
	return methods, nil
}

// methodHeader reports whether line opens a method or constructor declaration
// with a body and returns its name.
func methodHeader(line, class string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") ||
		strings.HasPrefix(trimmed, "@") || strings.HasSuffix(trimmed, ";") {
		return "", false
	}

	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	modifiers, returnType, name := m[1], m[2], m[3]
	if controlWords[name] || statementWords[returnType] {
		return "", false
	}
	// A bare call like "init(x) {" only counts as a constructor.
	if returnType == "" && modifiers == "" && name != class {
		return "", false
	}
	return name, true
}
