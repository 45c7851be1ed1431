// Package ast extracts method declarations from Java source files.
package ast

import "context"

// Method is a method or constructor declared in a Java source file.
type Method struct {
	Name      string
	Class     string // innermost enclosing type, empty if unknown
	StartLine int    // 1-indexed
	EndLine   int
	Body      string // declaration text from its first line through the closing brace
}

// Extractor finds the methods declared in a source file.
type Extractor interface {
	// Extract returns every method in file order.
	Extract(ctx context.Context, content []byte) ([]Method, error)

	// Name identifies the implementation in logs.
	Name() string
}

// FindMethod returns the first method called name, in file order. Overloads
// after the first are never returned.
func FindMethod(methods []Method, name string) (Method, bool) {
	for _, m := range methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}
