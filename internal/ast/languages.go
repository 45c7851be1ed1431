package ast

import (
	"path/filepath"
	"strings"
)

// LangJava is the only language methods are extracted from.
const LangJava = "java"

// IsJavaFile reports whether path names a Java source file.
func IsJavaFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".java")
}
