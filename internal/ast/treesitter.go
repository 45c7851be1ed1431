//go:build cgo

package ast

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

type treeSitterExtractor struct {
	parser *sitter.Parser
	mu     sync.Mutex
}

// NewExtractor returns a tree-sitter backed Java method extractor.
func NewExtractor() Extractor {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	return &treeSitterExtractor{parser: parser}
}

func (e *treeSitterExtractor) Name() string {
	return "tree-sitter"
}

func (e *treeSitterExtractor) Extract(ctx context.Context, content []byte) ([]Method, error) {
	e.mu.Lock()
	tree, err := e.parser.ParseCtx(ctx, nil, content)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("parse java: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("failed to parse content")
	}

	lines := splitLines(content)
	var methods []Method
	var traverse func(n *sitter.Node, class string)

	traverse = func(n *sitter.Node, class string) {
		switch n.Type() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			if name := n.ChildByFieldName("name"); name != nil {
				class = name.Content(content)
			}
		case "method_declaration", "constructor_declaration":
			if m, ok := convertMethod(n, class, content, lines); ok {
				methods = append(methods, m)
			}
		}

		count := int(n.NamedChildCount())
		for i := 0; i < count; i++ {
			if child := n.NamedChild(i); child != nil {
				traverse(child, class)
			}
		}
	}

	traverse(root, "")
	return methods, nil
}

func convertMethod(n *sitter.Node, class string, content []byte, lines []string) (Method, bool) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return Method{}, false
	}

	start := int(n.StartPoint().Row)
	m := Method{
		Name:      name.Content(content),
		Class:     class,
		StartLine: start + 1, // 0-indexed to 1-indexed
		EndLine:   int(n.EndPoint().Row) + 1,
	}

	// Abstract and interface methods have no body to balance braces over.
	if n.ChildByFieldName("body") == nil {
		m.Body = n.Content(content)
		return m, true
	}

	body, end := BraceBalancedBody(lines, start)
	m.Body = body
	m.EndLine = end + 1
	return m, true
}
