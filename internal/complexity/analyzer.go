//go:build cgo

package complexity

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
	sitter "github.com/smacker/go-tree-sitter"
)

// Analyzer computes complexity metrics for source files.
// It is safe for concurrent use; every call parses with its own Parser.
type Analyzer struct{}

var _ contract.AnalysisEngine = &Analyzer{} // Compile-time check

// NewAnalyzer creates a new complexity analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// AnalyzeFile analyzes a source file. Unsupported extensions and unreadable files
// are errors.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*schema.FileAnalysis, error) {
	lang, ok := LanguageFromPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported file extension: %s", path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return a.AnalyzeSource(ctx, path, source, lang)
}

// AnalyzeSource analyzes source code and returns complexity metrics.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, source []byte, lang Language) (*schema.FileAnalysis, error) {
	parser := NewParser()
	defer parser.Close()

	tree, err := parser.Parse(ctx, source, lang)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	root := tree.RootNode()

	fa := &schema.FileAnalysis{
		Path:      path,
		Language:  string(lang),
		Functions: make([]schema.FunctionComplexity, 0),
		Lines:     countCodeLines(root, source),
	}

	rules := rulesFor(lang)
	for _, fn := range findNodes(root, rules.functions) {
		fa.Functions = append(fa.Functions, schema.FunctionComplexity{
			Name:       getFunctionName(fn, source),
			StartLine:  int(fn.StartPoint().Row) + 1,
			EndLine:    int(fn.EndPoint().Row) + 1,
			Cyclomatic: computeCyclomaticComplexity(fn, source, rules),
		})
	}
	return fa, nil
}

// getFunctionName extracts the function name from a node.
func getFunctionName(node *sitter.Node, source []byte) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return nameNode.Content(source)
	}

	// C and C++ nest the name inside declarators.
	decl := node.ChildByFieldName("declarator")
	for decl != nil {
		if inner := decl.ChildByFieldName("declarator"); inner != nil {
			decl = inner
			continue
		}
		return decl.Content(source)
	}

	// Kotlin has no name field.
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child != nil && child.Type() == "simple_identifier" {
			return child.Content(source)
		}
	}

	switch node.Type() {
	case "arrow_function", "func_literal", "lambda", "lambda_expression", "function_expression", "function",
		"closure_expression", "lambda_literal", "anonymous_function", "anonymous_method_expression",
		"anonymous_function_creation_expression", "generator_function":
		return "<anonymous>"
	}
	return "<unknown>"
}

// computeCyclomaticComplexity counts decision points + 1 inside a function.
// Nested functions are scored on their own and do not add to the enclosing one.
func computeCyclomaticComplexity(fn *sitter.Node, source []byte, rules langRules) int {
	complexity := 1 // Base complexity

	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child == nil || rules.isFunction(child.Type()) {
				continue
			}
			if isDecision(child, source, rules) {
				complexity++
			}
			walk(child)
		}
	}
	walk(fn)
	return complexity
}

// isDecision reports whether a node adds an independent path.
func isDecision(node *sitter.Node, source []byte, rules langRules) bool {
	nodeType := node.Type()
	if slices.Contains(rules.decisions, nodeType) {
		return true
	}
	if slices.Contains(rules.boolean, nodeType) {
		return isBooleanOperator(node, source)
	}
	return false
}

// isBooleanOperator checks if a binary node joins its operands with &&, ||, and, or.
func isBooleanOperator(node *sitter.Node, source []byte) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || child.IsNamed() {
			continue
		}
		if slices.Contains(booleanOperators, child.Content(source)) {
			return true
		}
	}
	return false
}

// countCodeLines counts source lines holding at least one non-comment token.
// String-like nodes count every line they span.
func countCodeLines(root *sitter.Node, source []byte) int {
	rows := make(map[uint32]struct{})

	mark := func(node *sitter.Node) {
		start, end := node.StartPoint(), node.EndPoint()
		last := end.Row
		if end.Column == 0 && last > start.Row {
			last-- // Token ends with a newline
		}
		for r := start.Row; r <= last; r++ {
			rows[r] = struct{}{}
		}
	}

	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		nodeType := node.Type()
		if strings.Contains(nodeType, "comment") {
			return
		}
		if isStringLike(nodeType) && node.StartPoint().Row != node.EndPoint().Row {
			mark(node)
			return
		}
		if node.ChildCount() == 0 {
			if strings.TrimSpace(node.Content(source)) != "" {
				mark(node)
			}
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child != nil {
				walk(child)
			}
		}
	}
	walk(root)
	return len(rows)
}

// isStringLike reports whether a node type is a (possibly multi-line) literal.
func isStringLike(nodeType string) bool {
	return strings.Contains(nodeType, "string") || strings.Contains(nodeType, "heredoc") ||
		nodeType == "template_string" || nodeType == "text_block"
}

// findNodes finds all nodes of the given types in the AST, outermost first.
func findNodes(root *sitter.Node, types []string) []*sitter.Node {
	if len(types) == 0 {
		return nil
	}
	var result []*sitter.Node

	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if slices.Contains(types, node.Type()) {
			result = append(result, node)
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return result
}

// IsAvailable returns whether complexity analysis is available.
// Returns true when CGO is enabled.
func IsAvailable() bool {
	return true
}
