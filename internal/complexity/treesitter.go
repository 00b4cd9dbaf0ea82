//go:build cgo

package complexity

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Parser wraps tree-sitter for multi-language parsing.
// A Parser is not safe for concurrent use.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new tree-sitter parser.
func NewParser() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Parse parses source code and returns the syntax tree. The caller closes the tree.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (*sitter.Tree, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree, nil
}

// Close releases the underlying parser.
func (p *Parser) Close() {
	p.parser.Close()
}

// getLanguage returns the tree-sitter Language for a given language identifier.
func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangKotlin:
		return kotlin.GetLanguage(), nil
	case LangC:
		return c.GetLanguage(), nil
	case LangCPP:
		return cpp.GetLanguage(), nil
	case LangCSharp:
		return csharp.GetLanguage(), nil
	case LangRuby:
		return ruby.GetLanguage(), nil
	case LangPHP:
		return php.GetLanguage(), nil
	case LangBash:
		return bash.GetLanguage(), nil
	case LangHTML:
		return html.GetLanguage(), nil
	case LangCSS:
		return css.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}
