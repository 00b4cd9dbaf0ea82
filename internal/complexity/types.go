// Package complexity computes per-function cyclomatic complexity and non-comment
// line counts with tree-sitter grammars.
package complexity

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNoCGO is returned when complexity analysis is unavailable due to missing CGO.
var ErrNoCGO = errors.New("complexity analysis requires CGO (tree-sitter)")

// Language represents a supported programming language.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangBash       Language = "bash"
	LangHTML       Language = "html"
	LangCSS        Language = "css"
)

var extensionLanguages = map[string]Language{
	".go":   LangGo,
	".js":   LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".jsx":  LangJavaScript,
	".ts":   LangTypeScript,
	".tsx":  LangTSX,
	".py":   LangPython,
	".rs":   LangRust,
	".java": LangJava,
	".kt":   LangKotlin,
	".kts":  LangKotlin,
	".c":    LangC,
	".h":    LangC,
	".cpp":  LangCPP,
	".cc":   LangCPP,
	".cxx":  LangCPP,
	".hpp":  LangCPP,
	".cs":   LangCSharp,
	".rb":   LangRuby,
	".php":  LangPHP,
	".sh":   LangBash,
	".bash": LangBash,
	".html": LangHTML,
	".htm":  LangHTML,
	".css":  LangCSS,
}

// LanguageFromExtension maps a file extension (with dot, any case) to a Language.
func LanguageFromExtension(ext string) (Language, bool) {
	lang, ok := extensionLanguages[strings.ToLower(ext)]
	return lang, ok
}

// LanguageFromPath maps a file path to a Language by its extension.
func LanguageFromPath(path string) (Language, bool) {
	return LanguageFromExtension(filepath.Ext(path))
}

// SupportedExtensions returns every extension the analyzer understands, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// langRules describes the node types that matter for one grammar.
type langRules struct {
	functions []string // Nodes scored as their own function
	decisions []string // Nodes adding one path each
	boolean   []string // Nodes adding one path when their operator is boolean
}

// booleanOperators are the operator tokens that short-circuit.
var booleanOperators = []string{"&&", "||", "and", "or"}

// GetFunctionNodeTypes returns the node types that represent functions for a language.
func GetFunctionNodeTypes(lang Language) []string {
	return rulesFor(lang).functions
}

// GetDecisionNodeTypes returns the node types that always contribute to cyclomatic complexity.
func GetDecisionNodeTypes(lang Language) []string {
	return rulesFor(lang).decisions
}

// rulesFor returns the grammar rules of lang. Markup and stylesheet languages have
// no functions, so only their line counts are meaningful.
func rulesFor(lang Language) langRules {
	switch lang {
	case LangGo:
		return langRules{
			functions: []string{"function_declaration", "method_declaration", "func_literal"},
			decisions: []string{
				"if_statement",
				"for_statement",
				"expression_case",    // case in switch
				"type_case",          // case in type switch
				"communication_case", // case in select
			},
			boolean: []string{"binary_expression"},
		}
	case LangJavaScript, LangTypeScript, LangTSX:
		return langRules{
			functions: []string{
				"function_declaration", "function_expression", "function", "arrow_function",
				"method_definition", "generator_function_declaration", "generator_function",
			},
			decisions: []string{
				"if_statement",
				"for_statement",
				"for_in_statement",
				"while_statement",
				"do_statement",
				"switch_case",
				"catch_clause",
				"ternary_expression",
			},
			boolean: []string{"binary_expression"},
		}
	case LangPython:
		return langRules{
			functions: []string{"function_definition", "lambda"},
			decisions: []string{
				"if_statement",
				"elif_clause",
				"for_statement",
				"while_statement",
				"except_clause",
				"conditional_expression",
				"for_in_clause", // comprehension loop
				"if_clause",     // comprehension filter
			},
			boolean: []string{"boolean_operator"},
		}
	case LangRust:
		return langRules{
			functions: []string{"function_item", "closure_expression"},
			decisions: []string{
				"if_expression",
				"match_arm",
				"while_expression",
				"loop_expression",
				"for_expression",
			},
			boolean: []string{"binary_expression"},
		}
	case LangJava:
		return langRules{
			functions: []string{"method_declaration", "constructor_declaration", "lambda_expression"},
			decisions: []string{
				"if_statement",
				"for_statement",
				"enhanced_for_statement",
				"while_statement",
				"do_statement",
				"switch_block_statement_group",
				"switch_rule",
				"catch_clause",
				"ternary_expression",
			},
			boolean: []string{"binary_expression"},
		}
	case LangKotlin:
		return langRules{
			functions: []string{"function_declaration", "anonymous_function", "lambda_literal"},
			decisions: []string{
				"if_expression",
				"when_entry",
				"for_statement",
				"while_statement",
				"do_while_statement",
				"catch_block",
				"conjunction_expression", // &&
				"disjunction_expression", // ||
				"elvis_expression",       // ?:
			},
		}
	case LangC:
		return langRules{
			functions: []string{"function_definition"},
			decisions: []string{
				"if_statement",
				"for_statement",
				"while_statement",
				"do_statement",
				"case_statement",
				"conditional_expression",
			},
			boolean: []string{"binary_expression"},
		}
	case LangCPP:
		return langRules{
			functions: []string{"function_definition", "lambda_expression"},
			decisions: []string{
				"if_statement",
				"for_statement",
				"for_range_loop",
				"while_statement",
				"do_statement",
				"case_statement",
				"catch_clause",
				"conditional_expression",
			},
			boolean: []string{"binary_expression"},
		}
	case LangCSharp:
		return langRules{
			functions: []string{
				"method_declaration", "constructor_declaration", "local_function_statement",
				"lambda_expression", "anonymous_method_expression",
			},
			decisions: []string{
				"if_statement",
				"for_statement",
				"foreach_statement",
				"while_statement",
				"do_statement",
				"switch_section",
				"catch_clause",
				"conditional_expression",
			},
			boolean: []string{"binary_expression"},
		}
	case LangRuby:
		return langRules{
			functions: []string{"method", "singleton_method", "lambda"},
			decisions: []string{
				"if", "elsif", "unless", "while", "until", "for", "when", "rescue",
				"conditional", "if_modifier", "unless_modifier", "while_modifier",
				"until_modifier", "rescue_modifier",
			},
			boolean: []string{"binary"},
		}
	case LangPHP:
		return langRules{
			functions: []string{
				"function_definition", "method_declaration",
				"anonymous_function_creation_expression", "anonymous_function", "arrow_function",
			},
			decisions: []string{
				"if_statement",
				"else_if_clause",
				"for_statement",
				"foreach_statement",
				"while_statement",
				"do_statement",
				"case_statement",
				"catch_clause",
				"conditional_expression",
			},
			boolean: []string{"binary_expression"},
		}
	case LangBash:
		return langRules{
			functions: []string{"function_definition"},
			decisions: []string{
				"if_statement",
				"elif_clause",
				"for_statement",
				"c_style_for_statement",
				"while_statement",
				"case_item",
			},
			boolean: []string{"list"},
		}
	default:
		return langRules{}
	}
}

func (r langRules) isFunction(nodeType string) bool {
	return slices.Contains(r.functions, nodeType)
}
