//go:build cgo

package complexity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/devinsight/devinsight/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cyclomaticByName flattens analysis results for compact assertions.
func cyclomaticByName(fa *schema.FileAnalysis) map[string]int {
	out := make(map[string]int, len(fa.Functions))
	for _, fn := range fa.Functions {
		out[fn.Name] = fn.Cyclomatic
	}
	return out
}

func analyze(t *testing.T, path, source string, lang Language) *schema.FileAnalysis {
	t.Helper()
	fa, err := NewAnalyzer().AnalyzeSource(context.Background(), path, []byte(source), lang)
	require.NoError(t, err)
	return fa
}

func TestAnalyzeSource_Go(t *testing.T) {
	source := `package main

// simple does nothing.
func simple() {}

func branches(x int, ok bool) int {
	if x > 0 && ok {
		return 1
	}
	for i := 0; i < x; i++ {
	}
	switch x {
	case 1:
	case 2:
	default:
	}
	return 0
}

func outer() {
	f := func(y int) {
		if y > 0 {
		}
	}
	f(1)
}
`
	fa := analyze(t, "main.go", source, LangGo)

	assert.Equal(t, "go", fa.Language)
	require.Len(t, fa.Functions, 4)
	assert.Equal(t, map[string]int{
		"simple":      1,
		"branches":    6,
		"outer":       1, // The literal is scored on its own
		"<anonymous>": 2,
	}, cyclomaticByName(fa))
	assert.Equal(t, 22, fa.Lines, "blank and comment lines are not counted")
	assert.InDelta(t, 2.5, fa.MeanCyclomatic(), 0.001)

	assert.Equal(t, 4, fa.Functions[0].StartLine)
	assert.Equal(t, 6, fa.Functions[1].StartLine)
	assert.Equal(t, 18, fa.Functions[1].EndLine)
}

func TestAnalyzeSource_Python(t *testing.T) {
	source := `def f(a, b):
    # comment
    if a and b:
        return 1
    elif a:
        return 2
    return [x for x in b if x]


g = lambda x: x if x else 0
`
	fa := analyze(t, "f.py", source, LangPython)

	assert.Equal(t, map[string]int{"f": 6, "<anonymous>": 2}, cyclomaticByName(fa))
	assert.Equal(t, 7, fa.Lines)
}

func TestAnalyzeSource_JavaScript(t *testing.T) {
	source := `function a(x) {
  if (x || y) { return 1; }
  return x ? 2 : 3;
}
const b = (y) => y;
`
	fa := analyze(t, "a.js", source, LangJavaScript)

	assert.Equal(t, map[string]int{"a": 4, "<anonymous>": 1}, cyclomaticByName(fa))
	assert.Equal(t, 5, fa.Lines)
}

func TestAnalyzeSource_TypeScript(t *testing.T) {
	fa := analyze(t, "t.ts", "function t(x: number): number {\n  return x > 1 ? 1 : 0;\n}\n", LangTypeScript)
	assert.Equal(t, map[string]int{"t": 2}, cyclomaticByName(fa))
}

func TestAnalyzeSource_C(t *testing.T) {
	source := `int main(int argc, char **argv) {
    for (int i = 0; i < argc; i++) {
        if (argv[i] && argc > 2) { return 1; }
    }
    return 0;
}
`
	fa := analyze(t, "main.c", source, LangC)
	assert.Equal(t, map[string]int{"main": 4}, cyclomaticByName(fa))
	assert.Equal(t, 6, fa.Lines)
}

func TestAnalyzeSource_NoFunctions(t *testing.T) {
	html := analyze(t, "index.html", "<html>\n<!-- note -->\n<body><p>hi</p></body>\n</html>\n", LangHTML)
	assert.Empty(t, html.Functions)
	assert.Zero(t, html.MeanCyclomatic())
	assert.Positive(t, html.Lines)

	css := analyze(t, "site.css", "body {\n  color: red;\n}\n", LangCSS)
	assert.Empty(t, css.Functions)
	assert.Equal(t, 3, css.Lines)
}

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(path, []byte("def run():\n    return 1\n"), 0o644))

	fa, err := NewAnalyzer().AnalyzeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, fa.Path)
	assert.Equal(t, string(LangPython), fa.Language)
	assert.Len(t, fa.Functions, 1)
	assert.Equal(t, 2, fa.Lines)
}

func TestAnalyzeFile_Errors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))

	_, err := NewAnalyzer().AnalyzeFile(context.Background(), txt)
	assert.ErrorContains(t, err, "unsupported file extension")

	_, err = NewAnalyzer().AnalyzeFile(context.Background(), filepath.Join(dir, "missing.go"))
	assert.ErrorContains(t, err, "failed to read file")
}

func TestIsAvailable(t *testing.T) {
	assert.True(t, IsAvailable())
}
