package contract

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/devinsight/devinsight/schema"
	"github.com/fatih/color"
)

// Color variables for console output.
var (
	HighColor   = color.New(color.FgRed, color.Bold) // HighColor represents standard danger.
	MediumColor = color.New(color.FgYellow)          // MediumColor stands in for orange, which ANSI lacks.
	LowColor    = color.New(color.FgGreen)           // LowColor represents a healthy file.
)

// GetColorLabel returns a colored risk label for console output (table).
func GetColorLabel(level schema.RiskLevel) string {
	text := string(level)

	switch level {
	case schema.HighRisk:
		return HighColor.Sprint(text)
	case schema.MediumRisk:
		return MediumColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given normalized path matches any of the exclude patterns.
// Patterns containing glob characters are matched with doublestar semantics, against the
// full path and against the base name. Patterns ending with '/' match a leading directory
// or any directory segment. Patterns starting with '.' are suffix (extension) matches.
// Anything else is a substring match. Examples: "vendor/", "**/*.min.js", ".lock".
func ShouldIgnore(p string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[{") {
			if ok, err := doublestar.Match(ex, p); err == nil && ok {
				return true
			}
			if ok, err := doublestar.Match(ex, path.Base(p)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(p, ex) || strings.Contains(p, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(p, ex) {
				return true
			}
		case strings.Contains(p, ex):
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// NormalizePath is the single path normalization used across the analysis:
// cleaned, forward slashes, no leading "./", lowercase.
func NormalizePath(p string) string {
	if p == "" {
		return ""
	}
	normalized := filepath.ToSlash(filepath.Clean(p))
	normalized = strings.TrimPrefix(normalized, "./")
	if normalized == "." {
		return ""
	}
	return strings.ToLower(normalized)
}

// RelativeNormalizedPath makes p relative to root (when absolute) and normalizes it.
// Paths outside root are returned normalized but unchanged.
func RelativeNormalizedPath(root, p string) string {
	if filepath.IsAbs(p) && root != "" {
		if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	return NormalizePath(p)
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SplitList splits a comma-separated list, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseExtensions turns "py, .Java,go" into [".py", ".java", ".go"].
// Duplicates are dropped and the input order is kept.
func ParseExtensions(s string) []string {
	var out []string
	for _, item := range SplitList(s) {
		ext := "." + strings.ToLower(strings.TrimLeft(item, "."))
		if ext == "." || slices.Contains(out, ext) {
			continue
		}
		out = append(out, ext)
	}
	return out
}

// HasExtension reports whether p ends with one of the normalized extensions.
// An empty extension list matches everything.
func HasExtension(p string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	return slices.Contains(exts, strings.ToLower(filepath.Ext(p)))
}
