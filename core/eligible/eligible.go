// Package eligible decides which files take part in churn and complexity analysis.
package eligible

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/devinsight/devinsight/internal/contract"
)

// sniffSize is how many leading bytes are inspected for the ASCII check.
const sniffSize = 1024

// Options configures a Filter. Empty lists fall back to the defaults in contract.
type Options struct {
	AllowedExtensions []string // ".ext" form, case-insensitive
	ExcludedDirs      []string // Directory names, case-insensitive
	Excludes          []string // Extra glob patterns, see contract.ShouldIgnore
}

// Filter is the single eligibility rule shared by churn and complexity extraction.
type Filter struct {
	root     string
	allowed  map[string]struct{}
	excluded map[string]struct{}
	excludes []string
}

var _ contract.EligibilityFilter = &Filter{} // Compile-time check

// New creates a Filter for the repository rooted at root.
func New(root string, opts Options) *Filter {
	allowed := opts.AllowedExtensions
	if len(allowed) == 0 {
		allowed = contract.DefaultAllowedExtensions
	}
	excluded := opts.ExcludedDirs
	if len(excluded) == 0 {
		excluded = contract.DefaultExcludedDirs
	}

	f := &Filter{
		root:     filepath.Clean(root),
		allowed:  make(map[string]struct{}, len(allowed)),
		excluded: make(map[string]struct{}, len(excluded)),
		excludes: opts.Excludes,
	}
	for _, ext := range allowed {
		f.allowed[strings.ToLower(ext)] = struct{}{}
	}
	for _, dir := range excluded {
		f.excluded[strings.ToLower(dir)] = struct{}{}
	}
	return f
}

// FromConfig creates a Filter using the file rules of cfg.
func FromConfig(root string, cfg *contract.Config) *Filter {
	return New(root, Options{
		AllowedExtensions: cfg.AllowedExtensions,
		ExcludedDirs:      cfg.ExcludedDirs,
		Excludes:          cfg.Excludes,
	})
}

// Root returns the repository root the filter evaluates paths against.
func (f *Filter) Root() string {
	return f.root
}

// IsEligible reports whether path (absolute, or relative to the root) should be analyzed.
// A file qualifies when it resolves to a regular file, no directory segment below the
// root is on the deny-list, its extension is allowed, it matches no exclude pattern and
// its first bytes are ASCII. Any I/O error makes the file ineligible.
func (f *Filter) IsEligible(path string) bool {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(f.root, path)
	}

	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	rel, err := filepath.Rel(f.root, abs)
	if err != nil {
		rel = abs
	}
	rel = filepath.ToSlash(rel)

	if f.inExcludedDir(rel) {
		return false
	}
	if _, ok := f.allowed[strings.ToLower(filepath.Ext(abs))]; !ok {
		return false
	}
	if len(f.excludes) > 0 && contract.ShouldIgnore(contract.NormalizePath(rel), f.excludes) {
		return false
	}
	return isASCII(abs)
}

// IsExcludedDir reports whether a directory name is on the deny-list.
func (f *Filter) IsExcludedDir(name string) bool {
	_, ok := f.excluded[strings.ToLower(name)]
	return ok
}

// inExcludedDir checks every directory segment of a slash-separated relative path.
func (f *Filter) inExcludedDir(rel string) bool {
	segments := strings.Split(rel, "/")
	for _, seg := range segments[:len(segments)-1] {
		if f.IsExcludedDir(seg) {
			return true
		}
	}
	return false
}

// isASCII reports whether the first sniffSize bytes of the file are 7-bit ASCII.
// An empty file counts as ASCII.
func isASCII(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = file.Close() }()

	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false
	}
	for _, b := range buf[:n] {
		if b >= 0x80 {
			return false
		}
	}
	return true
}
