package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Session identifies the repository snapshot an analysis runs against.
// It is created per selection and passed explicitly to every analysis call.
type Session struct {
	ID        string
	RepoRoot  string    // Absolute path of the working tree
	Source    string    // What the user selected: a path or an upload name
	CreatedAt time.Time
}

// NewSession validates root and returns a Session for it.
func NewSession(root, source string) (*Session, error) {
	if root == "" {
		return nil, ErrNoRepositorySelected
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve repository path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("repository path %q is not accessible: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository path %q is not a directory", root)
	}
	if source == "" {
		source = root
	}
	return &Session{
		ID:        uuid.NewString(),
		RepoRoot:  filepath.Clean(abs),
		Source:    source,
		CreatedAt: time.Now(),
	}, nil
}

// OpenSession is NewSession for a path that may point inside a work tree.
// When client reports an enclosing repository, the session root becomes its top
// level, so history paths and working-tree paths share the same base.
func OpenSession(ctx context.Context, client GitClient, root, source string) (*Session, error) {
	sess, err := NewSession(root, source)
	if err != nil {
		return nil, err
	}
	sess.RepoRoot = ResolveRepoRoot(ctx, client, sess.RepoRoot)
	return sess, nil
}

// ResolveRepoRoot returns the top level of the work tree containing dir, or dir
// itself when client is nil or dir is not inside a repository.
func ResolveRepoRoot(ctx context.Context, client GitClient, dir string) string {
	if client == nil {
		return dir
	}
	if gitRoot, err := client.GetRepoRoot(ctx, dir); err == nil && gitRoot != "" {
		return filepath.Clean(gitRoot)
	}
	return dir
}

// Validate returns ErrNoRepositorySelected when the session is unusable.
func (s *Session) Validate() error {
	if s == nil || s.RepoRoot == "" {
		return ErrNoRepositorySelected
	}
	return nil
}
