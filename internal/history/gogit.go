package history

import (
	"context"
	"fmt"

	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GoGitProvider reads history in-process with go-git, so no git binary is needed.
type GoGitProvider struct{}

var _ contract.HistoryProvider = &GoGitProvider{} // Compile-time check

// NewGoGitProvider creates a GoGitProvider.
func NewGoGitProvider() *GoGitProvider {
	return &GoGitProvider{}
}

// Walk iterates over every commit reachable from any ref. Each commit is diffed
// against its first parent, matching the git CLI backend. repoPath must be the
// top level of the work tree: history paths are relative to it.
func (p *GoGitProvider) Walk(ctx context.Context, repoPath string, visit func(schema.Commit) error) error {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("failed to open repository %s: %w", repoPath, err)
	}

	commitIter, err := repo.Log(&git.LogOptions{All: true})
	if err != nil {
		return fmt.Errorf("failed to get commit log: %w", err)
	}
	defer commitIter.Close()

	return commitIter.ForEach(func(c *object.Commit) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		stats, err := firstParentStats(ctx, c)
		if err != nil {
			return fmt.Errorf("failed to get stats for commit %s: %w", c.Hash, err)
		}
		return visit(toCommit(c, stats))
	})
}

// firstParentStats diffs a commit against its first parent (or the empty tree
// for a root commit) with rename detection off, so a rename is reported as a
// full deletion of the old path and a full addition of the new one.
func firstParentStats(ctx context.Context, c *object.Commit) (object.FileStats, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	parentTree := &object.Tree{}
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, err
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, &object.DiffTreeOptions{DetectRenames: false})
	if err != nil {
		return nil, err
	}
	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return nil, err
	}
	return patch.Stats(), nil
}

// toCommit converts a go-git commit and its stats into the provider-neutral model.
func toCommit(c *object.Commit, stats object.FileStats) schema.Commit {
	author := c.Author.Email
	if author == "" {
		author = c.Author.Name
	}

	commit := schema.Commit{Hash: c.Hash.String(), Author: author}
	for _, st := range stats {
		commit.Files = append(commit.Files, schema.FileChange{Path: st.Name, Additions: st.Addition, Deletions: st.Deletion})
	}
	return commit
}
