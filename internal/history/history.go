// Package history walks the commit history of a repository and reports per-commit
// file changes in a provider-neutral form.
package history

import (
	"fmt"

	"github.com/devinsight/devinsight/internal/contract"
	"github.com/devinsight/devinsight/schema"
)

// New returns the HistoryProvider for the given backend.
// The git CLI backend needs a client; a nil client falls back to the local git binary.
func New(backend schema.HistoryBackend, client contract.GitClient) (contract.HistoryProvider, error) {
	switch backend {
	case schema.GitCLIBackend, "":
		if client == nil {
			client = contract.NewLocalGitClient()
		}
		return NewLogProvider(client), nil
	case schema.GoGitBackend:
		return NewGoGitProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", backend)
	}
}
