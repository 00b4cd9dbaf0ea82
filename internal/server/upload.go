package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// errNoRepoInZip is returned when an archive has no top-level directory.
var errNoRepoInZip = errors.New("no repo found in zip")

// maxExtractedSize caps the total decompressed bytes written for one archive.
var maxExtractedSize int64 = 4 * maxUploadSize

// extractUpload extracts a zip archive into a fresh temp dir and returns that dir
// along with the repository root, the first top-level directory by name.
// The temp dir is removed on failure.
func extractUpload(r io.ReaderAt, size int64) (string, string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", "", fmt.Errorf("invalid zip archive: %w", err)
	}

	dir, err := os.MkdirTemp("", "devinsight-upload-*")
	if err != nil {
		return "", "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := extractZip(zr, dir); err != nil {
		removeDir(dir)
		return "", "", err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		removeDir(dir)
		return "", "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			return dir, filepath.Join(dir, e.Name()), nil
		}
	}
	removeDir(dir)
	return "", "", errNoRepoInZip
}

// extractZip writes every entry of zr below dest. Entries resolving outside
// dest and symlinks are rejected, as are archives that expand beyond
// maxExtractedSize.
func extractZip(zr *zip.Reader, dest string) error {
	dest = filepath.Clean(dest)
	budget := maxExtractedSize
	for _, f := range zr.File {
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path in zip: %s", f.Name)
		}
		mode := f.Mode()
		if mode&os.ModeSymlink != 0 {
			return fmt.Errorf("symlinks are not allowed in zip: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		n, err := extractFile(f, target, budget)
		if err != nil {
			return err
		}
		budget -= n
	}
	return nil
}

// extractFile copies one entry to target and returns the bytes written.
// Reading stops one byte past budget so an oversized entry is detected
// without writing it out.
func extractFile(f *zip.File, target string, budget int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, err
	}
	src, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open zip entry %s: %w", f.Name, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(dst, io.LimitReader(src, budget+1))
	if err != nil {
		_ = dst.Close()
		return n, fmt.Errorf("failed to extract %s: %w", f.Name, err)
	}
	if n > budget {
		_ = dst.Close()
		return n, fmt.Errorf("zip archive exceeds %d bytes when decompressed", maxExtractedSize)
	}
	return n, dst.Close()
}

func removeDir(dir string) {
	_ = os.RemoveAll(dir)
}
