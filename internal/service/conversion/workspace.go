package conversion

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	originalDirName  = "original"
	convertedDirName = "converted"

	// workspacePrefixLayout prefixes workspace names so retained ones sort
	// by creation time.
	workspacePrefixLayout = "20060102-150405-"
)

// workspace is the per-request directory tree:
//
//	<base>/<timestamp-><uuid>/original/<upload>
//	                         converted/<outputs...>
//	                         <stem>.<format>.zip
type workspace struct {
	root         string
	originalDir  string
	convertedDir string
}

// newWorkspace creates a fresh workspace under base. Every directory is
// created with os.Mkdir so an existing path is an error, never reused.
// A non-nil workspace is returned whenever the root was created, so the
// caller can clean it up even if a subdirectory failed.
func newWorkspace(base string, now time.Time) (*workspace, error) {
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("prepare temp dir %s: %w", base, err)
	}

	root := filepath.Join(base, now.Format(workspacePrefixLayout)+uuid.NewString())
	if err := os.Mkdir(root, 0o700); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	ws := &workspace{
		root:         root,
		originalDir:  filepath.Join(root, originalDirName),
		convertedDir: filepath.Join(root, convertedDirName),
	}
	for _, dir := range []string{ws.originalDir, ws.convertedDir} {
		if err := os.Mkdir(dir, 0o700); err != nil {
			return ws, fmt.Errorf("create %s: %w", filepath.Base(dir), err)
		}
	}
	return ws, nil
}

// saveSource writes the upload to original/<name>. name must already be a
// sanitized leaf; anything that would land outside original/ is refused.
func (ws *workspace) saveSource(name string, content io.Reader) (string, error) {
	path := filepath.Join(ws.originalDir, name)
	if filepath.Dir(path) != ws.originalDir {
		return "", fmt.Errorf("source name %q escapes the workspace", name)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create source file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write source file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close source file: %w", err)
	}
	return path, nil
}

// outputs lists regular files under converted/, as slash-separated paths
// relative to it, in lexical order. Nested directories (e.g. extracted
// images) are descended into.
func (ws *workspace) outputs() ([]string, error) {
	var files []string
	err := filepath.WalkDir(ws.convertedDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(ws.convertedDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	return files, nil
}

// remove deletes the whole workspace. Removing an already-removed
// workspace is not an error.
func (ws *workspace) remove() error {
	if err := os.RemoveAll(ws.root); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove workspace %s: %w", ws.root, err)
	}
	return nil
}
