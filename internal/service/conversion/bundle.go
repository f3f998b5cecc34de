package conversion

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"docconv/internal/domain/models"
)

// bundleName is "<stem>.<format>.zip"; filter options never appear in it.
func bundleName(sanitized string, format models.TargetFormat) string {
	return fmt.Sprintf("%s.%s.zip", Stem(sanitized), format.Extension())
}

// bundleOutputs zips the given converted/ entries into the workspace root
// and returns the archive path. Entry names keep their relative layout.
func bundleOutputs(ws *workspace, files []string, name string) (string, error) {
	path := filepath.Join(ws.root, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}

	zw := zip.NewWriter(f)
	for _, rel := range files {
		if err := addToZip(zw, ws.convertedDir, rel); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("finish archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	return path, nil
}

func addToZip(zw *zip.Writer, dir, rel string) error {
	src := filepath.Join(dir, filepath.FromSlash(rel))

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", rel, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", rel, err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("zip header %s: %w", rel, err)
	}
	header.Name = rel
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add %s: %w", rel, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
