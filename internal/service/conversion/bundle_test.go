package conversion

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"docconv/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleName(t *testing.T) {
	tests := []struct {
		filename string
		format   string
		want     string
	}{
		{filename: "report.docx", format: "html", want: "report.html.zip"},
		{filename: "report.docx", format: "html:XHTML Writer File:UTF8", want: "report.html.zip"},
		{filename: "slides.pptx", format: "PNG", want: "slides.png.zip"},
		{filename: "passwd", format: "pdf", want: "passwd.pdf.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			format, err := models.ParseTargetFormat(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bundleName(tt.filename, format))
		})
	}
}

func TestBundleOutputs_RoundTrip(t *testing.T) {
	ws, err := newWorkspace(t.TempDir(), time.Now())
	require.NoError(t, err)

	want := map[string]string{
		"report.html":         "<html>body</html>",
		"report_html_m1.png":  "\x89PNG fake image",
		"images/embedded.svg": "<svg/>",
	}
	for rel, content := range want {
		path := filepath.Join(ws.convertedDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	files, err := ws.outputs()
	require.NoError(t, err)
	require.Len(t, files, 3)

	path, err := bundleOutputs(ws, files, "report.html.zip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.root, "report.html.zip"), path)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	got := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		got[f.Name] = string(data)
	}
	assert.Equal(t, want, got)
}

func TestBundleOutputs_RefusesExistingArchive(t *testing.T) {
	ws, err := newWorkspace(t.TempDir(), time.Now())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(ws.convertedDir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(ws.root, "a.txt.zip"), nil, 0o644))

	_, err = bundleOutputs(ws, []string{"a.txt"}, "a.txt.zip")
	assert.ErrorIs(t, err, os.ErrExist)
}
