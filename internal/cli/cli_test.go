package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docconv/internal/config"
	"docconv/internal/domain"
	"docconv/internal/domain/models"
	"docconv/internal/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConverter struct {
	t        *testing.T
	err      error
	probeErr error

	gotCfg    *config.Config
	gotFormat models.TargetFormat
}

func (s *stubConverter) Convert(_ context.Context, req *models.ConversionRequest) (*models.Result, error) {
	s.gotFormat = req.Format
	if s.err != nil {
		return nil, s.err
	}
	content, err := io.ReadAll(req.Content)
	require.NoError(s.t, err)

	name := strings.TrimSuffix(req.Filename, filepath.Ext(req.Filename)) + "." + req.Format.Extension()
	path := filepath.Join(s.t.TempDir(), name)
	require.NoError(s.t, os.WriteFile(path, append([]byte("converted:"), content...), 0o600))
	f, err := os.Open(path)
	require.NoError(s.t, err)
	return models.NewResult(f, name, int64(len(content))+10, false, nil), nil
}

func (s *stubConverter) Probe(context.Context) (string, error) {
	if s.probeErr != nil {
		return "", s.probeErr
	}
	return "LibreOffice 7.6.4.1 40(Build:1)", nil
}

func run(t *testing.T, conv *stubConverter, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APP_TEMP_DIR", t.TempDir())

	a := &app{
		newConverter: func(cfg *config.Config, _ *slog.Logger) services.Converter {
			conv.gotCfg = cfg
			return conv
		},
	}
	cmd := newRootCmd(a)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestConvertCmd_WritesResult(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "report.docx")
	require.NoError(t, os.WriteFile(input, []byte("hello"), 0o644))
	output := filepath.Join(dir, "out.pdf")

	conv := &stubConverter{t: t}
	out, err := run(t, conv, "convert", input, "--to", "pdf:writer_pdf_Export", "-o", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "converted:hello", string(data))
	assert.Contains(t, out, "-> "+output)

	assert.Equal(t, "pdf", conv.gotFormat.Name)
	assert.Equal(t, "writer_pdf_Export", conv.gotFormat.Filter)
	assert.True(t, conv.gotCfg.DeleteFiles)
}

func TestConvertCmd_DefaultsToResultName(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.odt")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0o644))
	chdir(t, dir)

	_, err := run(t, &stubConverter{t: t}, "convert", input, "--to", "docx")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "notes.docx"))
}

func TestConvertCmd_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.docx")
	output := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(input, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(output, []byte("old"), 0o644))

	_, err := run(t, &stubConverter{t: t}, "convert", input, "--to", "pdf", "-o", output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = run(t, &stubConverter{t: t}, "convert", input, "--to", "pdf", "-o", output, "--force")
	require.NoError(t, err)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "converted:new", string(data))
}

func TestConvertCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.docx")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0o644))

	_, err := run(t, &stubConverter{t: t}, "convert", input)
	assert.Error(t, err, "--to is required")

	_, err = run(t, &stubConverter{t: t}, "convert", filepath.Join(dir, "missing.docx"), "--to", "pdf")
	assert.Error(t, err)

	_, err = run(t, &stubConverter{t: t, err: &domain.UnsupportedFormatError{Format: "xlsx"}}, "convert", input, "--to", "xlsx")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestFormatsCmd(t *testing.T) {
	t.Setenv("APP_ALLOWED_FORMATS", "pdf,custom")

	out, err := run(t, &stubConverter{t: t}, "formats")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "FORMAT"))
	assert.Contains(t, lines[1], "Portable Document Format")
	assert.Contains(t, lines[2], "(not in catalog)")
}

func TestDoctorCmd(t *testing.T) {
	out, err := run(t, &stubConverter{t: t}, "doctor", "--binary", "soffice")
	require.NoError(t, err)
	assert.Contains(t, out, "converter: soffice")
	assert.Contains(t, out, "ok   LibreOffice 7.6.4.1")
	assert.Contains(t, out, "ok   writable")
}

func TestDoctorCmd_ConverterMissing(t *testing.T) {
	out, err := run(t, &stubConverter{t: t, probeErr: errors.New("exec: \"soffice\": not found")}, "doctor")
	require.Error(t, err)
	assert.Contains(t, out, "FAIL")
}

func TestRootCmd_RejectsInvalidConfig(t *testing.T) {
	t.Setenv("APP_CONVERSION_TIMEOUT", "10ms")

	_, err := run(t, &stubConverter{t: t}, "formats")
	assert.Error(t, err)
}
