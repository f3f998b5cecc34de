package models

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// TargetFormat is a parsed --convert-to argument: a format name and an
// optional LibreOffice filter selection ("pdf:writer_pdf_Export").
type TargetFormat struct {
	Name   string
	Filter string
}

// ParseTargetFormat splits s on the first colon. The filter part may itself
// contain colons (filter options), so only the first one separates the name.
func ParseTargetFormat(s string) (TargetFormat, error) {
	s = strings.TrimSpace(s)
	name, filter, _ := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return TargetFormat{}, fmt.Errorf("target format %q has no format name", s)
	}
	if strings.ContainsAny(name, `/\`) {
		return TargetFormat{}, fmt.Errorf("target format %q contains a path separator", s)
	}
	return TargetFormat{Name: name, Filter: filter}, nil
}

// String returns the value passed to the converter's --convert-to flag.
func (f TargetFormat) String() string {
	if f.Filter == "" {
		return f.Name
	}
	return f.Name + ":" + f.Filter
}

// Extension is the part used when naming derived artifacts.
func (f TargetFormat) Extension() string {
	return strings.ToLower(f.Name)
}

// ConversionRequest is one upload to convert. Filename is untrusted.
type ConversionRequest struct {
	Filename string
	Content  io.Reader
	Format   TargetFormat
}

// Result is an open handle on the conversion output. The caller owns it and
// must Close it; Close releases the file and then runs the workspace cleanup.
type Result struct {
	file    *os.File
	name    string
	size    int64
	archive bool
	cleanup func() error

	closeOnce sync.Once
	closeErr  error
}

// NewResult wraps an open file. cleanup may be nil.
func NewResult(file *os.File, name string, size int64, archive bool, cleanup func() error) *Result {
	return &Result{
		file:    file,
		name:    name,
		size:    size,
		archive: archive,
		cleanup: cleanup,
	}
}

func (r *Result) Read(p []byte) (int, error) { return r.file.Read(p) }

func (r *Result) Seek(offset int64, whence int) (int64, error) {
	return r.file.Seek(offset, whence)
}

// Name is the download file name (a leaf, never a path).
func (r *Result) Name() string { return r.name }

// Size is the result size in bytes.
func (r *Result) Size() int64 { return r.size }

// Archive reports whether the result is a zip bundle of several outputs.
func (r *Result) Archive() bool { return r.archive }

// Path is the on-disk location of the result inside its workspace.
func (r *Result) Path() string { return r.file.Name() }

// Close closes the file, then removes the workspace if cleanup is configured.
// Subsequent calls return the first result.
func (r *Result) Close() error {
	r.closeOnce.Do(func() {
		err := r.file.Close()
		if r.cleanup != nil {
			err = errors.Join(err, r.cleanup())
		}
		r.closeErr = err
	})
	return r.closeErr
}

var _ io.ReadSeekCloser = (*Result)(nil)
