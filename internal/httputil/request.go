package httputil

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
)

// ErrBodyTooLarge is returned by ParseUpload when the body exceeds the limit.
var ErrBodyTooLarge = errors.New("request body too large")

// multipartMemory is how much of a multipart body is held in memory before
// file parts spill to temporary files.
const multipartMemory = 1 << 20

// ParseUpload limits the request body to limit bytes and parses it as
// multipart/form-data. A body that is not multipart parses as an empty form.
// The caller must call r.MultipartForm.RemoveAll when it is non-nil.
func ParseUpload(w http.ResponseWriter, r *http.Request, limit int64) error {
	// Requires w so the server closes the connection after a 413
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			// plain form posts carry no file; callers report that themselves
			return nil
		}
		return fmt.Errorf("invalid form: %w", err)
	}
	return nil
}

// FormFile returns the named file part, or nil when the form has none or
// the part has an empty filename.
func FormFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 || files[0].Filename == "" {
		return nil
	}
	return files[0]
}
