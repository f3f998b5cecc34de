package httputil

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("format_to", "pdf"))
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/v1/convert", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestParseUpload(t *testing.T) {
	r := multipartRequest(t, "report.docx", []byte("hello"))
	w := httptest.NewRecorder()

	require.NoError(t, ParseUpload(w, r, 1<<20))
	defer r.MultipartForm.RemoveAll()

	fh := FormFile(r, "file")
	require.NotNil(t, fh)
	assert.Equal(t, "report.docx", fh.Filename)
	assert.Equal(t, "pdf", r.FormValue("format_to"))
}

func TestParseUpload_TooLarge(t *testing.T) {
	r := multipartRequest(t, "big.docx", bytes.Repeat([]byte("x"), 4096))
	w := httptest.NewRecorder()

	err := ParseUpload(w, r, 1024)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestParseUpload_NoFile(t *testing.T) {
	r := multipartRequest(t, "", nil)
	w := httptest.NewRecorder()

	require.NoError(t, ParseUpload(w, r, 1<<20))
	assert.Nil(t, FormFile(r, "file"))
}

func TestParseUpload_NotMultipart(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/convert", strings.NewReader("format_to=pdf"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	require.NoError(t, ParseUpload(w, r, 1<<20))
	assert.Nil(t, FormFile(r, "file"))
	assert.Equal(t, "pdf", r.FormValue("format_to"))
}
