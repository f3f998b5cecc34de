package domain

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
		public   string
	}{
		{
			name:     "validation",
			err:      &ValidationError{Message: "No file provided"},
			sentinel: ErrValidation,
			status:   http.StatusBadRequest,
			public:   "No file provided",
		},
		{
			name:     "unsupported format",
			err:      &UnsupportedFormatError{Format: "xlsx"},
			sentinel: ErrUnsupportedFormat,
			status:   http.StatusUnprocessableEntity,
			public:   "conversion failed, no export filter found for the format: xlsx",
		},
		{
			name:     "conversion failed",
			err:      &ConversionError{Filename: "a.docx", Format: "pdf"},
			sentinel: ErrConversionFailed,
			status:   http.StatusInternalServerError,
			public:   "conversion failed",
		},
		{
			name:     "timeout",
			err:      &TimeoutError{Format: "pdf", Timeout: 2 * time.Minute},
			sentinel: ErrTimeout,
			status:   http.StatusGatewayTimeout,
			public:   "conversion to pdf timed out after 2m0s",
		},
		{
			name:     "internal hides details",
			err:      NewInternalError("create workspace", fmt.Errorf("mkdir /tmp/x: %w", os.ErrExist)),
			sentinel: ErrInternal,
			status:   http.StatusInternalServerError,
			public:   "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)

			assert.ErrorIs(t, wrapped, tt.sentinel)

			var httpErr HTTPError
			assert.True(t, errors.As(wrapped, &httpErr))
			assert.Equal(t, tt.status, httpErr.StatusCode())
			assert.Equal(t, tt.public, PublicMessage(wrapped))
		})
	}
}

func TestInternalError_Unwraps(t *testing.T) {
	err := NewInternalError("create workspace", os.ErrExist)
	assert.ErrorIs(t, err, os.ErrExist)
	assert.Equal(t, "create workspace: file already exists", err.Error())
}

func TestPublicMessage_UnknownError(t *testing.T) {
	assert.Equal(t, "internal server error", PublicMessage(errors.New("open /secret/path")))
}
