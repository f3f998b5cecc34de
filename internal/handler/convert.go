package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"docconv/internal/config"
	"docconv/internal/domain"
	"docconv/internal/domain/models"
	"docconv/internal/domain/services"
	"docconv/internal/formats"
	"docconv/internal/httputil"

	"github.com/gabriel-vasile/mimetype"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

//go:embed templates/convert.html
var templateFiles embed.FS

var convertPage = template.Must(template.ParseFS(templateFiles, "templates/convert.html"))

// ConvertHandler serves the upload form and the conversion endpoint
type ConvertHandler struct {
	converter services.Converter
	config    *config.Config
	formats   []formats.Format
	logger    *slog.Logger
}

// NewConvertHandler creates a new convert handler
func NewConvertHandler(converter services.Converter, cfg *config.Config, registry *formats.Registry, logger *slog.Logger) *ConvertHandler {
	return &ConvertHandler{
		converter: converter,
		config:    cfg,
		formats:   registry.Allowed(cfg.AllowedFormats),
		logger:    logger,
	}
}

// uploadRequest is the multipart form of POST /v1/convert
type uploadRequest struct {
	File   *multipart.FileHeader
	Format string
}

// Index redirects to the upload form
func (h *ConvertHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/v1/convert", http.StatusFound)
}

// Form renders the upload form listing the allowed formats
func (h *ConvertHandler) Form(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := convertPage.Execute(&buf, struct {
		Formats []formats.Format
		MaxSize string
	}{
		Formats: h.formats,
		MaxSize: humanSize(h.config.MaxContentLength),
	})
	if err != nil {
		h.logger.Error("failed to render upload form", "error", err)
		httputil.RespondError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// Convert converts the uploaded file and streams the result back as an attachment
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if err := httputil.ParseUpload(w, r, h.config.MaxContentLength); err != nil {
		if errors.Is(err, httputil.ErrBodyTooLarge) {
			httputil.RespondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File too large, the limit is %s", humanSize(h.config.MaxContentLength)))
			return
		}
		h.logger.Debug("invalid upload form", "error", err)
		httputil.RespondError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	req := uploadRequest{
		File:   httputil.FormFile(r, "file"),
		Format: strings.TrimSpace(r.FormValue("format_to")),
	}
	format, err := h.validate(&req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	src, err := req.File.Open()
	if err != nil {
		h.logger.Error("failed to open upload", "error", err)
		handleError(w, r, domain.NewInternalError("open upload", err))
		return
	}
	defer src.Close()

	result, err := h.converter.Convert(r.Context(), &models.ConversionRequest{
		Filename: req.File.Filename,
		Content:  src,
		Format:   format,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer result.Close()

	h.sendResult(w, r, result)
}

// validate checks the form in the order a client fixes it: file, format, allow list.
func (h *ConvertHandler) validate(req *uploadRequest) (models.TargetFormat, error) {
	if err := validation.Validate(req.File, validation.NotNil.Error("No file provided")); err != nil {
		return models.TargetFormat{}, &domain.ValidationError{Message: err.Error()}
	}
	if err := validation.Validate(req.Format, validation.Required.Error("No format provided")); err != nil {
		return models.TargetFormat{}, &domain.ValidationError{Message: err.Error()}
	}

	invalid := &domain.ValidationError{Message: "Invalid format: " + req.Format}
	format, err := models.ParseTargetFormat(req.Format)
	if err != nil {
		return models.TargetFormat{}, invalid
	}
	if !h.config.IsAllowed(req.Format) && !h.config.IsAllowed(format.Name) {
		return models.TargetFormat{}, invalid
	}
	return format, nil
}

func (h *ConvertHandler) sendResult(w http.ResponseWriter, r *http.Request, result *models.Result) {
	contentType, err := detectContentType(result)
	if err != nil {
		h.logger.Error("failed to read result", "error", err, "result", result.Name())
		handleError(w, r, domain.NewInternalError("read result", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": result.Name(),
	}))
	w.Header().Set("Content-Length", strconv.FormatInt(result.Size(), 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, result); err != nil {
		// Headers are gone; all we can do is record it
		h.logger.Warn("failed to stream result",
			"error", err,
			"result", result.Name(),
			"request_id", httputil.GetRequestID(r),
		)
	}
}

// detectContentType sniffs the result and rewinds it. Formats that sniff as
// generic binary or text fall back to the extension's registered type.
func detectContentType(result *models.Result) (string, error) {
	mtype, err := mimetype.DetectReader(result)
	if err != nil {
		return "", err
	}
	if _, err := result.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	generic := mtype.Is("application/octet-stream") || mtype.Is("text/plain")
	if generic || (mtype.Is("application/zip") && !result.Archive()) {
		if byExt := mime.TypeByExtension(filepath.Ext(result.Name())); byExt != "" {
			return byExt, nil
		}
	}
	return mtype.String(), nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
