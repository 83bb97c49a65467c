package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hyperjump/datadetector/internal/detector"
	"github.com/hyperjump/datadetector/internal/extract"
)

var (
	errMissingFile = errors.New(`multipart request has no "file" part`)
	errBadForm     = errors.New("malformed multipart form")
	errBadTruncate = errors.New("truncate_rows must be a non-negative integer")
)

// upload is one spreadsheet received by the detect or features endpoints.
type upload struct {
	content      []byte
	contentType  string
	name         string
	truncateRows int
}

// mediaTypes maps request Content-Type headers onto spreadsheet formats.
var mediaTypes = map[string]extract.ContentType{
	"text/csv":                 extract.CSV,
	"application/csv":          extract.CSV,
	"application/vnd.ms-excel": extract.XLS,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": extract.XLSX,
}

// readUpload accepts either a multipart form with a "file" part or a raw body. The
// format comes from the content_type parameter, then the uploaded file name, then the
// request Content-Type header. An unresolved format is left empty for the detector to
// reject.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	truncate, err := s.truncateRows(r)
	if err != nil {
		return nil, err
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	up := &upload{
		contentType:  r.URL.Query().Get("content_type"),
		name:         r.URL.Query().Get("name"),
		truncateRows: truncate,
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, fmt.Errorf("%w: %w", errBadForm, err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return nil, errMissingFile
			}
			return nil, fmt.Errorf("read form file: %w", err)
		}
		defer file.Close()
		if up.content, err = io.ReadAll(file); err != nil {
			return nil, fmt.Errorf("read form file: %w", err)
		}
		if up.contentType == "" {
			up.contentType = r.FormValue("content_type")
		}
		if up.contentType == "" && header.Filename != "" {
			up.contentType = string(extract.ContentTypeFromPath(header.Filename))
		}
		if up.name == "" && header.Filename != "" {
			base := filepath.Base(header.Filename)
			up.name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		return up, nil
	}

	if up.content, err = io.ReadAll(r.Body); err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if up.contentType == "" {
		if ct, ok := mediaTypes[mediaType]; ok {
			up.contentType = string(ct)
		}
	}
	return up, nil
}

func (s *Server) truncateRows(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("truncate_rows")
	if raw == "" {
		return s.currentConfig().Detect.TruncateRows, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errBadTruncate
	}
	return n, nil
}

func (u *upload) options() []detector.DetectOption {
	opts := []detector.DetectOption{
		detector.WithContentType(u.contentType),
		detector.WithTruncateRows(u.truncateRows),
	}
	if u.name != "" {
		opts = append(opts, detector.WithName(u.name))
	}
	return opts
}

// statusFor maps detection and request errors onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, detector.ErrInvalidContentType),
		errors.Is(err, detector.ErrContentTypeRequired),
		errors.Is(err, errMissingFile),
		errors.Is(err, errBadForm),
		errors.Is(err, errBadTruncate):
		return http.StatusBadRequest
	case errors.Is(err, detector.ErrUnreadableInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
