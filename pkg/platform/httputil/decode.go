package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"regexp"

	"github.com/go-playground/form/v4"

	dErrors "regdesk/pkg/domain-errors"
)

const (
	mediaTypeForm      = "application/x-www-form-urlencoded"
	mediaTypeMultipart = "multipart/form-data"

	maxMultipartMemory = 1 << 20
)

// Form fields are matched by their json tag so one request type serves both encodings.
var formDecoder = newFormDecoder()

func newFormDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetTagName("json")
	return d
}

// RegisterFormType installs a form decoder for a custom field type.
// Call it from init; registration is not safe alongside decoding.
func RegisterFormType(fn form.DecodeCustomTypeFunc, types ...interface{}) {
	formDecoder.RegisterCustomTypeFunc(fn, types...)
}

// IsFormMediaType reports whether the Content-Type names a browser form encoding.
func IsFormMediaType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == mediaTypeForm || mediaType == mediaTypeMultipart
}

// DecodeBody decodes a JSON or browser form body depending on Content-Type.
// Anything that is not a form encoding is treated as JSON.
func DecodeBody[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	if IsFormMediaType(r.Header.Get("Content-Type")) {
		return DecodeForm[T](w, r, logger, ctx, requestID)
	}
	return DecodeJSON[T](w, r, logger, ctx, requestID)
}

// DecodeForm decodes an url-encoded or multipart form into the target type.
// Nested keys may use either qs brackets (children[0][name]) or dots
// (children[0].name).
func DecodeForm[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := parseForm(r); err != nil {
		logger.WarnContext(ctx, "failed to parse form body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if err := formDecoder.Decode(&req, bracketsToDots(r.PostForm)); err != nil {
		logger.WarnContext(ctx, "failed to decode form body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}

func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == mediaTypeMultipart {
		return r.ParseMultipartForm(maxMultipartMemory)
	}
	return r.ParseForm()
}

// Named segments like [name] become .name; numeric indexes stay bracketed.
var namedSegment = regexp.MustCompile(`\[([^\]]*[^\]0-9][^\]]*)\]`)

func bracketsToDots(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		key := namedSegment.ReplaceAllString(k, ".$1")
		out[key] = append(out[key], v...)
	}
	return out
}

// DecodeJSON decodes a JSON request body into the target type. Fields the
// target does not declare are rejected.
// Returns the decoded value and true on success.
// On failure, writes an error response and returns nil, false.
//
// Usage:
//
//	req, ok := httputil.DecodeJSON[models.SubmitRequest](w, r, h.logger, ctx, requestID)
//	if !ok {
//	    return
//	}
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}

// Validatable is implemented by request types that support validation.
type Validatable interface {
	Validate() error
}

// Normalizable is implemented by request types that support normalization.
type Normalizable interface {
	Normalize()
}

// PrepareRequest normalizes then validates a request.
func PrepareRequest(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// DecodeAndPrepare combines body decoding with request preparation.
// It decodes the JSON or form body, then calls Normalize() and Validate()
// if the target type implements those interfaces.
//
// Usage:
//
//	req, ok := httputil.DecodeAndPrepare[models.SubmitRequest](w, r, h.logger, ctx, requestID)
//	if !ok {
//	    return
//	}
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, ok := DecodeBody[T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}

	if err := PrepareRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		// Preserve original error code if it's already a domain error
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			WriteError(w, err)
		} else {
			WriteError(w, dErrors.New(dErrors.CodeValidation, err.Error()))
		}
		return nil, false
	}

	return req, true
}
