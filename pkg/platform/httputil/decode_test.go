package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	dErrors "regdesk/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactRequest struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

type validatingRequest struct {
	Email string `json:"email"`
}

func (r *validatingRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

// normalizingRequest records the order preparation hooks ran in.
type normalizingRequest struct {
	Email string `json:"email"`
	calls []string
}

func (r *normalizingRequest) Normalize() {
	r.calls = append(r.calls, "normalize")
}

func (r *normalizingRequest) Validate() error {
	r.calls = append(r.calls, "validate")
	return nil
}

type domainErrorRequest struct {
	ID string `json:"id"`
}

func (r *domainErrorRequest) Validate() error {
	if r.ID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDecodeJSON(t *testing.T) {
	logger := discardLogger()
	ctx := context.Background()

	t.Run("successful decode", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"fullName":"Anna Joseph","phone":"9000000000"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[contactRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "Anna Joseph", result.FullName)
		assert.Equal(t, "9000000000", result.Phone)
	})

	t.Run("invalid JSON returns bad_request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{invalid json}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[contactRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeEnvelope(t, w)["error"])
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"fullName":"Anna","isAdmin":true}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[contactRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty body returns error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(""))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[contactRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

type householdRequest struct {
	FullName string        `json:"fullName"`
	Members  []memberInput `json:"members"`
}

type memberInput struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func formRequest(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestDecodeForm(t *testing.T) {
	logger := discardLogger()
	ctx := context.Background()

	t.Run("url-encoded fields match json tags", func(t *testing.T) {
		req := formRequest("fullName=Anna+Joseph&phone=9000000000", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		result, ok := DecodeBody[contactRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "Anna Joseph", result.FullName)
		assert.Equal(t, "9000000000", result.Phone)
	})

	t.Run("bracket and dot nesting", func(t *testing.T) {
		form := url.Values{
			"fullName":         {"Anna"},
			"members[0][name]": {"Mia"},
			"members[0][age]":  {"7"},
			"members[1].name":  {"Leo"},
			"members[1].age":   {"4"},
		}
		req := formRequest(form.Encode(), "application/x-www-form-urlencoded; charset=utf-8")
		w := httptest.NewRecorder()

		result, ok := DecodeBody[householdRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, []memberInput{{Name: "Mia", Age: 7}, {Name: "Leo", Age: 4}}, result.Members)
	})

	t.Run("multipart form", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("fullName", "Anna"))
		require.NoError(t, mw.WriteField("phone", "123"))
		require.NoError(t, mw.Close())
		req := formRequest(buf.String(), mw.FormDataContentType())
		w := httptest.NewRecorder()

		result, ok := DecodeBody[contactRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "Anna", result.FullName)
		assert.Equal(t, "123", result.Phone)
	})

	t.Run("unparseable value returns bad_request", func(t *testing.T) {
		req := formRequest("members[0][age]=seven", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		result, ok := DecodeBody[householdRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeEnvelope(t, w)["error"])
	})

	t.Run("form body runs preparation hooks", func(t *testing.T) {
		req := formRequest("email=", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[validatingRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, "email is required", decodeEnvelope(t, w)["error_description"])
	})
}

func TestIsFormMediaType(t *testing.T) {
	assert.True(t, IsFormMediaType("application/x-www-form-urlencoded"))
	assert.True(t, IsFormMediaType("multipart/form-data; boundary=abc"))
	assert.False(t, IsFormMediaType("application/json"))
	assert.False(t, IsFormMediaType(""))
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := discardLogger()
	ctx := context.Background()

	t.Run("successful decode and validate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"email":"a@b.com"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[validatingRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, "a@b.com", result.Email)
	})

	t.Run("plain validation error maps to validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"email":""}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[validatingRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeEnvelope(t, w)
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "email is required", body["error_description"])
	})

	t.Run("normalize runs before validate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"email":"a@b.com"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[normalizingRequest](w, req, logger, ctx, "req-1")

		assert.True(t, ok)
		require.NotNil(t, result)
		assert.Equal(t, []string{"normalize", "validate"}, result.calls)
	})

	t.Run("preserves domain error code from Validate", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":""}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[domainErrorRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeEnvelope(t, w)
		assert.Equal(t, "bad_request", body["error"])
		assert.Equal(t, "id is required", body["error_description"])
	})
}

func TestPrepareRequest(t *testing.T) {
	t.Run("returns validation error", func(t *testing.T) {
		err := PrepareRequest(&validatingRequest{})
		assert.EqualError(t, err, "email is required")
	})

	t.Run("handles types without hooks", func(t *testing.T) {
		assert.NoError(t, PrepareRequest(&contactRequest{FullName: "Anna"}))
	})
}
