package export

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

type recordedCall struct {
	method string
	path   string
	body   map[string]any
}

type fakeSheets struct {
	mu     sync.Mutex
	calls  []recordedCall
	status int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{method: r.Method, path: r.URL.Path, body: body})
	status := f.status
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
		return
	}
	_, _ = w.Write([]byte(`{}`))
}

func newTestMirror(t *testing.T, fake *fakeSheets) *SheetsMirror {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	m, err := NewSheetsMirrorWithOptions(context.Background(), "sheet-123", "",
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return m
}

func TestSheetsMirrorSync(t *testing.T) {
	fake := &fakeSheets{}
	m := newTestMirror(t, fake)
	rows := sampleRows()

	require.NoError(t, m.Sync(context.Background(), rows))

	require.Len(t, fake.calls, 2)
	clearCall := fake.calls[0]
	assert.Equal(t, http.MethodPost, clearCall.method)
	assert.True(t, strings.HasSuffix(clearCall.path, ":clear"), clearCall.path)
	assert.Contains(t, clearCall.path, "sheet-123")
	assert.Contains(t, clearCall.path, DefaultSheetsTab)

	update := fake.calls[1]
	assert.Equal(t, http.MethodPut, update.method)
	values, ok := update.body["values"].([]any)
	require.True(t, ok)
	require.Len(t, values, len(rows)+1)
	header := values[0].([]any)
	assert.Equal(t, "ID", header[0])
	assert.Equal(t, "ChildrenDetails", header[len(header)-1])
	ben := values[2].([]any)
	assert.Equal(t, float64(2), ben[childrenCountColumn])
	assert.Equal(t, NotAvailable, ben[experienceColumn])
}

func TestSheetsMirrorSyncFailure(t *testing.T) {
	fake := &fakeSheets{status: http.StatusForbidden}
	m := newTestMirror(t, fake)

	err := m.Sync(context.Background(), sampleRows())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear sheet")
	assert.Len(t, fake.calls, 1)
}

func TestNewSheetsMirrorValidation(t *testing.T) {
	_, err := NewSheetsMirrorWithOptions(context.Background(), "", "tab", option.WithoutAuthentication())
	assert.Error(t, err)

	_, err = NewSheetsMirror(context.Background(), "/does/not/exist.json", "sheet-123", "")
	assert.Error(t, err)
}
