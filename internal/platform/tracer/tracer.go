// Package tracer wraps span creation behind a small interface so services can
// be traced without importing OpenTelemetry directly.
//
// Implementations:
//   - NewNoop: default when tracing is not configured
//   - Recorder: in-memory spans for tests
//   - OTelTracer: OpenTelemetry adapter
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	//
	// Example:
	//   ctx, span := tr.Start(ctx, tracer.SpanSubmit,
	//       tracer.String(tracer.AttrEmailHash, tracer.HashEmail(email)),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashEmail returns a truncated SHA-256 of the normalized email so traces can
// be correlated without carrying the address itself.
func HashEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return hex.EncodeToString(hash[:8])
}

// Span names used by the registrant service.
const (
	SpanSubmit              = "registrant.submit"
	SpanList                = "registrant.list"
	SpanGet                 = "registrant.get"
	SpanUpdatePaymentStatus = "registrant.update_payment_status"
	SpanExport              = "registrant.export"
	SpanSheetsSync          = "registrant.sheets_sync"
)

// Attribute keys used by the registrant service.
const (
	AttrRegistrantID  = "registrant.id"
	AttrEmailHash     = "registrant.email_hash"
	AttrPaymentStatus = "registrant.payment_status"
	AttrRecordCount   = "export.record_count"
	AttrExportFormat  = "export.format"
	AttrMatchCount    = "registrant.match_count"
)

// Event names used by the registrant service.
const (
	EventQRRendered = "payment.qr_rendered"
)
