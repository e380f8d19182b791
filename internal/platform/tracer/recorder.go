package tracer

import (
	"context"
	"sync"
)

// RecordedSpan is a finished or in-flight span captured by Recorder.
type RecordedSpan struct {
	Name       string
	Attributes map[string]any
	Events     []string
	Err        error
	Ended      bool
}

// Recorder keeps every span in memory so tests can assert on what a
// service traced.
type Recorder struct {
	mu    sync.Mutex
	spans []*RecordedSpan
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	rs := &RecordedSpan{Name: name, Attributes: make(map[string]any)}
	r.mu.Lock()
	r.spans = append(r.spans, rs)
	r.mu.Unlock()

	s := &recordingSpan{rec: r, span: rs}
	s.SetAttributes(attrs...)
	return ctx, s
}

// Spans returns copies of the recorded spans in start order.
func (r *Recorder) Spans() []RecordedSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedSpan, 0, len(r.spans))
	for _, s := range r.spans {
		cp := *s
		cp.Attributes = make(map[string]any, len(s.Attributes))
		for k, v := range s.Attributes {
			cp.Attributes[k] = v
		}
		cp.Events = append([]string(nil), s.Events...)
		out = append(out, cp)
	}
	return out
}

type recordingSpan struct {
	rec  *Recorder
	span *RecordedSpan
}

func (s *recordingSpan) End(err error) {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	s.span.Err = err
	s.span.Ended = true
}

func (s *recordingSpan) SetAttributes(attrs ...Attribute) {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	for _, a := range attrs {
		s.span.Attributes[a.Key] = a.Value
	}
}

func (s *recordingSpan) AddEvent(name string, _ ...Attribute) {
	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	s.span.Events = append(s.span.Events, name)
}
