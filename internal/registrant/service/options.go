package service

import (
	"log/slog"
	"time"

	"regdesk/internal/platform/tracer"
	registrantmetrics "regdesk/internal/registrant/metrics"
)

// Option configures a Service.
type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *registrantmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithSheetsMirror enables SyncSheets.
func WithSheetsMirror(m SheetsMirror) Option {
	return func(s *Service) {
		s.sheets = m
	}
}

// WithExportLocation sets the zone dates of birth are rendered in on export.
func WithExportLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}
