package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registrations    *prometheus.CounterVec
	PaymentUpdates   *prometheus.CounterVec
	Exports          *prometheus.CounterVec
	QRRenderDuration prometheus.Histogram
}

// New registers registrant metrics on reg, or on the default registerer when
// reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_registrations_total",
			Help: "Total number of registrations submitted, by payment status",
		}, []string{"payment_status"}),
		PaymentUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_payment_status_updates_total",
			Help: "Total number of payment status updates, by resulting status",
		}, []string{"payment_status"}),
		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "regdesk_exports_total",
			Help: "Total number of registrant exports, by format",
		}, []string{"format"}),
		QRRenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "regdesk_payment_qr_render_duration_seconds",
			Help:    "Duration of payment QR code rendering",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

func (m *Metrics) IncrementRegistration(status string) {
	m.Registrations.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementPaymentUpdate(status string) {
	m.PaymentUpdates.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementExport(format string) {
	m.Exports.WithLabelValues(format).Inc()
}

func (m *Metrics) ObserveQRRender(start time.Time) {
	m.QRRenderDuration.Observe(time.Since(start).Seconds())
}
