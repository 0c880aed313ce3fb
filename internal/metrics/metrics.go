package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rfid_attendance"

// Metrics holds the service's collectors.
type Metrics struct {
	scans   *prometheus.CounterVec
	logins  *prometheus.CounterVec
	exports *prometheus.CounterVec
	records prometheus.Gauge
}

// New creates collectors and registers them on reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "RFID scans by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_exports_total",
			Help:      "Report exports by mode and result.",
		}, []string{"mode", "result"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "attendance_records",
			Help:      "Attendance records held in memory.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.scans, m.logins, m.exports, m.records)
	}
	return m
}

// ObserveScan counts a scan outcome.
func (m *Metrics) ObserveScan(outcome string) {
	m.scans.WithLabelValues(outcome).Inc()
}

// ObserveLogin counts a login attempt.
func (m *Metrics) ObserveLogin(result string) {
	m.logins.WithLabelValues(result).Inc()
}

// ObserveExport counts an export. mode is "download" or "job".
func (m *Metrics) ObserveExport(mode, result string) {
	m.exports.WithLabelValues(mode, result).Inc()
}

// SetRecords reports the size of the attendance log.
func (m *Metrics) SetRecords(n int) {
	m.records.Set(float64(n))
}
