package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Recorder groups the library collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	bookingOps    *prometheus.CounterVec
	paymentsMarks *prometheus.CounterVec
	scans         *prometheus.CounterVec
	occupied      prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		bookingOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "libdesk",
			Name:      "booking_operations_total",
			Help:      "Seat booking operations by operation and result.",
		}, []string{"op", "result"}),
		paymentsMarks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "libdesk",
			Name:      "payments_marked_total",
			Help:      "Payment records written by mode.",
		}, []string{"mode"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "libdesk",
			Name:      "attendance_scans_total",
			Help:      "Attendance QR scans by result.",
		}, []string{"result"}),
		occupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "libdesk",
			Name:      "occupied_slots",
			Help:      "Number of booked seat shifts.",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.bookingOps, r.paymentsMarks, r.scans, r.occupied)
	}
	return r
}

// BookingOp counts one booking operation.
func (r *Recorder) BookingOp(op string, err error) {
	if r == nil {
		return
	}
	r.bookingOps.WithLabelValues(op, result(err)).Inc()
}

// PaymentMarked counts one written payment record.
func (r *Recorder) PaymentMarked(mode string) {
	if r == nil {
		return
	}
	r.paymentsMarks.WithLabelValues(mode).Inc()
}

// Scan counts one attendance scan. Failures are labelled by their reason.
func (r *Recorder) Scan(reason string) {
	if r == nil {
		return
	}
	r.scans.WithLabelValues(reason).Inc()
}

// SetOccupied records the number of booked seat shifts.
func (r *Recorder) SetOccupied(n int) {
	if r == nil {
		return
	}
	r.occupied.Set(float64(n))
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
