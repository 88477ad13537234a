package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.BookingOp("book_single", nil)
	r.BookingOp("book_single", errors.New("conflict"))
	r.BookingOp("book_single", nil)
	r.PaymentMarked("FULL")
	r.Scan("ok")
	r.SetOccupied(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.bookingOps.WithLabelValues("book_single", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.bookingOps.WithLabelValues("book_single", ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.paymentsMarks.WithLabelValues("FULL")))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.occupied))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.BookingOp("unbook", nil)
		r.PaymentMarked("PARTIAL")
		r.Scan("stale_token")
		r.SetOccupied(3)
	})
}
