package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/store"
)

const mobile = "9876543210"

func setup(t *testing.T, shifts, fee int) (*Service, *store.Store) {
	t.Helper()
	st := store.New(models.LibraryLocation{}, 50)
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		tx.AppendSlot(models.ActiveSlot{Student: models.Student{
			FullName:      "Pooja Verma",
			Mobile:        mobile,
			AdmissionDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		}})
		rec := models.NewWowRecord(mobile)
		rec.Shifts = shifts
		rec.Payment = fee
		tx.PutWow(rec)
		return nil
	}))
	svc := NewService(st, nil, time.UTC, nil)
	svc.now = func() time.Time { return time.Date(2024, 9, 5, 16, 30, 0, 0, time.UTC) }
	return svc, st
}

func setFee(t *testing.T, st *store.Store, shifts, fee int) {
	t.Helper()
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		rec := tx.EnsureWow(mobile)
		rec.Shifts = shifts
		rec.Payment = fee
		tx.PutWow(rec)
		return nil
	}))
}

func ym(year, month int) models.YearMonth { return models.YearMonth{Year: year, Month: month} }

func TestRequiredAmountFallsBackToDefaultRate(t *testing.T) {
	svc, st := setup(t, 0, 0)
	assert.Equal(t, models.DefaultRatePerShift, svc.RequiredAmount(mobile))

	setFee(t, st, 2, 600)
	assert.Equal(t, 600, svc.RequiredAmount(mobile))

	assert.Equal(t, models.DefaultRatePerShift, svc.RequiredAmount("0000000000"))
}

func TestMarkPaymentFull(t *testing.T) {
	svc, _ := setup(t, 3, 900)

	rec, err := svc.MarkPayment(mobile, ym(2024, 7), models.PaymentFull, 0)
	require.NoError(t, err)

	assert.Equal(t, 900, rec.PaidAmount)
	assert.Equal(t, 900, rec.RequiredAmount)
	assert.Equal(t, "05/09/24 4:30pm", rec.Timestamp)
	assert.Equal(t, models.MonthFull, svc.ClassifyMonth(mobile, ym(2024, 7)))
}

func TestMarkPaymentPartialAccumulates(t *testing.T) {
	svc, _ := setup(t, 1, 300)

	_, err := svc.MarkPayment(mobile, ym(2024, 8), models.PaymentPartial, 50)
	require.NoError(t, err)
	rec, err := svc.MarkPayment(mobile, ym(2024, 8), models.PaymentPartial, 100)
	require.NoError(t, err)

	assert.Equal(t, 150, rec.PaidAmount)
	assert.Equal(t, 300, rec.RequiredAmount)
	assert.Equal(t, models.MonthPartial, svc.ClassifyMonth(mobile, ym(2024, 8)))

	rec, err = svc.MarkPayment(mobile, ym(2024, 8), models.PaymentPartial, 150)
	require.NoError(t, err)
	assert.Equal(t, models.MonthFull, svc.ClassifyMonth(mobile, ym(2024, 8)))
	assert.Equal(t, 300, rec.PaidAmount)
}

func TestMarkPaymentFullKeepsSnapshotOfPartialRecord(t *testing.T) {
	svc, st := setup(t, 1, 300)
	_, err := svc.MarkPayment(mobile, ym(2024, 8), models.PaymentPartial, 100)
	require.NoError(t, err)

	setFee(t, st, 2, 600)
	rec, err := svc.MarkPayment(mobile, ym(2024, 8), models.PaymentFull, 0)
	require.NoError(t, err)

	assert.Equal(t, 300, rec.RequiredAmount)
	assert.Equal(t, 300, rec.PaidAmount)
}

func TestMarkPaymentOnFullMonthIsNoOp(t *testing.T) {
	svc, st := setup(t, 1, 300)
	first, err := svc.MarkPayment(mobile, ym(2024, 9), models.PaymentFull, 0)
	require.NoError(t, err)

	setFee(t, st, 4, 1200)
	svc.now = func() time.Time { return time.Date(2024, 9, 20, 9, 0, 0, 0, time.UTC) }
	again, err := svc.MarkPayment(mobile, ym(2024, 9), models.PaymentPartial, 500)
	require.NoError(t, err)

	assert.Equal(t, first, again)
}

func TestMarkPaymentRejections(t *testing.T) {
	svc, _ := setup(t, 1, 300)

	_, err := svc.MarkPayment(mobile, ym(2024, 5), models.PaymentFull, 0)
	assert.ErrorIs(t, err, models.ErrPreAdmission)

	_, err = svc.MarkPayment(mobile, ym(2024, 7), models.PaymentPartial, -10)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
	assert.Equal(t, models.MonthNoRecord, svc.ClassifyMonth(mobile, ym(2024, 7)))

	_, err = svc.MarkPayment("1111111111", ym(2024, 7), models.PaymentFull, 0)
	assert.ErrorIs(t, err, models.ErrStudentNotFound)

	_, err = svc.MarkPayment(mobile, ym(2024, 7), models.PaymentMode("LATER"), 0)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestDueMonthsFromAdmission(t *testing.T) {
	svc, _ := setup(t, 0, 0)

	due, err := svc.DueMonths(mobile, time.Date(2024, 9, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, due, 4)
	for i, want := range []models.YearMonth{ym(2024, 6), ym(2024, 7), ym(2024, 8), ym(2024, 9)} {
		assert.Equal(t, want, due[i].YearMonth)
		assert.Equal(t, models.DefaultRatePerShift, due[i].Amount)
	}
}

func TestDueMonthsSkipsAnyRecordedMonth(t *testing.T) {
	svc, _ := setup(t, 1, 300)
	_, err := svc.MarkPayment(mobile, ym(2024, 6), models.PaymentFull, 0)
	require.NoError(t, err)
	_, err = svc.MarkPayment(mobile, ym(2024, 8), models.PaymentPartial, 100)
	require.NoError(t, err)

	due, err := svc.DueMonths(mobile, time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, due, 2)
	assert.Equal(t, ym(2024, 7), due[0].YearMonth)
	assert.Equal(t, ym(2024, 9), due[1].YearMonth)

	balance, err := svc.OutstandingBalance(mobile, time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 300+300+200, balance)
}

func TestDueMonthsUsesLibraryTimeZone(t *testing.T) {
	svc, _ := setup(t, 0, 0)
	kolkata := time.FixedZone("IST", 5*3600+1800)
	svc.loc = kolkata

	// 20:00 UTC on Sep 30 is already Oct 1 in the library.
	due, err := svc.DueMonths(mobile, time.Date(2024, 9, 30, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, due, 5)
	assert.Equal(t, ym(2024, 10), due[4].YearMonth)
}

func TestReminderAggregatesPartials(t *testing.T) {
	svc, _ := setup(t, 1, 300)
	_, err := svc.MarkPayment(mobile, ym(2024, 9), models.PaymentPartial, 200)
	require.NoError(t, err)
	_, err = svc.MarkPayment(mobile, ym(2024, 8), models.PaymentPartial, 100)
	require.NoError(t, err)
	_, err = svc.MarkPayment(mobile, ym(2024, 7), models.PaymentFull, 0)
	require.NoError(t, err)

	r := svc.Reminder(mobile)

	require.Len(t, r.Entries, 2)
	assert.Equal(t, ym(2024, 8), r.Entries[0].YearMonth)
	assert.Equal(t, 300, r.Total)
	assert.Equal(t, "200+100 (Aug,Sep)", r.String())
	assert.Len(t, svc.History(mobile), 3)
}
