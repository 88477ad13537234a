package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/store"
)

const mobile = "9876543210"

func setup(t *testing.T, now time.Time, records ...models.PaymentRecord) *Service {
	t.Helper()
	st := store.New(models.LibraryLocation{}, 50)
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		tx.AppendSlot(models.RemovedSlot{MobileHistory: []string{"1111111111"}})
		tx.AppendSlot(models.ActiveSlot{Student: models.Student{
			FullName:      "Pooja Verma",
			Mobile:        mobile,
			Address:       "Boring Road",
			AdmissionDate: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		}})
		rec := models.NewWowRecord(mobile)
		rec.SeatNo, rec.Shifts, rec.Payment, rec.BatchString = "4", 1, 300, "6AM-10AM"
		tx.PutWow(rec)
		for _, r := range records {
			tx.PutPayment(r)
		}
		return nil
	}))
	svc := NewService(st, time.UTC, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestDuesRow(t *testing.T) {
	svc := setup(t, time.Date(2024, 9, 15, 10, 0, 0, 0, time.UTC),
		models.PaymentRecord{Mobile: mobile, Year: 2024, Month: 6, PaidAmount: 300, RequiredAmount: 300},
		models.PaymentRecord{Mobile: mobile, Year: 2024, Month: 8, PaidAmount: 100, RequiredAmount: 300},
	)

	row, err := svc.DuesRow(mobile)
	require.NoError(t, err)

	assert.Equal(t, 1, row.Index)
	assert.Equal(t, 1, row.DueCount)
	assert.Equal(t, "3 days late", row.DueStatus)
	assert.Equal(t, "200(Aug)", row.Reminder)
	require.Len(t, row.DueMonths, 2)
	assert.Equal(t, 300+300+200, row.Outstanding)

	require.Len(t, row.Recent, 3)
	assert.Equal(t, models.YearMonth{Year: 2024, Month: 9}, row.Recent[0].YearMonth)
	assert.Equal(t, models.MonthNoRecord, row.Recent[0].Status)
	assert.Equal(t, models.MonthPartial, row.Recent[1].Status)
	assert.Equal(t, 100, row.Recent[1].Paid)
	assert.Equal(t, models.MonthNoRecord, row.Recent[2].Status)

	_, err = svc.DuesRow("0000000000")
	assert.ErrorIs(t, err, models.ErrStudentNotFound)
}

func TestDueCountAndStatus(t *testing.T) {
	admission := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 2, dueCount(admission, time.Date(2024, 9, 11, 0, 0, 0, 0, time.UTC), 0))
	assert.Equal(t, 3, dueCount(admission, time.Date(2024, 9, 12, 0, 0, 0, 0, time.UTC), 0))
	assert.Equal(t, 0, dueCount(admission, time.Date(2024, 9, 12, 0, 0, 0, 0, time.UTC), 5))

	assert.Equal(t, "2 days after", dueStatus(admission, time.Date(2024, 9, 10, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Due Today", dueStatus(admission, time.Date(2024, 9, 12, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1 days late", dueStatus(admission, time.Date(2024, 9, 13, 0, 0, 0, 0, time.UTC)))
}

func TestDuesTableSkipsRemovedSlots(t *testing.T) {
	svc := setup(t, time.Date(2024, 9, 15, 10, 0, 0, 0, time.UTC))

	rows := svc.DuesTable()
	require.Len(t, rows, 1)
	assert.Equal(t, mobile, rows[0].Mobile)
	assert.Equal(t, "-", rows[0].Reminder)
}

func TestYearGrid(t *testing.T) {
	svc := setup(t, time.Date(2024, 9, 15, 10, 0, 0, 0, time.UTC),
		models.PaymentRecord{Mobile: mobile, Year: 2024, Month: 7, PaidAmount: 300, RequiredAmount: 300},
	)

	rows := svc.YearGrid(2024)
	require.Len(t, rows, 1)
	cells := rows[0].Cells
	require.Len(t, cells, 12)
	assert.Equal(t, models.MonthPreAdmission, cells[4].Status)
	assert.Equal(t, models.MonthNoRecord, cells[5].Status)
	assert.Equal(t, models.MonthFull, cells[6].Status)
	assert.Equal(t, 300, cells[6].Required)
}

func TestReminderMessage(t *testing.T) {
	svc := setup(t, time.Date(2024, 7, 20, 10, 0, 0, 0, time.UTC),
		models.PaymentRecord{Mobile: mobile, Year: 2024, Month: 6, PaidAmount: 100, RequiredAmount: 300},
	)
	row, err := svc.DuesRow(mobile)
	require.NoError(t, err)

	msg := ReminderMessage(row)
	assert.Contains(t, msg, "Hello Pooja Verma")
	assert.Contains(t, msg, "Unpaid months: Jul 2024.")
	assert.Contains(t, msg, "Pending balance: 200(Jun).")
	assert.Contains(t, msg, "Total due: Rs 500.")

	assert.Empty(t, ReminderMessage(DuesRow{}))
	assert.Contains(t, Summary(row), "Seat 4, 6AM-10AM, fee 300")
}
