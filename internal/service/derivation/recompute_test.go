package derivation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/store"
)

func TestRecomputeCreatesAndRefreshes(t *testing.T) {
	st := store.New(models.LibraryLocation{}, 10)

	require.NoError(t, st.Update(func(tx *store.Tx) error {
		tx.PutBooking(models.Booking{Seat: 2, Shift: 3, Mobile: "9876543210"})
		rec := Recompute(tx, "9876543210")
		assert.Equal(t, "2", rec.SeatNo)
		assert.Equal(t, "2PM-6PM", rec.BatchString)

		tx.DeleteBooking(models.SeatShift{Seat: 2, Shift: 3})
		rec = Recompute(tx, "9876543210")
		assert.Equal(t, models.NoBatch, rec.BatchString)
		assert.Equal(t, 0, rec.Shifts)
		return nil
	}))
}

func TestRecomputeAllPicksUpUnseenMobiles(t *testing.T) {
	st := store.New(models.LibraryLocation{}, 10)

	require.NoError(t, st.Update(func(tx *store.Tx) error {
		tx.PutBooking(models.Booking{Seat: 1, Shift: 1, Mobile: "1111111111"})
		tx.PutBooking(models.Booking{Seat: 1, Shift: 2, Mobile: "1111111111"})
		RecomputeAll(tx)
		return nil
	}))

	require.NoError(t, st.View(func(tx *store.Tx) error {
		rec, ok := tx.Wow("1111111111")
		require.True(t, ok)
		assert.Equal(t, "6AM-2PM", rec.BatchString)
		assert.Equal(t, 600, rec.Payment)
		return nil
	}))
}
