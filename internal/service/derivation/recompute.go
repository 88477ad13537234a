package derivation

import (
	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/store"
)

// Recompute refreshes the WOW record of mobile inside tx and returns it. The record is
// created on first sight.
func Recompute(tx *store.Tx, mobile string) models.WowRecord {
	rec := tx.EnsureWow(mobile)
	rec = Apply(rec, Derive(mobile, tx.BookingsFor(mobile), rec.Overrides))
	tx.PutWow(rec)
	return rec
}

// RecomputeAll refreshes every WOW record plus any mobile that still holds bookings.
func RecomputeAll(tx *store.Tx) {
	seen := make(map[string]struct{})
	for _, m := range tx.WowMobiles() {
		seen[m] = struct{}{}
		Recompute(tx, m)
	}
	for _, b := range tx.AllBookings() {
		if _, ok := seen[b.Mobile]; ok {
			continue
		}
		seen[b.Mobile] = struct{}{}
		Recompute(tx, b.Mobile)
	}
}
