// Package derivation turns a student's bookings and fee overrides into the derived WOW fields.
package derivation

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mamadbah2/libdesk/internal/domain/models"
)

// Fields are the WOW columns owned by the derivation engine.
type Fields struct {
	SeatNo      string
	BatchString string
	Shifts      int
	Payment     int
}

// Derive computes the WOW fields of mobile from the full booking set. Bookings of other
// students are ignored.
func Derive(mobile string, bookings []models.Booking, overrides models.Overrides) Fields {
	var own []models.Booking
	for _, b := range bookings {
		if b.Mobile == mobile {
			own = append(own, b)
		}
	}
	sort.Slice(own, func(i, j int) bool { return own[i].Shift < own[j].Shift })

	fields := Fields{
		Shifts:      len(own),
		BatchString: BatchString(shiftsOf(own)),
		Payment:     Fee(len(own), overrides),
	}
	if len(own) > 0 {
		fields.SeatNo = strconv.Itoa(own[0].Seat)
	}
	return fields
}

// Apply writes the derived fields into rec, leaving the overrides untouched.
func Apply(rec models.WowRecord, f Fields) models.WowRecord {
	rec.SeatNo = f.SeatNo
	rec.BatchString = f.BatchString
	rec.Shifts = f.Shifts
	rec.Payment = f.Payment
	return rec
}

// Fee is the monthly fee for shiftCount booked shifts. A fixed total wins over a custom
// rate, which wins over the default rate.
func Fee(shiftCount int, overrides models.Overrides) int {
	switch {
	case overrides.FixedTotalPayment > 0:
		return overrides.FixedTotalPayment
	case overrides.CustomRate > 0:
		return shiftCount * overrides.CustomRate
	default:
		return shiftCount * models.DefaultRatePerShift
	}
}

// BatchString merges runs of consecutive shifts into time ranges, e.g. {1,2,4} renders as
// "6AM-2PM, 6PM-10PM". No shifts renders as models.NoBatch.
func BatchString(shifts []int) string {
	var booked [models.ShiftsPerDay + 2]bool
	for _, s := range shifts {
		if models.ValidShift(s) {
			booked[s] = true
		}
	}

	var ranges []string
	for s := 1; s <= models.ShiftsPerDay; s++ {
		if !booked[s] {
			continue
		}
		end := s
		for booked[end+1] {
			end++
		}
		ranges = append(ranges, models.Window(s).Start+"-"+models.Window(end).End)
		s = end
	}
	if len(ranges) == 0 {
		return models.NoBatch
	}
	return strings.Join(ranges, ", ")
}

func shiftsOf(bookings []models.Booking) []int {
	out := make([]int, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.Shift)
	}
	return out
}
