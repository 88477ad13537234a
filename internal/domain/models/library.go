package models

import "fmt"

const (
	// DefaultRatePerShift is the monthly fee charged per booked shift when no override is set.
	// It is also the flat amount due for a student holding no shifts.
	DefaultRatePerShift = 300
	// DefaultTotalSeats is the seat capacity a fresh library starts with.
	DefaultTotalSeats = 50
	// MaxSeats bounds resizeable seat capacity.
	MaxSeats = 500
	// ShiftsPerDay is the number of fixed four-hour blocks a seat is booked in.
	ShiftsPerDay = 4
	// NoBatch is the batch string of a student without bookings.
	NoBatch = "N/A"
	// DateLayout is the calendar date layout used for keys and inputs.
	DateLayout = "2006-01-02"
)

// ShiftWindow holds the printable bounds of a shift.
type ShiftWindow struct {
	Start string
	End   string
}

// String renders the window as "6AM-10AM".
func (w ShiftWindow) String() string {
	return w.Start + "-" + w.End
}

var shiftWindows = [ShiftsPerDay + 1]ShiftWindow{
	{},
	{Start: "6AM", End: "10AM"},
	{Start: "10AM", End: "2PM"},
	{Start: "2PM", End: "6PM"},
	{Start: "6PM", End: "10PM"},
}

// ValidShift reports whether shift is one of 1..4.
func ValidShift(shift int) bool {
	return shift >= 1 && shift <= ShiftsPerDay
}

// Window returns the time window of a shift. It panics on an invalid shift.
func Window(shift int) ShiftWindow {
	if !ValidShift(shift) {
		panic(fmt.Sprintf("models: invalid shift %d", shift))
	}
	return shiftWindows[shift]
}

var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthAbbrev returns the three letter English name of month 1..12.
func MonthAbbrev(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthAbbrev[month-1]
}
