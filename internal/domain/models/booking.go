package models

// SeatShift is the composite key of a booking.
type SeatShift struct {
	Seat  int `json:"seat"`
	Shift int `json:"shift"`
}

// Booking assigns one shift of one seat to a student.
type Booking struct {
	Seat    int    `json:"seat"`
	Shift   int    `json:"shift"`
	Mobile  string `json:"mobile"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Key returns the seat/shift key of the booking.
func (b Booking) Key() SeatShift {
	return SeatShift{Seat: b.Seat, Shift: b.Shift}
}

// SeatCell is one cell of the seat graph.
type SeatCell struct {
	Seat    int      `json:"seat"`
	Shift   int      `json:"shift"`
	Booking *Booking `json:"booking,omitempty"`
}

// Label is what the seat graph prints for the cell.
func (c SeatCell) Label() string {
	if c.Booking == nil {
		return "Available"
	}
	suffix := c.Booking.Mobile
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	name := c.Booking.Name
	if name == "" {
		name = suffix
	}
	return name + " (" + suffix + ")"
}
