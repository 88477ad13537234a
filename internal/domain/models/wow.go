package models

// WowRecord is the derived seat, shift and fee summary of a student.
type WowRecord struct {
	Mobile      string `json:"mobile"`
	SeatNo      string `json:"seat_no"`
	BatchString string `json:"batch"`
	Shifts      int    `json:"shifts"`
	Payment     int    `json:"payment"`

	Overrides
}

// Overrides are the admin set fee adjustments of a student. Zero means unset.
type Overrides struct {
	CustomRate        int `json:"custom_rate"`
	FixedTotalPayment int `json:"fixed_total_payment"`
}

// HasOverride reports whether any override is active.
func (o Overrides) HasOverride() bool {
	return o.CustomRate > 0 || o.FixedTotalPayment > 0
}

// NewWowRecord returns the record of a student seen for the first time.
func NewWowRecord(mobile string) WowRecord {
	return WowRecord{Mobile: mobile, BatchString: NoBatch}
}

// Allotted reports whether the student holds a seat.
func (w WowRecord) Allotted() bool {
	return w.SeatNo != "" && w.Shifts > 0
}
