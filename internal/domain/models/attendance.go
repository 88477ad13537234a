package models

import "time"

// AttendanceKey identifies the attendance record of one student day.
type AttendanceKey struct {
	Mobile string
	Date   string // DateLayout in the library time zone
}

// Session is one clock-in/clock-out pair. Out is nil while the session is open.
type Session struct {
	ID  string     `json:"id"`
	In  time.Time  `json:"in"`
	Out *time.Time `json:"out,omitempty"`
}

// Open reports whether the session has not been clocked out.
func (s Session) Open() bool {
	return s.Out == nil
}

// AttendanceRecord holds the sessions of a student on one calendar day.
type AttendanceRecord struct {
	Mobile   string    `json:"mobile"`
	Date     string    `json:"date"`
	Sessions []Session `json:"sessions"`
}

// Key returns the record key.
func (a AttendanceRecord) Key() AttendanceKey {
	return AttendanceKey{Mobile: a.Mobile, Date: a.Date}
}

// OpenSession returns the index of the trailing open session or -1.
func (a AttendanceRecord) OpenSession() int {
	if n := len(a.Sessions); n > 0 && a.Sessions[n-1].Open() {
		return n - 1
	}
	return -1
}

// ScanDirection tells whether a scan opened or closed a session.
type ScanDirection string

const (
	ScanIn  ScanDirection = "IN"
	ScanOut ScanDirection = "OUT"
)

// DayStatus is the calendar status of one day.
type DayStatus string

const (
	DayPresent DayStatus = "present"
	DayAbsent  DayStatus = "absent"
	DayFuture  DayStatus = "future"
)

// CalendarDay is one cell of a student's attendance calendar.
type CalendarDay struct {
	Date     string    `json:"date"`
	Status   DayStatus `json:"status"`
	Sessions []Session `json:"sessions,omitempty"`
}

// MonthlyStats counts present and absent days of a month up to today.
type MonthlyStats struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LibraryLocation is the geofence and QR configuration of the library.
type LibraryLocation struct {
	GeoPoint
	RadiusMeters float64 `json:"radius_meters"`
	Configured   bool    `json:"configured"`
	QRToken      string  `json:"qr_token"`
}

// StaticQRToken is the token in effect before the location is configured.
const StaticQRToken = "LibraryWorkAutomate_StaticQR_v1"
