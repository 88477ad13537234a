package models

import "errors"

// Booking failures.
var (
	// ErrConflict indicates a seat/shift or mobile number is already held by someone else.
	ErrConflict = errors.New("conflict")
	// ErrSeatMismatch indicates the student already holds shifts on another seat.
	ErrSeatMismatch = errors.New("student is booked on a different seat")
	// ErrAlreadyBooked indicates the student already holds exactly this seat and shift.
	ErrAlreadyBooked = errors.New("seat and shift already booked by this student")
)

// Payment failures.
var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrPreAdmission  = errors.New("month is before admission")
)

// Attendance failures.
var (
	ErrStaleToken            = errors.New("invalid or outdated qr code")
	ErrOutOfRange            = errors.New("outside library range")
	ErrLocationNotConfigured = errors.New("library location not set")

	// Geolocation collaborator failures.
	ErrPermissionDenied    = errors.New("geolocation permission denied")
	ErrPositionUnavailable = errors.New("geolocation position unavailable")
	ErrTimeout             = errors.New("geolocation timed out")
)

// General failures.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrStudentNotFound    = errors.New("student not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
