package store

import (
	"sort"
	"sync"

	"github.com/mamadbah2/libdesk/internal/domain/models"
)

// Store is the in-memory source of truth for students, bookings, WOW records, payments,
// attendance and the library location. Every read runs under View and every mutation under
// Update, so one mutation (including its recomputation) completes before the next starts.
type Store struct {
	mu sync.RWMutex
	tx *Tx
}

// Tx is the state handed to one View or Update callback. It must not be retained after the
// callback returns. Changes are applied immediately; callers validate before mutating.
type Tx struct {
	slots      []models.StudentSlot
	bookings   map[models.SeatShift]models.Booking
	wow        map[string]models.WowRecord
	payments   map[models.PaymentKey]models.PaymentRecord
	attendance map[models.AttendanceKey]models.AttendanceRecord
	location   models.LibraryLocation
	totalSeats int
}

// New creates an empty store.
func New(location models.LibraryLocation, totalSeats int) *Store {
	if totalSeats < 1 || totalSeats > models.MaxSeats {
		totalSeats = models.DefaultTotalSeats
	}
	if location.QRToken == "" {
		location.QRToken = models.StaticQRToken
	}
	return &Store{tx: &Tx{
		bookings:   make(map[models.SeatShift]models.Booking),
		wow:        make(map[string]models.WowRecord),
		payments:   make(map[models.PaymentKey]models.PaymentRecord),
		attendance: make(map[models.AttendanceKey]models.AttendanceRecord),
		location:   location,
		totalSeats: totalSeats,
	}}
}

// View runs fn with shared access.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.tx)
}

// Update runs fn with exclusive access.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tx)
}

// Students

// Slots returns a copy of the ordered roster.
func (tx *Tx) Slots() []models.StudentSlot {
	out := make([]models.StudentSlot, len(tx.slots))
	copy(out, tx.slots)
	return out
}

// Slot returns the roster slot at index.
func (tx *Tx) Slot(index int) (models.StudentSlot, bool) {
	if index < 0 || index >= len(tx.slots) {
		return nil, false
	}
	return tx.slots[index], true
}

// AppendSlot adds a slot at the end of the roster and returns its index.
func (tx *Tx) AppendSlot(slot models.StudentSlot) int {
	tx.slots = append(tx.slots, slot)
	return len(tx.slots) - 1
}

// SetSlot overwrites the slot at index.
func (tx *Tx) SetSlot(index int, slot models.StudentSlot) bool {
	if index < 0 || index >= len(tx.slots) {
		return false
	}
	tx.slots[index] = slot
	return true
}

// ActiveStudent finds the active student owning mobile.
func (tx *Tx) ActiveStudent(mobile string) (models.Student, int, bool) {
	if mobile == "" {
		return models.Student{}, -1, false
	}
	for i, slot := range tx.slots {
		if active, ok := slot.(models.ActiveSlot); ok && active.Student.Mobile == mobile {
			return active.Student, i, true
		}
	}
	return models.Student{}, -1, false
}

// ActiveStudents returns every active student in roster order.
func (tx *Tx) ActiveStudents() []models.Student {
	out := make([]models.Student, 0, len(tx.slots))
	for _, slot := range tx.slots {
		if active, ok := slot.(models.ActiveSlot); ok {
			out = append(out, active.Student)
		}
	}
	return out
}

// Bookings

// TotalSeats returns the current seat capacity.
func (tx *Tx) TotalSeats() int { return tx.totalSeats }

// SetTotalSeats changes the seat capacity without touching bookings.
func (tx *Tx) SetTotalSeats(n int) { tx.totalSeats = n }

// Booking returns the booking at key.
func (tx *Tx) Booking(key models.SeatShift) (models.Booking, bool) {
	b, ok := tx.bookings[key]
	return b, ok
}

// PutBooking inserts or overwrites the booking at its key.
func (tx *Tx) PutBooking(b models.Booking) {
	tx.bookings[b.Key()] = b
}

// DeleteBooking removes the booking at key and returns it.
func (tx *Tx) DeleteBooking(key models.SeatShift) (models.Booking, bool) {
	b, ok := tx.bookings[key]
	if ok {
		delete(tx.bookings, key)
	}
	return b, ok
}

// BookingsFor returns the bookings of mobile ordered by shift.
func (tx *Tx) BookingsFor(mobile string) []models.Booking {
	var out []models.Booking
	for _, b := range tx.bookings {
		if b.Mobile == mobile {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out
}

// AllBookings returns every booking ordered by seat then shift.
func (tx *Tx) AllBookings() []models.Booking {
	out := make([]models.Booking, 0, len(tx.bookings))
	for _, b := range tx.bookings {
		out = append(out, b)
	}
	sortBookings(out)
	return out
}

// DeleteBookingsFor removes every booking of mobile and returns them.
func (tx *Tx) DeleteBookingsFor(mobile string) []models.Booking {
	removed := tx.BookingsFor(mobile)
	for _, b := range removed {
		delete(tx.bookings, b.Key())
	}
	return removed
}

func sortBookings(bs []models.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].Seat != bs[j].Seat {
			return bs[i].Seat < bs[j].Seat
		}
		return bs[i].Shift < bs[j].Shift
	})
}

// WOW records

// Wow returns the WOW record of mobile.
func (tx *Tx) Wow(mobile string) (models.WowRecord, bool) {
	w, ok := tx.wow[mobile]
	return w, ok
}

// EnsureWow returns the WOW record of mobile, creating it on first sight.
func (tx *Tx) EnsureWow(mobile string) models.WowRecord {
	if w, ok := tx.wow[mobile]; ok {
		return w
	}
	w := models.NewWowRecord(mobile)
	tx.wow[mobile] = w
	return w
}

// PutWow stores the WOW record under its mobile.
func (tx *Tx) PutWow(w models.WowRecord) { tx.wow[w.Mobile] = w }

// DeleteWow drops the WOW record of mobile.
func (tx *Tx) DeleteWow(mobile string) { delete(tx.wow, mobile) }

// WowMobiles returns the mobiles that own a WOW record, sorted.
func (tx *Tx) WowMobiles() []string {
	out := make([]string, 0, len(tx.wow))
	for m := range tx.wow {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Payments

// Payment returns the record at key.
func (tx *Tx) Payment(key models.PaymentKey) (models.PaymentRecord, bool) {
	p, ok := tx.payments[key]
	return p, ok
}

// PutPayment writes the single record of its (mobile, year, month).
func (tx *Tx) PutPayment(p models.PaymentRecord) { tx.payments[p.Key()] = p }

// PaymentsFor returns the records of mobile in chronological order.
func (tx *Tx) PaymentsFor(mobile string) []models.PaymentRecord {
	var out []models.PaymentRecord
	for _, p := range tx.payments {
		if p.Mobile == mobile {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// Attendance

// Attendance returns a copy of the record at key.
func (tx *Tx) Attendance(key models.AttendanceKey) (models.AttendanceRecord, bool) {
	a, ok := tx.attendance[key]
	if !ok {
		return models.AttendanceRecord{}, false
	}
	return cloneAttendance(a), true
}

// PutAttendance writes the record of its (mobile, date).
func (tx *Tx) PutAttendance(a models.AttendanceRecord) {
	tx.attendance[a.Key()] = cloneAttendance(a)
}

// AttendanceFor returns every record of mobile, newest day first.
func (tx *Tx) AttendanceFor(mobile string) []models.AttendanceRecord {
	var out []models.AttendanceRecord
	for _, a := range tx.attendance {
		if a.Mobile == mobile {
			out = append(out, cloneAttendance(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func cloneAttendance(a models.AttendanceRecord) models.AttendanceRecord {
	sessions := make([]models.Session, len(a.Sessions))
	copy(sessions, a.Sessions)
	a.Sessions = sessions
	return a
}

// Location

// Location returns the library location.
func (tx *Tx) Location() models.LibraryLocation { return tx.location }

// SetLocation replaces the library location.
func (tx *Tx) SetLocation(loc models.LibraryLocation) { tx.location = loc }

// Rekey moves every record owned by oldMobile to newMobile: bookings (with the new name
// snapshot), payments, attendance and the WOW record.
func (tx *Tx) Rekey(oldMobile, newMobile, newName string) {
	if oldMobile == newMobile {
		return
	}
	for key, b := range tx.bookings {
		if b.Mobile == oldMobile {
			b.Mobile = newMobile
			b.Name = newName
			tx.bookings[key] = b
		}
	}
	for key, p := range tx.payments {
		if p.Mobile == oldMobile {
			delete(tx.payments, key)
			p.Mobile = newMobile
			tx.payments[p.Key()] = p
		}
	}
	for key, a := range tx.attendance {
		if a.Mobile == oldMobile {
			delete(tx.attendance, key)
			a.Mobile = newMobile
			tx.attendance[a.Key()] = a
		}
	}
	if w, ok := tx.wow[oldMobile]; ok {
		delete(tx.wow, oldMobile)
		w.Mobile = newMobile
		tx.wow[newMobile] = w
	}
}
