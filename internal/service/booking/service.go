package booking

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/metrics"
	"github.com/mamadbah2/libdesk/internal/service/derivation"
	"github.com/mamadbah2/libdesk/internal/store"
)

// Service is the only writer of seat bookings. Every mutation recomputes the affected WOW
// records before it returns.
type Service struct {
	store   *store.Store
	metrics *metrics.Recorder
	logger  *zap.Logger
}

// NewService wires a booking service.
func NewService(st *store.Store, rec *metrics.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, metrics: rec, logger: logger}
}

// ToggleResult reports what a seat graph click did.
type ToggleResult struct {
	Booked  bool           `json:"booked"`
	Booking models.Booking `json:"booking"`
}

// BookSingleShift assigns one shift of seat to the student.
func (s *Service) BookSingleShift(mobile string, seat, shift int) (models.WowRecord, error) {
	var out models.WowRecord
	err := s.store.Update(func(tx *store.Tx) error {
		if _, err := s.bookSingle(tx, mobile, seat, shift); err != nil {
			return err
		}
		out = derivation.Recompute(tx, mobile)
		s.metrics.SetOccupied(len(tx.AllBookings()))
		return nil
	})
	s.observe("book_single", err, zap.String("mobile", mobile), zap.Int("seat", seat), zap.Int("shift", shift))
	return out, err
}

func (s *Service) bookSingle(tx *store.Tx, mobile string, seat, shift int) (models.Booking, error) {
	student, err := s.checkTarget(tx, mobile, seat)
	if err != nil {
		return models.Booking{}, err
	}
	if !models.ValidShift(shift) {
		return models.Booking{}, fmt.Errorf("%w: shift %d", models.ErrInvalidInput, shift)
	}

	for _, own := range tx.BookingsFor(mobile) {
		if own.Seat != seat {
			return models.Booking{}, fmt.Errorf("%w: holds seat %d", models.ErrSeatMismatch, own.Seat)
		}
		if own.Shift == shift {
			return models.Booking{}, fmt.Errorf("%w: seat %d shift %d", models.ErrAlreadyBooked, seat, shift)
		}
	}
	if held, ok := tx.Booking(models.SeatShift{Seat: seat, Shift: shift}); ok && held.Mobile != mobile {
		return models.Booking{}, fmt.Errorf("%w: seat %d shift %d held by %s", models.ErrConflict, seat, shift, held.Mobile)
	}

	b := newBooking(student, seat, shift)
	tx.PutBooking(b)
	return b, nil
}

// BookFullDay replaces every booking of the student with all four shifts of seat.
func (s *Service) BookFullDay(mobile string, seat int) (models.WowRecord, error) {
	var out models.WowRecord
	err := s.store.Update(func(tx *store.Tx) error {
		student, err := s.checkTarget(tx, mobile, seat)
		if err != nil {
			return err
		}
		for shift := 1; shift <= models.ShiftsPerDay; shift++ {
			if held, ok := tx.Booking(models.SeatShift{Seat: seat, Shift: shift}); ok && held.Mobile != mobile {
				return fmt.Errorf("%w: seat %d shift %d held by %s", models.ErrConflict, seat, shift, held.Mobile)
			}
		}

		tx.DeleteBookingsFor(mobile)
		for shift := 1; shift <= models.ShiftsPerDay; shift++ {
			tx.PutBooking(newBooking(student, seat, shift))
		}
		out = derivation.Recompute(tx, mobile)
		s.metrics.SetOccupied(len(tx.AllBookings()))
		return nil
	})
	s.observe("book_full_day", err, zap.String("mobile", mobile), zap.Int("seat", seat))
	return out, err
}

// UnbookShift frees a seat shift. It reports whether anything was removed.
func (s *Service) UnbookShift(seat, shift int) (bool, error) {
	var removed bool
	err := s.store.Update(func(tx *store.Tx) error {
		if !models.ValidShift(shift) {
			return fmt.Errorf("%w: shift %d", models.ErrInvalidInput, shift)
		}
		b, ok := tx.DeleteBooking(models.SeatShift{Seat: seat, Shift: shift})
		if !ok {
			return nil
		}
		removed = true
		derivation.Recompute(tx, b.Mobile)
		s.metrics.SetOccupied(len(tx.AllBookings()))
		return nil
	})
	s.observe("unbook", err, zap.Int("seat", seat), zap.Int("shift", shift), zap.Bool("removed", removed))
	return removed, err
}

// ClearStudentBookings removes every booking of an active student and returns them.
func (s *Service) ClearStudentBookings(mobile string) ([]models.Booking, error) {
	var removed []models.Booking
	err := s.store.Update(func(tx *store.Tx) error {
		if _, _, ok := tx.ActiveStudent(mobile); !ok {
			return fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
		}
		removed = Release(tx, mobile)
		derivation.Recompute(tx, mobile)
		s.metrics.SetOccupied(len(tx.AllBookings()))
		return nil
	})
	s.observe("clear", err, zap.String("mobile", mobile), zap.Int("removed", len(removed)))
	return removed, err
}

// ResizeSeatCapacity changes the number of seats and returns the bookings that were dropped
// because their seat no longer exists.
func (s *Service) ResizeSeatCapacity(total int) ([]models.Booking, error) {
	var dropped []models.Booking
	err := s.store.Update(func(tx *store.Tx) error {
		if total < 1 || total > models.MaxSeats {
			return fmt.Errorf("%w: seat capacity must be between 1 and %d", models.ErrInvalidInput, models.MaxSeats)
		}
		for _, b := range tx.AllBookings() {
			if b.Seat > total {
				tx.DeleteBooking(b.Key())
				dropped = append(dropped, b)
			}
		}
		tx.SetTotalSeats(total)
		derivation.RecomputeAll(tx)
		s.metrics.SetOccupied(len(tx.AllBookings()))
		return nil
	})
	s.observe("resize", err, zap.Int("total", total), zap.Int("dropped", len(dropped)))
	return dropped, err
}

// ApplySeatCommand parses a seat expression and applies it to the student.
func (s *Service) ApplySeatCommand(mobile, input string) (models.WowRecord, error) {
	cmd, err := models.ParseSeatCommand(input)
	if err != nil {
		return models.WowRecord{}, err
	}

	switch cmd.Kind {
	case models.SeatSingleShift:
		return s.BookSingleShift(mobile, cmd.Seat, cmd.Shift)
	case models.SeatFullDay:
		return s.BookFullDay(mobile, cmd.Seat)
	default:
		if _, err := s.ClearStudentBookings(mobile); err != nil {
			return models.WowRecord{}, err
		}
		return s.Wow(mobile)
	}
}

// Toggle frees an occupied seat shift, or books it for mobile when it is free. The cell is
// read and changed under one lock.
func (s *Service) Toggle(mobile string, seat, shift int) (ToggleResult, error) {
	var out ToggleResult
	err := s.store.Update(func(tx *store.Tx) error {
		if !models.ValidShift(shift) {
			return fmt.Errorf("%w: shift %d", models.ErrInvalidInput, shift)
		}
		if held, ok := tx.DeleteBooking(models.SeatShift{Seat: seat, Shift: shift}); ok {
			out = ToggleResult{Booked: false, Booking: held}
			derivation.Recompute(tx, held.Mobile)
			s.metrics.SetOccupied(len(tx.AllBookings()))
			return nil
		}

		if !models.ValidMobile(mobile) {
			return fmt.Errorf("%w: mobile %q", models.ErrInvalidInput, mobile)
		}
		b, err := s.bookSingle(tx, mobile, seat, shift)
		if err != nil {
			return err
		}
		derivation.Recompute(tx, mobile)
		s.metrics.SetOccupied(len(tx.AllBookings()))
		out = ToggleResult{Booked: true, Booking: b}
		return nil
	})
	s.observe("toggle", err,
		zap.String("mobile", mobile),
		zap.Int("seat", seat),
		zap.Int("shift", shift),
		zap.Bool("booked", out.Booked))
	return out, err
}

// Occupancy returns one cell per seat shift, ordered by seat then shift.
func (s *Service) Occupancy() []models.SeatCell {
	var cells []models.SeatCell
	_ = s.store.View(func(tx *store.Tx) error {
		total := tx.TotalSeats()
		cells = make([]models.SeatCell, 0, total*models.ShiftsPerDay)
		for seat := 1; seat <= total; seat++ {
			for shift := 1; shift <= models.ShiftsPerDay; shift++ {
				cell := models.SeatCell{Seat: seat, Shift: shift}
				if b, ok := tx.Booking(models.SeatShift{Seat: seat, Shift: shift}); ok {
					cell.Booking = &b
				}
				cells = append(cells, cell)
			}
		}
		return nil
	})
	return cells
}

// TotalSeats returns the current seat capacity.
func (s *Service) TotalSeats() int {
	var total int
	_ = s.store.View(func(tx *store.Tx) error {
		total = tx.TotalSeats()
		return nil
	})
	return total
}

// Wow returns the WOW record of an active student.
func (s *Service) Wow(mobile string) (models.WowRecord, error) {
	var out models.WowRecord
	err := s.store.View(func(tx *store.Tx) error {
		if _, _, ok := tx.ActiveStudent(mobile); !ok {
			return fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
		}
		rec, ok := tx.Wow(mobile)
		if !ok {
			rec = models.NewWowRecord(mobile)
		}
		out = rec
		return nil
	})
	return out, err
}

// WowTable returns the WOW record of every active student in roster order.
func (s *Service) WowTable() []models.WowRecord {
	var out []models.WowRecord
	_ = s.store.View(func(tx *store.Tx) error {
		for _, st := range tx.ActiveStudents() {
			rec, ok := tx.Wow(st.Mobile)
			if !ok {
				rec = models.NewWowRecord(st.Mobile)
			}
			out = append(out, rec)
		}
		return nil
	})
	return out
}

func (s *Service) checkTarget(tx *store.Tx, mobile string, seat int) (models.Student, error) {
	student, _, ok := tx.ActiveStudent(mobile)
	if !ok {
		return models.Student{}, fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
	}
	if seat < 1 || seat > tx.TotalSeats() {
		return models.Student{}, fmt.Errorf("%w: seat %d outside 1..%d", models.ErrInvalidInput, seat, tx.TotalSeats())
	}
	return student, nil
}

func (s *Service) observe(op string, err error, fields ...zap.Field) {
	s.metrics.BookingOp(op, err)
	if err != nil {
		s.logger.Debug("booking rejected", append(fields, zap.String("op", op), zap.Error(err))...)
		return
	}
	s.logger.Info("booking updated", append(fields, zap.String("op", op))...)
}

// Release drops every booking of mobile inside tx. Callers recompute or drop the WOW record.
func Release(tx *store.Tx, mobile string) []models.Booking {
	return tx.DeleteBookingsFor(mobile)
}

func newBooking(student models.Student, seat, shift int) models.Booking {
	return models.Booking{
		Seat:    seat,
		Shift:   shift,
		Mobile:  student.Mobile,
		Name:    student.FullName,
		Address: student.Address,
	}
}
