package payments

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/metrics"
	"github.com/mamadbah2/libdesk/internal/store"
)

// TimestampLayout formats the moment a payment was marked, e.g. "05/09/24 4:30pm".
const TimestampLayout = "02/01/06 3:04pm"

// Service reconciles monthly payment records against the live fee of each student.
type Service struct {
	store   *store.Store
	metrics *metrics.Recorder
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a payment service. loc is the library time zone.
func NewService(st *store.Store, rec *metrics.Recorder, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: st, metrics: rec, loc: loc, logger: logger, now: time.Now}
}

// RequiredAmount is the live monthly fee: the derived payment when the student holds
// shifts, the flat default rate otherwise.
func (s *Service) RequiredAmount(mobile string) int {
	var amount int
	_ = s.store.View(func(tx *store.Tx) error {
		amount = RequiredAmount(tx, mobile)
		return nil
	})
	return amount
}

// RequiredAmount computes the live monthly fee inside a store transaction.
func RequiredAmount(tx *store.Tx, mobile string) int {
	if rec, ok := tx.Wow(mobile); ok && rec.Shifts > 0 {
		return rec.Payment
	}
	return models.DefaultRatePerShift
}

// ClassifyMonth compares paid and required on the record of the month.
func (s *Service) ClassifyMonth(mobile string, ym models.YearMonth) models.MonthStatus {
	var status models.MonthStatus
	_ = s.store.View(func(tx *store.Tx) error {
		status = Classify(tx, mobile, ym)
		return nil
	})
	return status
}

// Classify compares paid and required inside a store transaction.
func Classify(tx *store.Tx, mobile string, ym models.YearMonth) models.MonthStatus {
	rec, ok := tx.Payment(models.PaymentKey{Mobile: mobile, Year: ym.Year, Month: ym.Month})
	switch {
	case !ok:
		return models.MonthNoRecord
	case rec.FullyPaid():
		return models.MonthFull
	default:
		return models.MonthPartial
	}
}

// MarkPayment records a payment for one month. FULL settles the month at its required
// amount; PARTIAL adds amount to what was already paid. A month that is already fully paid
// is left untouched.
func (s *Service) MarkPayment(mobile string, ym models.YearMonth, mode models.PaymentMode, amount int) (models.PaymentRecord, error) {
	var (
		out     models.PaymentRecord
		skipped bool
	)
	err := s.store.Update(func(tx *store.Tx) error {
		student, _, ok := tx.ActiveStudent(mobile)
		if !ok {
			return fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
		}
		if ym.Month < 1 || ym.Month > 12 {
			return fmt.Errorf("%w: month %d", models.ErrInvalidInput, ym.Month)
		}
		if ym.Before(AdmissionMonth(student)) {
			return fmt.Errorf("%w: %s is before admission", models.ErrPreAdmission, ym)
		}

		key := models.PaymentKey{Mobile: mobile, Year: ym.Year, Month: ym.Month}
		existing, exists := tx.Payment(key)
		if exists && existing.FullyPaid() {
			out = existing
			skipped = true
			return nil
		}

		required := RequiredAmount(tx, mobile)
		if exists {
			required = existing.RequiredAmount
		}

		rec := models.PaymentRecord{
			Mobile:         mobile,
			Year:           ym.Year,
			Month:          ym.Month,
			RequiredAmount: required,
			Timestamp:      s.now().In(s.loc).Format(TimestampLayout),
		}
		switch mode {
		case models.PaymentFull:
			rec.PaidAmount = required
		case models.PaymentPartial:
			if amount < 0 {
				return fmt.Errorf("%w: %d", models.ErrInvalidAmount, amount)
			}
			rec.PaidAmount = existing.PaidAmount + amount
		default:
			return fmt.Errorf("%w: payment mode %q", models.ErrInvalidInput, mode)
		}

		tx.PutPayment(rec)
		out = rec
		return nil
	})
	if err != nil {
		s.logger.Debug("payment rejected", zap.String("mobile", mobile), zap.Stringer("month", ym), zap.Error(err))
		return out, err
	}
	if skipped {
		s.logger.Debug("month already fully paid", zap.String("mobile", mobile), zap.Stringer("month", ym))
		return out, nil
	}

	s.metrics.PaymentMarked(string(mode))
	s.logger.Info("payment marked",
		zap.String("mobile", mobile),
		zap.Int("year", ym.Year),
		zap.Int("month", ym.Month),
		zap.String("mode", string(mode)),
		zap.Int("paid", out.PaidAmount),
		zap.Int("required", out.RequiredAmount))
	return out, nil
}

// DueMonths lists every month from admission through the month of asOf that has no payment
// record, priced at the live required amount. Partially paid months are not listed.
func (s *Service) DueMonths(mobile string, asOf time.Time) ([]models.DueMonth, error) {
	var out []models.DueMonth
	err := s.store.View(func(tx *store.Tx) error {
		student, _, ok := tx.ActiveStudent(mobile)
		if !ok {
			return fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
		}
		out = Due(tx, student, s.monthOf(asOf))
		return nil
	})
	return out, err
}

// Due lists the unrecorded months of student from admission through the given month.
func Due(tx *store.Tx, student models.Student, through models.YearMonth) []models.DueMonth {
	required := RequiredAmount(tx, student.Mobile)
	var out []models.DueMonth
	for ym := AdmissionMonth(student); !through.Before(ym); ym = ym.Next() {
		if _, ok := tx.Payment(models.PaymentKey{Mobile: student.Mobile, Year: ym.Year, Month: ym.Month}); ok {
			continue
		}
		out = append(out, models.DueMonth{YearMonth: ym, Amount: required})
	}
	return out
}

// Reminder aggregates the shortfall of every partially paid month in chronological order.
func (s *Service) Reminder(mobile string) models.Reminder {
	var out models.Reminder
	_ = s.store.View(func(tx *store.Tx) error {
		out = Shortfalls(tx, mobile)
		return nil
	})
	return out
}

// Shortfalls aggregates the partially paid months of mobile inside a store transaction.
func Shortfalls(tx *store.Tx, mobile string) models.Reminder {
	var r models.Reminder
	for _, p := range tx.PaymentsFor(mobile) {
		if p.FullyPaid() {
			continue
		}
		owed := p.Outstanding()
		r.Entries = append(r.Entries, models.ReminderEntry{
			YearMonth:   models.YearMonth{Year: p.Year, Month: p.Month},
			Outstanding: owed,
		})
		r.Total += owed
	}
	return r
}

// OutstandingBalance sums the due months and the partial shortfalls of a student.
func (s *Service) OutstandingBalance(mobile string, asOf time.Time) (int, error) {
	var total int
	err := s.store.View(func(tx *store.Tx) error {
		student, _, ok := tx.ActiveStudent(mobile)
		if !ok {
			return fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
		}
		for _, d := range Due(tx, student, s.monthOf(asOf)) {
			total += d.Amount
		}
		total += Shortfalls(tx, mobile).Total
		return nil
	})
	return total, err
}

// History returns every payment record of the student in chronological order.
func (s *Service) History(mobile string) []models.PaymentRecord {
	var out []models.PaymentRecord
	_ = s.store.View(func(tx *store.Tx) error {
		out = tx.PaymentsFor(mobile)
		return nil
	})
	return out
}

// Location returns the library time zone.
func (s *Service) Location() *time.Location { return s.loc }

// AdmissionMonth returns the calendar month of the admission date.
func AdmissionMonth(student models.Student) models.YearMonth {
	return models.YearMonth{Year: student.AdmissionDate.Year(), Month: int(student.AdmissionDate.Month())}
}

func (s *Service) monthOf(t time.Time) models.YearMonth {
	local := t.In(s.loc)
	return models.YearMonth{Year: local.Year(), Month: int(local.Month())}
}
