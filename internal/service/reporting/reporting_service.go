package reporting

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/service/payments"
	"github.com/mamadbah2/libdesk/internal/store"
)

const recentMonths = 3

// MonthCell is the payment state of one student month.
type MonthCell struct {
	models.YearMonth
	Status   models.MonthStatus `json:"status"`
	Paid     int                `json:"paid"`
	Required int                `json:"required"`
}

// DuesRow is one line of the payment due table.
type DuesRow struct {
	Index         int               `json:"index"`
	Mobile        string            `json:"mobile"`
	FullName      string            `json:"full_name"`
	Address       string            `json:"address"`
	Admission     string            `json:"admission_date"`
	Wow           models.WowRecord  `json:"wow"`
	DueCount      int               `json:"due_count"`
	DueStatus     string            `json:"due_status"`
	Reminder      string            `json:"reminder"`
	ReminderTotal int               `json:"reminder_total"`
	DueMonths     []models.DueMonth `json:"due_months"`
	Outstanding   int               `json:"outstanding"`
	Recent        []MonthCell       `json:"recent"`
}

// YearRow is one student line of the yearly payment grid.
type YearRow struct {
	Mobile    string      `json:"mobile"`
	FullName  string      `json:"full_name"`
	Admission string      `json:"admission_date"`
	Cells     []MonthCell `json:"cells"`
}

// Service exposes dues summaries for the owner table, the student dashboard and reminders.
type Service struct {
	store  *store.Store
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(st *store.Store, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: st, loc: loc, logger: logger, now: time.Now}
}

// DuesTable returns a dues row for every active student in roster order.
func (s *Service) DuesTable() []DuesRow {
	today := s.today()
	var rows []DuesRow
	_ = s.store.View(func(tx *store.Tx) error {
		for i, slot := range tx.Slots() {
			active, ok := slot.(models.ActiveSlot)
			if !ok {
				continue
			}
			row := buildRow(tx, active.Student, today)
			row.Index = i
			rows = append(rows, row)
		}
		return nil
	})
	s.logger.Debug("dues table built", zap.Int("rows", len(rows)))
	return rows
}

// DuesRow returns the dues row of one active student.
func (s *Service) DuesRow(mobile string) (DuesRow, error) {
	today := s.today()
	var row DuesRow
	err := s.store.View(func(tx *store.Tx) error {
		student, index, ok := tx.ActiveStudent(mobile)
		if !ok {
			return fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
		}
		row = buildRow(tx, student, today)
		row.Index = index
		return nil
	})
	return row, err
}

// YearGrid returns twelve month cells per active student for the given year.
func (s *Service) YearGrid(year int) []YearRow {
	var rows []YearRow
	_ = s.store.View(func(tx *store.Tx) error {
		for _, st := range tx.ActiveStudents() {
			row := YearRow{
				Mobile:    st.Mobile,
				FullName:  st.FullName,
				Admission: st.AdmissionDate.Format(models.DateLayout),
				Cells:     make([]MonthCell, 0, 12),
			}
			for m := 1; m <= 12; m++ {
				row.Cells = append(row.Cells, cell(tx, st, models.YearMonth{Year: year, Month: m}))
			}
			rows = append(rows, row)
		}
		return nil
	})
	return rows
}

// ReminderMessage renders the WhatsApp text reminding a student of what is owed. It returns
// an empty string when nothing is owed.
func ReminderMessage(row DuesRow) string {
	if row.Outstanding <= 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s, this is a fee reminder from the library.\n", row.FullName)
	if len(row.DueMonths) > 0 {
		months := make([]string, 0, len(row.DueMonths))
		for _, d := range row.DueMonths {
			months = append(months, d.String())
		}
		fmt.Fprintf(&b, "Unpaid months: %s.\n", strings.Join(months, ", "))
	}
	if row.ReminderTotal > 0 {
		fmt.Fprintf(&b, "Pending balance: %s.\n", row.Reminder)
	}
	fmt.Fprintf(&b, "Total due: Rs %d.", row.Outstanding)
	return b.String()
}

// Summary renders a dues row as a short owner-facing text.
func Summary(row DuesRow) string {
	return fmt.Sprintf("%s (%s)\nSeat %s, %s, fee %d\nDue months: %d (%s)\nReminder: %s\nOutstanding: %d",
		row.FullName, row.Mobile,
		orDash(row.Wow.SeatNo), row.Wow.BatchString, row.Wow.Payment,
		row.DueCount, row.DueStatus,
		row.Reminder,
		row.Outstanding)
}

func buildRow(tx *store.Tx, st models.Student, today time.Time) DuesRow {
	wow, ok := tx.Wow(st.Mobile)
	if !ok {
		wow = models.NewWowRecord(st.Mobile)
	}
	current := models.YearMonth{Year: today.Year(), Month: int(today.Month())}
	due := payments.Due(tx, st, current)
	shortfalls := payments.Shortfalls(tx, st.Mobile)

	row := DuesRow{
		Mobile:        st.Mobile,
		FullName:      st.FullName,
		Address:       st.Address,
		Admission:     st.AdmissionDate.Format(models.DateLayout),
		Wow:           wow,
		DueCount:      dueCount(st.AdmissionDate, today, len(tx.PaymentsFor(st.Mobile))),
		DueStatus:     dueStatus(st.AdmissionDate, today),
		Reminder:      shortfalls.String(),
		ReminderTotal: shortfalls.Total,
		DueMonths:     due,
		Outstanding:   shortfalls.Total,
	}
	for _, d := range due {
		row.Outstanding += d.Amount
	}

	ym := current
	for i := 0; i < recentMonths; i++ {
		row.Recent = append(row.Recent, cell(tx, st, ym))
		ym = previous(ym)
	}
	return row
}

func cell(tx *store.Tx, st models.Student, ym models.YearMonth) MonthCell {
	c := MonthCell{YearMonth: ym}
	if ym.Before(payments.AdmissionMonth(st)) {
		c.Status = models.MonthPreAdmission
		return c
	}
	c.Status = payments.Classify(tx, st.Mobile, ym)
	if rec, ok := tx.Payment(models.PaymentKey{Mobile: st.Mobile, Year: ym.Year, Month: ym.Month}); ok {
		c.Paid = rec.PaidAmount
		c.Required = rec.RequiredAmount
	}
	return c
}

// dueCount is the number of whole months since admission less the number of payment
// records, never negative.
func dueCount(admission, today time.Time, records int) int {
	months := (today.Year()-admission.Year())*12 + int(today.Month()) - int(admission.Month())
	if today.Day() < admission.Day() {
		months--
	}
	if n := months - records; n > 0 {
		return n
	}
	return 0
}

// dueStatus compares today with this month's anniversary of the admission day.
func dueStatus(admission, today time.Time) string {
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(today.Year(), today.Month(), admission.Day(), 0, 0, 0, 0, time.UTC)
	days := int(dueDate.Sub(todayDate).Hours() / 24)
	switch {
	case days > 0:
		return fmt.Sprintf("%d days after", days)
	case days == 0:
		return "Due Today"
	default:
		return fmt.Sprintf("%d days late", -days)
	}
}

func previous(ym models.YearMonth) models.YearMonth {
	if ym.Month == 1 {
		return models.YearMonth{Year: ym.Year - 1, Month: 12}
	}
	return models.YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}
