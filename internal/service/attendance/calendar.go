package attendance

import (
	"fmt"
	"time"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/store"
)

// Calendar returns one cell per day of the month. Days after today are Future.
func (s *Service) Calendar(mobile string, ym models.YearMonth) ([]models.CalendarDay, error) {
	if ym.Month < 1 || ym.Month > 12 {
		return nil, fmt.Errorf("%w: month %d", models.ErrInvalidInput, ym.Month)
	}
	today := s.Today().Format(models.DateLayout)

	var days []models.CalendarDay
	err := s.store.View(func(tx *store.Tx) error {
		if _, _, ok := tx.ActiveStudent(mobile); !ok {
			return fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
		}
		for _, date := range monthDates(ym) {
			day := models.CalendarDay{Date: date, Status: models.DayAbsent}
			switch rec, ok := tx.Attendance(models.AttendanceKey{Mobile: mobile, Date: date}); {
			case date > today:
				day.Status = models.DayFuture
			case ok && len(rec.Sessions) > 0:
				day.Status = models.DayPresent
				day.Sessions = rec.Sessions
			}
			days = append(days, day)
		}
		return nil
	})
	return days, err
}

// MonthlyStats counts present and absent days of the month up to and including today.
func (s *Service) MonthlyStats(mobile string, ym models.YearMonth) (models.MonthlyStats, error) {
	days, err := s.Calendar(mobile, ym)
	if err != nil {
		return models.MonthlyStats{}, err
	}
	return tally(days), nil
}

// MonthlyStatsAll returns the monthly stats of every active student in roster order.
func (s *Service) MonthlyStatsAll(ym models.YearMonth) ([]StudentStats, error) {
	var students []models.Student
	_ = s.store.View(func(tx *store.Tx) error {
		students = tx.ActiveStudents()
		return nil
	})

	out := make([]StudentStats, 0, len(students))
	for _, st := range students {
		stats, err := s.MonthlyStats(st.Mobile, ym)
		if err != nil {
			return nil, err
		}
		out = append(out, StudentStats{Mobile: st.Mobile, FullName: st.FullName, MonthlyStats: stats})
	}
	return out, nil
}

// History returns every attendance record of the student, newest day first.
func (s *Service) History(mobile string) []models.AttendanceRecord {
	var out []models.AttendanceRecord
	_ = s.store.View(func(tx *store.Tx) error {
		out = tx.AttendanceFor(mobile)
		return nil
	})
	return out
}

func tally(days []models.CalendarDay) models.MonthlyStats {
	var stats models.MonthlyStats
	for _, d := range days {
		switch d.Status {
		case models.DayPresent:
			stats.Present++
		case models.DayAbsent:
			stats.Absent++
		}
	}
	return stats
}

func monthDates(ym models.YearMonth) []string {
	first := time.Date(ym.Year, time.Month(ym.Month), 1, 0, 0, 0, 0, time.UTC)
	var out []string
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(models.DateLayout))
	}
	return out
}
