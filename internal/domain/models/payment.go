package models

import (
	"fmt"
	"strconv"
	"strings"
)

// PaymentKey identifies the payment record of one student month.
type PaymentKey struct {
	Mobile string
	Year   int
	Month  int
}

// PaymentRecord tracks what a student paid for a month. RequiredAmount is frozen when the
// record is written.
type PaymentRecord struct {
	Mobile         string `json:"mobile"`
	Year           int    `json:"year"`
	Month          int    `json:"month"`
	PaidAmount     int    `json:"paid_amount"`
	RequiredAmount int    `json:"required_amount"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// Key returns the record key.
func (p PaymentRecord) Key() PaymentKey {
	return PaymentKey{Mobile: p.Mobile, Year: p.Year, Month: p.Month}
}

// FullyPaid reports whether the paid amount covers the required amount.
func (p PaymentRecord) FullyPaid() bool {
	return p.PaidAmount >= p.RequiredAmount
}

// Outstanding returns the unpaid remainder, never negative.
func (p PaymentRecord) Outstanding() int {
	if p.FullyPaid() {
		return 0
	}
	return p.RequiredAmount - p.PaidAmount
}

// MonthStatus classifies a student month.
type MonthStatus string

const (
	MonthNoRecord     MonthStatus = "no_record"
	MonthPartial      MonthStatus = "partial"
	MonthFull         MonthStatus = "full"
	MonthPreAdmission MonthStatus = "pre_admission"
)

// PaymentMode selects how markPayment computes the new paid amount.
type PaymentMode string

const (
	PaymentFull    PaymentMode = "FULL"
	PaymentPartial PaymentMode = "PARTIAL"
)

// ParsePaymentMode accepts "full" and "partial" in any case.
func ParsePaymentMode(s string) (PaymentMode, error) {
	switch PaymentMode(strings.ToUpper(strings.TrimSpace(s))) {
	case PaymentFull:
		return PaymentFull, nil
	case PaymentPartial:
		return PaymentPartial, nil
	}
	return "", fmt.Errorf("%w: payment mode %q", ErrInvalidInput, s)
}

// YearMonth is a calendar month.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// String renders "Sep 2024".
func (ym YearMonth) String() string {
	return fmt.Sprintf("%s %d", MonthAbbrev(ym.Month), ym.Year)
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return YearMonth{}, fmt.Errorf("%w: month %q", ErrInvalidInput, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: month %q", ErrInvalidInput, s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: month %q", ErrInvalidInput, s)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// DueMonth is a month with no payment record at all, priced at the live required amount.
type DueMonth struct {
	YearMonth
	Amount int `json:"amount"`
}

// ReminderEntry is the shortfall of one partially paid month.
type ReminderEntry struct {
	YearMonth
	Outstanding int `json:"outstanding"`
}

// Reminder aggregates every partially paid month of a student in chronological order.
type Reminder struct {
	Entries []ReminderEntry `json:"entries"`
	Total   int             `json:"total"`
}

// String renders the compact indicator: "200(Sep)" for one month, "200+100 (Aug,Sep)" for
// more, "-" for none.
func (r Reminder) String() string {
	switch len(r.Entries) {
	case 0:
		return "-"
	case 1:
		return fmt.Sprintf("%d(%s)", r.Entries[0].Outstanding, MonthAbbrev(r.Entries[0].Month))
	}
	amounts := make([]string, 0, len(r.Entries))
	months := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		amounts = append(amounts, strconv.Itoa(e.Outstanding))
		months = append(months, MonthAbbrev(e.Month))
	}
	return fmt.Sprintf("%s (%s)", strings.Join(amounts, "+"), strings.Join(months, ","))
}
