package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// Usage lists the owner console commands.
const Usage = "Commands:\n" +
	"/seat <mobile> <seat>|<seat.shift> (no seat clears bookings)\n" +
	"/pay <mobile> <YYYY-MM> full|<amount>\n" +
	"/dues [mobile]\n" +
	"/rate <mobile> <rate per shift>\n" +
	"/fixed <mobile> <monthly total>\n" +
	"/clear <mobile> (reset fee overrides)"

// BookingAdapter defines the booking operations required by the dispatcher.
type BookingAdapter interface {
	ApplySeatCommand(mobile, input string) (models.WowRecord, error)
	SetOverride(mobile string, customRate, fixedTotal *int) (models.WowRecord, error)
	ClearOverride(mobile string) (models.WowRecord, error)
}

// PaymentAdapter defines the payment operations required by the dispatcher.
type PaymentAdapter interface {
	MarkPayment(mobile string, ym models.YearMonth, mode models.PaymentMode, amount int) (models.PaymentRecord, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	DuesRow(mobile string) (reporting.DuesRow, error)
	DuesTable() []reporting.DuesRow
}

// Dispatcher executes parsed owner commands against the library core.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	booking   BookingAdapter
	payments  PaymentAdapter
	reporting ReportingAdapter
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(booking BookingAdapter, payments PaymentAdapter, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		booking:   booking,
		payments:  payments,
		reporting: reporting,
		logger:    logger,
	}
}

// HandleCommand applies the command and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Any("args", cmd.Args))

	switch cmd.Type {
	case models.CommandSeat:
		if len(cmd.Args) == 0 {
			return "", ErrInvalidArguments
		}
		expr := strings.Join(cmd.Args[1:], "")
		rec, err := s.booking.ApplySeatCommand(cmd.Args[0], expr)
		if err != nil {
			return "", err
		}
		return "Seat updated.\n" + describeWow(rec), nil
	case models.CommandPay:
		mobile, ym, mode, amount, err := parsePay(cmd)
		if err != nil {
			return "", err
		}
		rec, err := s.payments.MarkPayment(mobile, ym, mode, amount)
		if err != nil {
			return "", err
		}
		message := fmt.Sprintf("Payment for %s %s: paid %d of %d.", mobile, ym, rec.PaidAmount, rec.RequiredAmount)
		if summary := s.safeSummary(ctx, mobile); summary != "" {
			message += "\n" + summary
		}
		return message, nil
	case models.CommandDues:
		if len(cmd.Args) == 0 {
			return s.duesOverview(), nil
		}
		row, err := s.reporting.DuesRow(cmd.Args[0])
		if err != nil {
			return "", err
		}
		return reporting.Summary(row), nil
	case models.CommandRate, models.CommandFixed:
		if len(cmd.Args) < 2 {
			return "", ErrInvalidArguments
		}
		value, err := strconv.Atoi(cmd.Args[1])
		if err != nil {
			return "", ErrInvalidArguments
		}
		var rec models.WowRecord
		if cmd.Type == models.CommandRate {
			rec, err = s.booking.SetOverride(cmd.Args[0], &value, nil)
		} else {
			rec, err = s.booking.SetOverride(cmd.Args[0], nil, &value)
		}
		if err != nil {
			return "", err
		}
		return "Override saved.\n" + describeWow(rec), nil
	case models.CommandClear:
		if len(cmd.Args) == 0 {
			return "", ErrInvalidArguments
		}
		rec, err := s.booking.ClearOverride(cmd.Args[0])
		if err != nil {
			return "", err
		}
		return "Overrides cleared.\n" + describeWow(rec), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func parsePay(cmd models.Command) (string, models.YearMonth, models.PaymentMode, int, error) {
	if len(cmd.Args) < 3 {
		return "", models.YearMonth{}, "", 0, ErrInvalidArguments
	}
	ym, err := models.ParseYearMonth(cmd.Args[1])
	if err != nil {
		return "", models.YearMonth{}, "", 0, err
	}
	if mode, err := models.ParsePaymentMode(cmd.Args[2]); err == nil && mode == models.PaymentFull {
		return cmd.Args[0], ym, models.PaymentFull, 0, nil
	}
	amount, err := strconv.Atoi(cmd.Args[2])
	if err != nil {
		return "", models.YearMonth{}, "", 0, fmt.Errorf("%w: amount %q", models.ErrInvalidAmount, cmd.Args[2])
	}
	return cmd.Args[0], ym, models.PaymentPartial, amount, nil
}

func (s *Service) duesOverview() string {
	var lines []string
	total := 0
	for _, row := range s.reporting.DuesTable() {
		if row.Outstanding <= 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%s): %d", row.FullName, row.Mobile, row.Outstanding))
		total += row.Outstanding
	}
	if len(lines) == 0 {
		return "No dues outstanding."
	}
	return fmt.Sprintf("Dues for %d students, total %d:\n%s", len(lines), total, strings.Join(lines, "\n"))
}

func (s *Service) safeSummary(_ context.Context, mobile string) string {
	if s.reporting == nil {
		return ""
	}
	row, err := s.reporting.DuesRow(mobile)
	if err != nil {
		s.logger.Debug("dues summary failed", zap.Error(err))
		return ""
	}
	return "Reminder: " + row.Reminder
}

func describeWow(rec models.WowRecord) string {
	seat := rec.SeatNo
	if seat == "" {
		seat = "-"
	}
	return fmt.Sprintf("%s: seat %s, %s, %d shifts, fee %d", rec.Mobile, seat, rec.BatchString, rec.Shifts, rec.Payment)
}
