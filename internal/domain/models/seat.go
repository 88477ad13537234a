package models

import (
	"fmt"
	"strconv"
	"strings"
)

// SeatCommandKind enumerates the allocations a seat expression can request.
type SeatCommandKind string

const (
	SeatFullDay     SeatCommandKind = "full_day"
	SeatSingleShift SeatCommandKind = "single_shift"
	SeatClearAll    SeatCommandKind = "clear_all"
)

// SeatCommand is a validated seat expression.
type SeatCommand struct {
	Kind  SeatCommandKind
	Seat  int
	Shift int
}

// ParseSeatCommand parses the free-text seat input of the allocation table:
// "5.2" books seat 5 shift 2, "5" books all four shifts of seat 5, "" clears every booking.
func ParseSeatCommand(input string) (SeatCommand, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return SeatCommand{Kind: SeatClearAll}, nil
	}

	if seatPart, shiftPart, single := strings.Cut(trimmed, "."); single {
		seat, err := strconv.Atoi(seatPart)
		if err != nil || seat <= 0 {
			return SeatCommand{}, fmt.Errorf("%w: use seat.shift, e.g. 5.1 (got %q)", ErrInvalidInput, input)
		}
		shift, err := strconv.Atoi(shiftPart)
		if err != nil || !ValidShift(shift) {
			return SeatCommand{}, fmt.Errorf("%w: use seat.shift, e.g. 5.1 (got %q)", ErrInvalidInput, input)
		}
		return SeatCommand{Kind: SeatSingleShift, Seat: seat, Shift: shift}, nil
	}

	seat, err := strconv.Atoi(trimmed)
	if err != nil || seat <= 0 {
		return SeatCommand{}, fmt.Errorf("%w: seat number %q", ErrInvalidInput, input)
	}
	return SeatCommand{Kind: SeatFullDay, Seat: seat}, nil
}

// String renders the command back into its seat expression.
func (c SeatCommand) String() string {
	switch c.Kind {
	case SeatSingleShift:
		return fmt.Sprintf("%d.%d", c.Seat, c.Shift)
	case SeatFullDay:
		return strconv.Itoa(c.Seat)
	}
	return ""
}
