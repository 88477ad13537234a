package booking

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/service/derivation"
	"github.com/mamadbah2/libdesk/internal/store"
)

// SetOverride updates the fee overrides of a student holding at least one shift. A nil
// value leaves that override unchanged; zero clears it.
func (s *Service) SetOverride(mobile string, customRate, fixedTotal *int) (models.WowRecord, error) {
	var out models.WowRecord
	err := s.store.Update(func(tx *store.Tx) error {
		if _, _, ok := tx.ActiveStudent(mobile); !ok {
			return fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
		}
		if (customRate != nil && *customRate < 0) || (fixedTotal != nil && *fixedTotal < 0) {
			return fmt.Errorf("%w: overrides must not be negative", models.ErrInvalidAmount)
		}
		rec, ok := tx.Wow(mobile)
		if !ok || rec.Shifts == 0 {
			return fmt.Errorf("%w: allocate a seat and shift first", models.ErrInvalidInput)
		}

		if customRate != nil {
			rec.CustomRate = *customRate
		}
		if fixedTotal != nil {
			rec.FixedTotalPayment = *fixedTotal
		}
		tx.PutWow(rec)
		out = derivation.Recompute(tx, mobile)
		return nil
	})
	if err != nil {
		s.logger.Debug("override rejected", zap.String("mobile", mobile), zap.Error(err))
		return out, err
	}
	s.logger.Info("override set",
		zap.String("mobile", mobile),
		zap.Int("custom_rate", out.CustomRate),
		zap.Int("fixed_total", out.FixedTotalPayment),
		zap.Int("payment", out.Payment))
	return out, nil
}

// ClearOverride resets both overrides to the default fee formula.
func (s *Service) ClearOverride(mobile string) (models.WowRecord, error) {
	var out models.WowRecord
	err := s.store.Update(func(tx *store.Tx) error {
		if _, _, ok := tx.ActiveStudent(mobile); !ok {
			return fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
		}
		rec := tx.EnsureWow(mobile)
		rec.Overrides = models.Overrides{}
		tx.PutWow(rec)
		out = derivation.Recompute(tx, mobile)
		return nil
	})
	if err == nil {
		s.logger.Info("override cleared", zap.String("mobile", mobile), zap.Int("payment", out.Payment))
	}
	return out, err
}
