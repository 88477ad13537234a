package students

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/metrics"
	"github.com/mamadbah2/libdesk/internal/service/booking"
	"github.com/mamadbah2/libdesk/internal/service/derivation"
	"github.com/mamadbah2/libdesk/internal/store"
)

// NewStudent is the admission form.
type NewStudent struct {
	FullName      string `json:"full_name" validate:"notblank"`
	FatherName    string `json:"father_name"`
	Address       string `json:"address"`
	Mobile        string `json:"mobile" validate:"required,len=10,numeric"`
	AdmissionDate string `json:"admission_date" validate:"required,datetime=2006-01-02"`
}

// Entry is one roster position as shown to the owner.
type Entry struct {
	Index   int             `json:"index"`
	Active  bool            `json:"active"`
	Student *models.Student `json:"student,omitempty"`
	History []string        `json:"mobile_history,omitempty"`
}

// OwnerCredentials are the configured owner login.
type OwnerCredentials struct {
	Mobile   string
	Password string
}

// Service manages the student roster.
type Service struct {
	store    *store.Store
	owner    OwnerCredentials
	validate *validator.Validate
	metrics  *metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a roster service.
func NewService(st *store.Store, owner OwnerCredentials, rec *metrics.Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    st,
		owner:    owner,
		validate: newValidator(),
		metrics:  rec,
		logger:   logger,
		now:      time.Now,
	}
}

// Add admits a new student at the end of the roster.
func (s *Service) Add(in NewStudent) (models.Student, error) {
	student, err := s.build(in)
	if err != nil {
		return models.Student{}, err
	}

	err = s.store.Update(func(tx *store.Tx) error {
		if _, _, taken := tx.ActiveStudent(student.Mobile); taken {
			return fmt.Errorf("%w: mobile %s already registered", models.ErrConflict, student.Mobile)
		}
		tx.AppendSlot(models.ActiveSlot{Student: student})
		derivation.Recompute(tx, student.Mobile)
		return nil
	})
	if err != nil {
		return models.Student{}, err
	}
	s.logger.Info("student added", zap.String("mobile", student.Mobile), zap.String("name", student.FullName))
	return student, nil
}

// Replace overwrites the roster slot at index, which may be active or removed. A changed
// mobile is carried over to the student's bookings, payments, attendance and WOW record.
func (s *Service) Replace(index int, in NewStudent) (models.Student, error) {
	student, err := s.build(in)
	if err != nil {
		return models.Student{}, err
	}

	var oldMobile string
	err = s.store.Update(func(tx *store.Tx) error {
		slot, ok := tx.Slot(index)
		if !ok {
			return fmt.Errorf("%w: roster index %d", models.ErrStudentNotFound, index)
		}
		if _, at, taken := tx.ActiveStudent(student.Mobile); taken && at != index {
			return fmt.Errorf("%w: mobile %s already registered", models.ErrConflict, student.Mobile)
		}

		var history []string
		switch v := slot.(type) {
		case models.ActiveSlot:
			oldMobile = v.Student.Mobile
			history = v.MobileHistory
			if oldMobile != student.Mobile {
				history = appendHistory(history, oldMobile)
			}
			tx.Rekey(oldMobile, student.Mobile, student.FullName)
		case models.RemovedSlot:
			history = v.MobileHistory
		}
		tx.SetSlot(index, models.ActiveSlot{Student: student, MobileHistory: history})

		for _, b := range tx.BookingsFor(student.Mobile) {
			b.Name = student.FullName
			b.Address = student.Address
			tx.PutBooking(b)
		}
		derivation.Recompute(tx, student.Mobile)
		return nil
	})
	if err != nil {
		return models.Student{}, err
	}
	s.logger.Info("student replaced",
		zap.Int("index", index),
		zap.String("old_mobile", oldMobile),
		zap.String("mobile", student.Mobile))
	return student, nil
}

// Remove tombstones the roster slot at index, clearing the student's bookings and WOW record.
func (s *Service) Remove(index int) error {
	var mobile string
	err := s.store.Update(func(tx *store.Tx) error {
		slot, ok := tx.Slot(index)
		if !ok {
			return fmt.Errorf("%w: roster index %d", models.ErrStudentNotFound, index)
		}
		active, ok := slot.(models.ActiveSlot)
		if !ok {
			return fmt.Errorf("%w: roster index %d already removed", models.ErrStudentNotFound, index)
		}
		mobile = active.Student.Mobile

		booking.Release(tx, mobile)
		tx.DeleteWow(mobile)
		s.metrics.SetOccupied(len(tx.AllBookings()))
		tx.SetSlot(index, models.RemovedSlot{
			MobileHistory: appendHistory(active.MobileHistory, mobile),
			RemovedAt:     s.now(),
		})
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("student removed", zap.Int("index", index), zap.String("mobile", mobile))
	return nil
}

// List returns every roster position in order.
func (s *Service) List() []Entry {
	var out []Entry
	_ = s.store.View(func(tx *store.Tx) error {
		for i, slot := range tx.Slots() {
			entry := Entry{Index: i}
			switch v := slot.(type) {
			case models.ActiveSlot:
				st := v.Student
				entry.Active = true
				entry.Student = &st
				entry.History = v.MobileHistory
			case models.RemovedSlot:
				entry.History = v.MobileHistory
			}
			out = append(out, entry)
		}
		return nil
	})
	return out
}

// Get returns the active student owning mobile.
func (s *Service) Get(mobile string) (models.Student, error) {
	var (
		student models.Student
		ok      bool
	)
	_ = s.store.View(func(tx *store.Tx) error {
		student, _, ok = tx.ActiveStudent(mobile)
		return nil
	})
	if !ok {
		return models.Student{}, fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
	}
	return student, nil
}

// Authenticate resolves a login as the owner or as an active student.
func (s *Service) Authenticate(username, password string) (models.Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Principal{}, models.ErrInvalidCredentials
	}

	if s.owner.Mobile != "" && username == s.owner.Mobile && secureEqual(password, s.owner.Password) {
		return models.Principal{Mobile: s.owner.Mobile, Name: "Owner", Role: models.RoleOwner}, nil
	}

	var (
		principal models.Principal
		found     bool
	)
	_ = s.store.View(func(tx *store.Tx) error {
		for _, st := range tx.ActiveStudents() {
			if st.Username == username && secureEqual(password, st.Password) {
				principal = models.Principal{Mobile: st.Mobile, Name: st.FullName, Role: models.RoleStudent}
				found = true
				return nil
			}
		}
		return nil
	})
	if !found {
		s.logger.Debug("login rejected", zap.String("username", username))
		return models.Principal{}, models.ErrInvalidCredentials
	}
	return principal, nil
}

func (s *Service) build(in NewStudent) (models.Student, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.AdmissionDate = strings.TrimSpace(in.AdmissionDate)
	if err := s.validate.Struct(in); err != nil {
		return models.Student{}, validationError(err)
	}
	if !models.ValidMobile(in.Mobile) {
		return models.Student{}, fmt.Errorf("%w: mobile must be a 10 digit number", models.ErrInvalidInput)
	}

	admitted, err := time.Parse(models.DateLayout, in.AdmissionDate)
	if err != nil {
		return models.Student{}, fmt.Errorf("%w: admission date %q", models.ErrInvalidInput, in.AdmissionDate)
	}
	return models.Student{
		FullName:      in.FullName,
		FatherName:    strings.TrimSpace(in.FatherName),
		Address:       strings.TrimSpace(in.Address),
		Mobile:        in.Mobile,
		AdmissionDate: admitted,
		Username:      in.Mobile,
		Password:      models.GeneratePassword(in.FullName, in.Mobile),
	}, nil
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func appendHistory(history []string, mobile string) []string {
	out := make([]string, 0, len(history)+1)
	out = append(out, history...)
	if len(out) > 0 && out[len(out)-1] == mobile {
		return out
	}
	return append(out, mobile)
}
