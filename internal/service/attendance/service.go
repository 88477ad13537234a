package attendance

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/metrics"
	"github.com/mamadbah2/libdesk/internal/store"
)

// ScanResult describes the effect of an accepted scan.
type ScanResult struct {
	Direction models.ScanDirection   `json:"direction"`
	At        time.Time               `json:"at"`
	Record    models.AttendanceRecord `json:"record"`
}

// StudentStats is one row of the admin attendance table.
type StudentStats struct {
	Mobile   string `json:"mobile"`
	FullName string `json:"full_name"`
	models.MonthlyStats
}

// Service runs the geofenced QR attendance state machine.
type Service struct {
	store   *store.Store
	metrics *metrics.Recorder
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewService wires an attendance service. loc defines the local calendar day.
func NewService(st *store.Store, rec *metrics.Recorder, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:   st,
		metrics: rec,
		loc:     loc,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// ConfigureLocation sets the library geofence and issues a QR token that differs from
// the previous one.
func (s *Service) ConfigureLocation(point models.GeoPoint, radius float64) (models.LibraryLocation, error) {
	if !validPoint(point) {
		return models.LibraryLocation{}, fmt.Errorf("%w: coordinates %.6f,%.6f", models.ErrInvalidInput, point.Lat, point.Lng)
	}
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}

	var out models.LibraryLocation
	_ = s.store.Update(func(tx *store.Tx) error {
		prev := tx.Location()
		stamp := s.now().UnixMilli()
		token := qrToken(point, stamp)
		for token == prev.QRToken {
			stamp++
			token = qrToken(point, stamp)
		}
		out = models.LibraryLocation{
			GeoPoint:     point,
			RadiusMeters: radius,
			Configured:   true,
			QRToken:      token,
		}
		tx.SetLocation(out)
		return nil
	})
	s.logger.Info("library location configured",
		zap.Float64("lat", point.Lat),
		zap.Float64("lng", point.Lng),
		zap.Float64("radius_m", radius))
	return out, nil
}

func qrToken(p models.GeoPoint, unixMilli int64) string {
	return fmt.Sprintf("LIB_AUTO_%.5f_%.5f_%d", p.Lat, p.Lng, unixMilli)
}

// Location returns the current library location.
func (s *Service) Location() models.LibraryLocation {
	var loc models.LibraryLocation
	_ = s.store.View(func(tx *store.Tx) error {
		loc = tx.Location()
		return nil
	})
	return loc
}

// ValidateScan checks the scanned token against the current one, then the distance between
// the student and the library against the configured radius.
func (s *Service) ValidateScan(token string, at models.GeoPoint) error {
	var err error
	_ = s.store.View(func(tx *store.Tx) error {
		err = validate(tx.Location(), token, at)
		return nil
	})
	return err
}

func validate(loc models.LibraryLocation, token string, at models.GeoPoint) error {
	if !loc.Configured {
		return models.ErrLocationNotConfigured
	}
	if token != loc.QRToken {
		return models.ErrStaleToken
	}
	if d := Distance(loc.GeoPoint, at); d > loc.RadiusMeters {
		return fmt.Errorf("%w: %.1fm away, allowed %.0fm", models.ErrOutOfRange, d, loc.RadiusMeters)
	}
	return nil
}

// RecordScan validates a scan and toggles today's session of the student: the first scan
// clocks in, a scan while a session is open clocks out, and a scan after that clocks in again.
func (s *Service) RecordScan(mobile, token string, at models.GeoPoint) (ScanResult, error) {
	var out ScanResult
	err := s.store.Update(func(tx *store.Tx) error {
		if _, _, ok := tx.ActiveStudent(mobile); !ok {
			return fmt.Errorf("%w: %s", models.ErrStudentNotFound, mobile)
		}
		if err := validate(tx.Location(), token, at); err != nil {
			return err
		}

		now := s.now().In(s.loc)
		key := models.AttendanceKey{Mobile: mobile, Date: now.Format(models.DateLayout)}
		rec, ok := tx.Attendance(key)
		if !ok {
			rec = models.AttendanceRecord{Mobile: mobile, Date: key.Date}
		}

		if i := rec.OpenSession(); i >= 0 {
			out.Direction = models.ScanOut
			rec.Sessions[i].Out = &now
		} else {
			out.Direction = models.ScanIn
			rec.Sessions = append(rec.Sessions, models.Session{ID: s.newID(), In: now})
		}
		tx.PutAttendance(rec)
		out.At = now
		out.Record = rec
		return nil
	})
	s.metrics.Scan(scanLabel(err))
	if err != nil {
		s.logger.Debug("scan rejected", zap.String("mobile", mobile), zap.Error(err))
		return ScanResult{}, err
	}
	s.logger.Info("attendance marked",
		zap.String("mobile", mobile),
		zap.String("direction", string(out.Direction)),
		zap.Time("at", out.At))
	return out, nil
}

// GeolocationFailed records a scan that never reached validation because the device could
// not supply a position. It returns the typed error for the browser-style code.
func (s *Service) GeolocationFailed(mobile string, code int, message string) error {
	err := GeolocationError(code, message)
	s.metrics.Scan(scanLabel(err))
	s.logger.Debug("scan without position", zap.String("mobile", mobile), zap.Int("code", code), zap.Error(err))
	return err
}

func scanLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, models.ErrStaleToken):
		return "stale_token"
	case errors.Is(err, models.ErrOutOfRange):
		return "out_of_range"
	case errors.Is(err, models.ErrLocationNotConfigured):
		return "not_configured"
	case errors.Is(err, models.ErrPermissionDenied),
		errors.Is(err, models.ErrPositionUnavailable),
		errors.Is(err, models.ErrTimeout):
		return "geolocation"
	default:
		return metrics.ResultError
	}
}

// Today returns the current local calendar date.
func (s *Service) Today() time.Time {
	return s.now().In(s.loc)
}
