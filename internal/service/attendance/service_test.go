package attendance

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/store"
)

const mobile = "9876543210"

var library = models.GeoPoint{Lat: 25.59410, Lng: 85.13760}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setup(t *testing.T) (*Service, *clock) {
	t.Helper()
	st := store.New(models.LibraryLocation{}, 50)
	require.NoError(t, st.Update(func(tx *store.Tx) error {
		tx.AppendSlot(models.ActiveSlot{Student: models.Student{FullName: "Pooja Verma", Mobile: mobile}})
		return nil
	}))
	c := &clock{t: time.Date(2024, 9, 10, 9, 0, 0, 0, time.UTC)}
	svc := NewService(st, nil, time.UTC, nil)
	svc.now = c.now
	ids := 0
	svc.newID = func() string {
		ids++
		return fmt.Sprintf("s%d", ids)
	}
	return svc, c
}

func configure(t *testing.T, svc *Service) models.LibraryLocation {
	t.Helper()
	loc, err := svc.ConfigureLocation(library, 50)
	require.NoError(t, err)
	return loc
}

func TestConfigureLocationIssuesDistinctTokens(t *testing.T) {
	svc, _ := setup(t)
	assert.False(t, svc.Location().Configured)
	assert.Equal(t, models.StaticQRToken, svc.Location().QRToken)

	first := configure(t, svc)
	second := configure(t, svc)

	assert.Equal(t, "LIB_AUTO_25.59410_85.13760_1725958800000", first.QRToken)
	assert.NotEqual(t, first.QRToken, second.QRToken)
	assert.Equal(t, second.QRToken, svc.Location().QRToken)
}

func TestConfigureLocationDefaults(t *testing.T) {
	svc, _ := setup(t)

	loc, err := svc.ConfigureLocation(library, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultRadiusMeters, loc.RadiusMeters)

	_, err = svc.ConfigureLocation(models.GeoPoint{Lat: 91, Lng: 0}, 10)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestValidateScan(t *testing.T) {
	svc, _ := setup(t)
	assert.ErrorIs(t, svc.ValidateScan(models.StaticQRToken, library), models.ErrLocationNotConfigured)

	loc := configure(t, svc)
	farAway := models.GeoPoint{Lat: 25.60410, Lng: 85.13760}

	assert.NoError(t, svc.ValidateScan(loc.QRToken, library))
	assert.ErrorIs(t, svc.ValidateScan(loc.QRToken+"x", library), models.ErrStaleToken)
	assert.ErrorIs(t, svc.ValidateScan(loc.QRToken[:len(loc.QRToken)-1], farAway), models.ErrStaleToken)
	assert.ErrorIs(t, svc.ValidateScan(loc.QRToken, farAway), models.ErrOutOfRange)
}

func TestOldTokenIsStaleAfterReconfiguring(t *testing.T) {
	svc, _ := setup(t)
	old := configure(t, svc)
	configure(t, svc)

	assert.ErrorIs(t, svc.ValidateScan(old.QRToken, library), models.ErrStaleToken)
}

func TestRecordScanTogglesSessions(t *testing.T) {
	svc, c := setup(t)
	loc := configure(t, svc)

	in, err := svc.RecordScan(mobile, loc.QRToken, library)
	require.NoError(t, err)
	assert.Equal(t, models.ScanIn, in.Direction)

	c.t = c.t.Add(3 * time.Hour)
	out, err := svc.RecordScan(mobile, loc.QRToken, library)
	require.NoError(t, err)
	assert.Equal(t, models.ScanOut, out.Direction)
	require.Len(t, out.Record.Sessions, 1)
	require.NotNil(t, out.Record.Sessions[0].Out)
	assert.Equal(t, c.t, *out.Record.Sessions[0].Out)

	c.t = c.t.Add(time.Hour)
	again, err := svc.RecordScan(mobile, loc.QRToken, library)
	require.NoError(t, err)
	assert.Equal(t, models.ScanIn, again.Direction)
	require.Len(t, again.Record.Sessions, 2)
	assert.Equal(t, "s2", again.Record.Sessions[1].ID)
	assert.True(t, again.Record.Sessions[1].Open())
}

func TestRecordScanRejectsWithoutStateChange(t *testing.T) {
	svc, _ := setup(t)
	loc := configure(t, svc)

	_, err := svc.RecordScan(mobile, "LIB_AUTO_old", library)
	assert.ErrorIs(t, err, models.ErrStaleToken)
	_, err = svc.RecordScan("1111111111", loc.QRToken, library)
	assert.ErrorIs(t, err, models.ErrStudentNotFound)

	assert.Empty(t, svc.History(mobile))
}

func TestRecordScanUsesLocalDate(t *testing.T) {
	svc, c := setup(t)
	svc.loc = time.FixedZone("IST", 5*3600+1800)
	loc := configure(t, svc)

	c.t = time.Date(2024, 9, 10, 20, 0, 0, 0, time.UTC)
	res, err := svc.RecordScan(mobile, loc.QRToken, library)
	require.NoError(t, err)

	assert.Equal(t, "2024-09-11", res.Record.Date)
}

func TestCalendarAndMonthlyStats(t *testing.T) {
	svc, c := setup(t)
	loc := configure(t, svc)

	for _, day := range []int{2, 5, 10} {
		c.t = time.Date(2024, 9, day, 8, 0, 0, 0, time.UTC)
		_, err := svc.RecordScan(mobile, loc.QRToken, library)
		require.NoError(t, err)
	}

	days, err := svc.Calendar(mobile, models.YearMonth{Year: 2024, Month: 9})
	require.NoError(t, err)
	require.Len(t, days, 30)
	assert.Equal(t, models.DayAbsent, days[0].Status)
	assert.Equal(t, models.DayPresent, days[1].Status)
	assert.Len(t, days[1].Sessions, 1)
	assert.Equal(t, models.DayPresent, days[9].Status)
	assert.Equal(t, models.DayFuture, days[10].Status)

	stats, err := svc.MonthlyStats(mobile, models.YearMonth{Year: 2024, Month: 9})
	require.NoError(t, err)
	assert.Equal(t, models.MonthlyStats{Present: 3, Absent: 7}, stats)

	all, err := svc.MonthlyStatsAll(models.YearMonth{Year: 2024, Month: 9})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 7, all[0].Absent)
}

func TestGeolocationFailedLeavesNoRecord(t *testing.T) {
	svc, _ := setup(t)
	configure(t, svc)

	err := svc.GeolocationFailed(mobile, GeoPermissionDenied, "user denied")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	assert.Empty(t, svc.History(mobile))
}
