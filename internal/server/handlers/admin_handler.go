package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/service/attendance"
	"github.com/mamadbah2/libdesk/internal/service/booking"
	"github.com/mamadbah2/libdesk/internal/service/payments"
	"github.com/mamadbah2/libdesk/internal/service/reporting"
	"github.com/mamadbah2/libdesk/internal/service/students"
)

// Services bundles the domain services the HTTP layer drives.
type Services struct {
	Students   *students.Service
	Booking    *booking.Service
	Payments   *payments.Service
	Reporting  *reporting.Service
	Attendance *attendance.Service
}

func (s Services) currentMonth() models.YearMonth {
	today := s.Attendance.Today()
	return models.YearMonth{Year: today.Year(), Month: int(today.Month())}
}

// AdminHandler serves the owner dashboard.
type AdminHandler struct {
	svc    Services
	logger *zap.Logger
}

// NewAdminHandler constructs the owner HTTP handler.
func NewAdminHandler(svc Services, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{svc: svc, logger: logger}
}

// ListStudents returns every roster position, removed ones included.
func (h *AdminHandler) ListStudents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"students": h.svc.Students.List()})
}

// AddStudent admits a new student.
func (h *AdminHandler) AddStudent(c *gin.Context) {
	var in students.NewStudent
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	st, err := h.svc.Students.Add(in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// ReplaceStudent overwrites the roster position at :index.
func (h *AdminHandler) ReplaceStudent(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	var in students.NewStudent
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	st, err := h.svc.Students.Replace(index, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// RemoveStudent vacates the roster position at :index.
func (h *AdminHandler) RemoveStudent(c *gin.Context) {
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	if err := h.svc.Students.Remove(index); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StudentDetail returns one student's profile and dues row.
func (h *AdminHandler) StudentDetail(c *gin.Context) {
	row, err := h.svc.Reporting.DuesRow(c.Param("mobile"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	st, err := h.svc.Students.Get(row.Mobile)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": st, "dues": row})
}

type seatRequest struct {
	Expression string `json:"expression"`
}

// ApplySeat applies a free-text seat expression such as "5", "5.2" or "" (clear).
func (h *AdminHandler) ApplySeat(c *gin.Context) {
	var req seatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	wow, err := h.svc.Booking.ApplySeatCommand(c.Param("mobile"), req.Expression)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, wow)
}

// ClearSeat releases every booking of the student.
func (h *AdminHandler) ClearSeat(c *gin.Context) {
	released, err := h.svc.Booking.ClearStudentBookings(c.Param("mobile"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

type overrideRequest struct {
	CustomRate *int `json:"custom_rate"`
	FixedTotal *int `json:"fixed_total_payment"`
}

// SetOverride sets the custom rate and/or fixed total of a student.
func (h *AdminHandler) SetOverride(c *gin.Context) {
	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	wow, err := h.svc.Booking.SetOverride(c.Param("mobile"), req.CustomRate, req.FixedTotal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, wow)
}

// ClearOverride resets a student to the standard fee table.
func (h *AdminHandler) ClearOverride(c *gin.Context) {
	wow, err := h.svc.Booking.ClearOverride(c.Param("mobile"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, wow)
}

type markPaymentRequest struct {
	Month  string `json:"month" binding:"required"`
	Mode   string `json:"mode" binding:"required"`
	Amount int    `json:"amount"`
}

// MarkPayment records a full or partial payment for one month.
func (h *AdminHandler) MarkPayment(c *gin.Context) {
	var req markPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	ym, err := models.ParseYearMonth(req.Month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	mode, err := models.ParsePaymentMode(req.Mode)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rec, err := h.svc.Payments.MarkPayment(c.Param("mobile"), ym, mode, req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// PaymentHistory lists a student's payment records.
func (h *AdminHandler) PaymentHistory(c *gin.Context) {
	mobile := c.Param("mobile")
	if _, err := h.svc.Students.Get(mobile); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": h.svc.Payments.History(mobile)})
}

// StudentAttendance returns a student's calendar for ?month=YYYY-MM.
func (h *AdminHandler) StudentAttendance(c *gin.Context) {
	ym, ok := monthQuery(c, h.svc.currentMonth)
	if !ok {
		return
	}
	writeCalendar(c, h.logger, h.svc.Attendance, c.Param("mobile"), ym)
}

// Seats returns the seat graph.
func (h *AdminHandler) Seats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"total_seats": h.svc.Booking.TotalSeats(),
		"cells":       h.svc.Booking.Occupancy(),
	})
}

type toggleRequest struct {
	Seat   int    `json:"seat" binding:"required"`
	Shift  int    `json:"shift" binding:"required"`
	Mobile string `json:"mobile"`
}

// ToggleSeat books an empty cell for the given mobile or releases an occupied one.
func (h *AdminHandler) ToggleSeat(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	res, err := h.svc.Booking.Toggle(req.Mobile, req.Seat, req.Shift)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// UnbookShift releases one seat/shift cell.
func (h *AdminHandler) UnbookShift(c *gin.Context) {
	seat, ok := intParam(c, "seat")
	if !ok {
		return
	}
	shift, ok := intParam(c, "shift")
	if !ok {
		return
	}
	released, err := h.svc.Booking.UnbookShift(seat, shift)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

type capacityRequest struct {
	TotalSeats int `json:"total_seats" binding:"required"`
}

// ResizeCapacity changes the number of seats, dropping bookings beyond the new limit.
func (h *AdminHandler) ResizeCapacity(c *gin.Context) {
	var req capacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	dropped, err := h.svc.Booking.ResizeSeatCapacity(req.TotalSeats)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_seats": req.TotalSeats, "dropped": dropped})
}

// WowTable returns every derived WOW record.
func (h *AdminHandler) WowTable(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"wow": h.svc.Booking.WowTable()})
}

// Dues returns the payment due table.
func (h *AdminHandler) Dues(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dues": h.svc.Reporting.DuesTable()})
}

// YearGrid returns the month-by-month payment grid for :year.
func (h *AdminHandler) YearGrid(c *gin.Context) {
	year, ok := intParam(c, "year")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "students": h.svc.Reporting.YearGrid(year)})
}

// AttendanceTable returns present/absent counts for every student for ?month=YYYY-MM.
func (h *AdminHandler) AttendanceTable(c *gin.Context) {
	ym, ok := monthQuery(c, h.svc.currentMonth)
	if !ok {
		return
	}
	stats, err := h.svc.Attendance.MonthlyStatsAll(ym)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": ym, "students": stats})
}

// Location returns the geofence and current QR token.
func (h *AdminHandler) Location(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Attendance.Location())
}

type locationRequest struct {
	Lat          *float64 `json:"lat" binding:"required"`
	Lng          *float64 `json:"lng" binding:"required"`
	RadiusMeters float64  `json:"radius_meters"`
}

// ConfigureLocation sets the library geofence and rotates the QR token.
func (h *AdminHandler) ConfigureLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	loc, err := h.svc.Attendance.ConfigureLocation(models.GeoPoint{Lat: *req.Lat, Lng: *req.Lng}, req.RadiusMeters)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func writeCalendar(c *gin.Context, logger *zap.Logger, svc *attendance.Service, mobile string, ym models.YearMonth) {
	days, err := svc.Calendar(mobile, ym)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	stats, err := svc.MonthlyStats(mobile, ym)
	if err != nil {
		respondError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": ym, "days": days, "stats": stats})
}
