package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/auth"
	"github.com/mamadbah2/libdesk/internal/domain/models"
)

// StudentHandler serves the signed-in student's dashboard.
type StudentHandler struct {
	svc    Services
	logger *zap.Logger
}

// NewStudentHandler constructs the student HTTP handler.
func NewStudentHandler(svc Services, logger *zap.Logger) *StudentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentHandler{svc: svc, logger: logger}
}

func (h *StudentHandler) mobile(c *gin.Context) (string, bool) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return "", false
	}
	return p.Mobile, true
}

// Profile returns the student record and the derived seat summary.
func (h *StudentHandler) Profile(c *gin.Context) {
	mobile, ok := h.mobile(c)
	if !ok {
		return
	}
	st, err := h.svc.Students.Get(mobile)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	wow, err := h.svc.Booking.Wow(mobile)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": st, "wow": wow})
}

// Dues returns the unpaid months, partial shortfalls and the total owed.
func (h *StudentHandler) Dues(c *gin.Context) {
	mobile, ok := h.mobile(c)
	if !ok {
		return
	}
	row, err := h.svc.Reporting.DuesRow(mobile)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"due_months":  row.DueMonths,
		"reminder":    h.svc.Payments.Reminder(mobile),
		"outstanding": row.Outstanding,
		"due_status":  row.DueStatus,
	})
}

// Payments lists the student's payment records.
func (h *StudentHandler) Payments(c *gin.Context) {
	mobile, ok := h.mobile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": h.svc.Payments.History(mobile)})
}

// Attendance returns the student's calendar for ?month=YYYY-MM.
func (h *StudentHandler) Attendance(c *gin.Context) {
	mobile, ok := h.mobile(c)
	if !ok {
		return
	}
	ym, ok := monthQuery(c, h.svc.currentMonth)
	if !ok {
		return
	}
	writeCalendar(c, h.logger, h.svc.Attendance, mobile, ym)
}

// AttendanceHistory lists every attendance record, newest first.
func (h *StudentHandler) AttendanceHistory(c *gin.Context) {
	mobile, ok := h.mobile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": h.svc.Attendance.History(mobile)})
}

// scanRequest carries the decoded QR text and the device position. A non-zero GeoErrorCode
// reports that the browser could not provide a position.
type scanRequest struct {
	Token           string  `json:"token"`
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	GeoErrorCode    int     `json:"geo_error_code"`
	GeoErrorMessage string  `json:"geo_error_message"`
}

// Scan marks attendance after a QR scan.
func (h *StudentHandler) Scan(c *gin.Context) {
	mobile, ok := h.mobile(c)
	if !ok {
		return
	}
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if req.GeoErrorCode != 0 {
		respondError(c, h.logger, h.svc.Attendance.GeolocationFailed(mobile, req.GeoErrorCode, req.GeoErrorMessage))
		return
	}

	res, err := h.svc.Attendance.RecordScan(mobile, req.Token, models.GeoPoint{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Pay is the online payment entry point. No gateway is integrated.
func (h *StudentHandler) Pay(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "payment API integration is pending"})
}
