package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/domain/models"
	pkglogger "github.com/mamadbah2/libdesk/pkg/logger"
)

// statusFor maps domain failures to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrSeatMismatch),
		errors.Is(err, models.ErrAlreadyBooked):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrPreAdmission):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrStaleToken),
		errors.Is(err, models.ErrOutOfRange):
		return http.StatusForbidden
	case errors.Is(err, models.ErrPermissionDenied),
		errors.Is(err, models.ErrPositionUnavailable),
		errors.Is(err, models.ErrTimeout):
		return http.StatusFailedDependency
	case errors.Is(err, models.ErrLocationNotConfigured):
		return http.StatusPreconditionFailed
	case errors.Is(err, models.ErrStudentNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, fallback *zap.Logger, err error) {
	logger := pkglogger.FromContext(c, fallback)
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(code, gin.H{"error": http.StatusText(code)})
		return
	}
	logger.Debug("request rejected", zap.String("path", c.FullPath()), zap.Int("status", code), zap.Error(err))
	c.JSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, fallback *zap.Logger, err error) {
	pkglogger.FromContext(c, fallback).Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return v, true
}

// monthQuery reads ?month=YYYY-MM, defaulting to the month containing today.
func monthQuery(c *gin.Context, today func() models.YearMonth) (models.YearMonth, bool) {
	raw := c.Query("month")
	if raw == "" {
		return today(), true
	}
	ym, err := models.ParseYearMonth(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.YearMonth{}, false
	}
	return ym, true
}
