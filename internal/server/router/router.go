package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/auth"
	"github.com/mamadbah2/libdesk/internal/domain/models"
	"github.com/mamadbah2/libdesk/internal/server/handlers"
	"github.com/mamadbah2/libdesk/internal/server/middleware"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Admin   *handlers.AdminHandler
	Student *handlers.StudentHandler
	Webhook *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares. A nil gatherer hides
// /metrics.
func New(h Handlers, issuer *auth.Issuer, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
	}

	v1 := r.Group("/v1")
	v1.POST("/login", middleware.NewTokenBucket(10, 10).Gin(), h.Auth.Login)

	admin := v1.Group("/admin", auth.Require(issuer, models.RoleOwner))
	{
		admin.GET("/students", h.Admin.ListStudents)
		admin.POST("/students", h.Admin.AddStudent)
		admin.PUT("/roster/:index", h.Admin.ReplaceStudent)
		admin.DELETE("/roster/:index", h.Admin.RemoveStudent)

		admin.GET("/students/:mobile", h.Admin.StudentDetail)
		admin.PUT("/students/:mobile/seat", h.Admin.ApplySeat)
		admin.DELETE("/students/:mobile/seat", h.Admin.ClearSeat)
		admin.PUT("/students/:mobile/override", h.Admin.SetOverride)
		admin.DELETE("/students/:mobile/override", h.Admin.ClearOverride)
		admin.GET("/students/:mobile/payments", h.Admin.PaymentHistory)
		admin.POST("/students/:mobile/payments", h.Admin.MarkPayment)
		admin.GET("/students/:mobile/attendance", h.Admin.StudentAttendance)

		admin.GET("/seats", h.Admin.Seats)
		admin.POST("/seats/toggle", h.Admin.ToggleSeat)
		admin.DELETE("/seats/:seat/shifts/:shift", h.Admin.UnbookShift)
		admin.PUT("/seats/capacity", h.Admin.ResizeCapacity)
		admin.GET("/wow", h.Admin.WowTable)

		admin.GET("/dues", h.Admin.Dues)
		admin.GET("/payments/:year", h.Admin.YearGrid)
		admin.GET("/attendance", h.Admin.AttendanceTable)
		admin.GET("/location", h.Admin.Location)
		admin.PUT("/location", h.Admin.ConfigureLocation)

		if h.Webhook != nil {
			admin.POST("/messages", h.Webhook.SendMessage)
		}
	}

	me := v1.Group("/me", auth.Require(issuer, models.RoleStudent))
	{
		me.GET("", h.Student.Profile)
		me.GET("/dues", h.Student.Dues)
		me.GET("/payments", h.Student.Payments)
		me.GET("/attendance", h.Student.Attendance)
		me.GET("/attendance/history", h.Student.AttendanceHistory)
		me.POST("/attendance/scan", middleware.NewTokenBucket(20, 20).Gin(), h.Student.Scan)
		me.POST("/pay", h.Student.Pay)
	}

	logger.Info("router initialized")

	return r
}
