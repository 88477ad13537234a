package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/libdesk/internal/auth"
	"github.com/mamadbah2/libdesk/internal/service/students"
)

// AuthHandler issues session tokens.
type AuthHandler struct {
	students *students.Service
	issuer   *auth.Issuer
	logger   *zap.Logger
}

// NewAuthHandler constructs the login handler.
func NewAuthHandler(st *students.Service, issuer *auth.Issuer, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{students: st, issuer: issuer, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates the owner or a student and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	p, err := h.students.Authenticate(req.Username, req.Password)
	if err != nil {
		h.logger.Info("login failed", zap.String("username", req.Username))
		respondError(c, h.logger, err)
		return
	}

	tok, err := h.issuer.Issue(p)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("login succeeded", zap.String("mobile", p.Mobile), zap.String("role", string(p.Role)))
	c.JSON(http.StatusOK, tok)
}
