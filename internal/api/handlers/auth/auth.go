package auth

import (
	"context"
	"net/http"

	"github.com/baldhadhaval08/pantry-wizard/internal/api/handlers"
	"github.com/baldhadhaval08/pantry-wizard/internal/api/middleware"
	coreauth "github.com/baldhadhaval08/pantry-wizard/internal/core/auth"
	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Service 帳號服務
type Service interface {
	Register(ctx context.Context, req coreauth.RegisterRequest) (*coreauth.Token, error)
	Login(ctx context.Context, req coreauth.LoginRequest) (*coreauth.Token, error)
	Profile(ctx context.Context, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, req coreauth.UpdateProfileRequest) (*model.User, error)
}

// Handler 帳號處理器
type Handler struct {
	svc Service
}

// NewHandler 創建帳號處理器
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register POST /api/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req coreauth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	token, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, token)
}

// Login POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req coreauth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// Profile GET /api/auth/profile
func (h *Handler) Profile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.WriteError(c, common.ErrUnauthorized)
		return
	}

	user, err := h.svc.Profile(c.Request.Context(), userID)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile PUT /api/auth/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.WriteError(c, common.ErrUnauthorized)
		return
	}

	var req coreauth.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
