package handler

import (
	"rewear/internal/dto"
	"rewear/internal/middleware"
	"rewear/internal/pkg/response"
	"rewear/internal/service"
	"rewear/internal/telemetry"
	"rewear/utils/validate"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	trace       *telemetry.Trace
	userService *service.UserService
}

func NewAuthHandler(trace *telemetry.Trace, userService *service.UserService) *AuthHandler {
	return &AuthHandler{trace: trace, userService: userService}
}

// Register 註冊
// @Summary 以 Firebase 身分建立本地帳號（贈送 50 點）
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "顯示名稱與頭像"
// @Success 201 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.RegisterRequest
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	user, err := h.userService.Register(ctx, middleware.CurrentIdentity(c), &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

// GetProfile 取得個人資料
// @Summary 取得使用者資料
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Param firebaseUid path string true "Firebase UID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} response.ErrorResponse
// @Router /auth/profile/{firebaseUid} [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	user, err := h.userService.GetProfile(ctx, c.Param("firebaseUid"))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}

// UpdateProfile 更新個人資料
// @Summary 更新名稱或頭像（本人或管理員）
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param firebaseUid path string true "Firebase UID"
// @Param body body dto.UpdateProfileRequest true "更新欄位"
// @Success 200 {object} map[string]any
// @Failure 403 {object} response.ErrorResponse
// @Router /auth/profile/{firebaseUid} [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.UpdateProfileRequest
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	user, err := h.userService.UpdateProfile(ctx, c.Param("firebaseUid"), middleware.CurrentUser(c), &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// UpdatePoints 加減點數
// @Summary 加點或扣點（扣點不會低於 0）
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param firebaseUid path string true "Firebase UID"
// @Param body body dto.AdjustPointsRequest true "點數與操作"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Router /auth/points/{firebaseUid} [put]
func (h *AuthHandler) UpdatePoints(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.AdjustPointsRequest
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	points, err := h.userService.AdjustPoints(ctx, c.Param("firebaseUid"), middleware.CurrentUser(c), &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{
		"message": "Points updated successfully",
		"user":    points,
	})
}
