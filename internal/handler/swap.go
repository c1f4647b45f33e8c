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

type SwapHandler struct {
	trace       *telemetry.Trace
	swapService *service.SwapService
}

func NewSwapHandler(trace *telemetry.Trace, swapService *service.SwapService) *SwapHandler {
	return &SwapHandler{trace: trace, swapService: swapService}
}

// Create 發起交換
// @Summary 對已上架商品發起交換（可附自己的商品或點數）
// @Tags Swaps
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateSwapRequest true "交換內容"
// @Success 201 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /swaps [post]
func (h *SwapHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.CreateSwapRequest
	if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	swap, err := h.swapService.CreateSwap(ctx, middleware.CurrentUser(c), &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, gin.H{
		"message":     "Swap request created successfully",
		"swapRequest": swap,
	})
}

// List 我的交換請求
// @Summary 列出自己發起或收到的交換請求
// @Tags Swaps
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending / accepted / rejected"
// @Success 200 {object} map[string]any
// @Router /swaps [get]
func (h *SwapHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	swaps, err := h.swapService.ListSwaps(ctx, middleware.CurrentUser(c), optionalQuery(c, "status"))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"swapRequests": swaps})
}

// UpdateStatus 接受或拒絕
// @Summary 接收者或管理員接受／拒絕交換（接受時一次完成商品與點數轉移）
// @Tags Swaps
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Swap request ID"
// @Param body body dto.UpdateSwapStatusRequest true "新狀態"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /swaps/{id} [put]
func (h *SwapHandler) UpdateStatus(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateSwapStatusRequest
	if cause, respErr = validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	swap, err := h.swapService.UpdateSwapStatus(ctx, id, middleware.CurrentUser(c), &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{
		"message":     "Swap request updated successfully",
		"swapRequest": swap,
	})
}

// Delete 取消交換
// @Summary 發起者或管理員刪除尚未接受的交換請求
// @Tags Swaps
// @Security BearerAuth
// @Produce json
// @Param id path string true "Swap request ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Router /swaps/{id} [delete]
func (h *SwapHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	if err := h.swapService.DeleteSwap(ctx, id, middleware.CurrentUser(c)); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Swap request deleted successfully"})
}
