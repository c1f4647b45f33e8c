package response

import (
	"errors"
	"net/http"

	cErr "rewear/internal/pkg/error"

	"github.com/gin-gonic/gin"
)

// ErrorResponse 錯誤輸出格式：message 為人看的訊息，error/code 供前端判斷
type ErrorResponse struct {
	RequestID string `json:"requestId"`
	Code      int    `json:"code"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

// Create 201，body 由 Response middleware 統一輸出
func Create(c *gin.Context, data gin.H) {
	c.Status(http.StatusCreated)
	c.Set("data", data)
	c.Abort()
}

func Success(c *gin.Context, data gin.H) {
	c.Status(http.StatusOK)
	c.Set("data", data)
	c.Abort()
}

func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Message 取出 body 內的 message 欄位（log 用）
func Message(data gin.H) string {
	if s, ok := data["message"].(string); ok && s != "" {
		return s
	}
	return "Request Success"
}

func Fail(c *gin.Context, requestID string, httpCode int, errorCode int, slug string, msg string) {
	c.JSON(httpCode, ErrorResponse{
		RequestID: requestID,
		Code:      errorCode,
		Error:     slug,
		Message:   msg,
	})
	c.Abort()
}

func FailByErr(c *gin.Context, requestID string, err error) {
	var v *cErr.Error
	if errors.As(err, &v) {
		Fail(c, requestID, v.HttpCode(), v.ErrorCode(), v.Error(), v.ErrorDesc())
		return
	}
	Fail(c, requestID, http.StatusInternalServerError, cErr.INTERNAL_ERROR, "internal-server-error", "Internal server error")
}
