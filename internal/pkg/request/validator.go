package request

import (
	"errors"
	"regexp"

	cErr "rewear/internal/pkg/error"

	"github.com/go-playground/validator/v10"
)

// Validator 由 DTO 實作，提供「欄位.規則」→ 友善訊息 的對照
type Validator interface {
	GetMessages() ValidatorMessages
}

type ValidatorMessages map[string]string

var reg = regexp.MustCompile(`\[\d+\]`)

// GetError 從請求和錯誤中獲取錯誤信息；沒有對照時回傳 nil，交給呼叫端用預設格式
func GetError(request interface{}, err error) *cErr.Error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	v, isValidator := request.(Validator)
	if !isValidator {
		return nil
	}
	messages := v.GetMessages()
	for _, fe := range validationErrors {
		field := reg.ReplaceAllString(fe.Field(), ".*")
		if message, exist := messages[field+"."+fe.Tag()]; exist {
			return cErr.ValidateErr(message)
		}
	}
	return nil
}
