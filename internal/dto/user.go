package dto

import (
	"rewear/internal/core"
	"rewear/internal/database/mongodb/model"
	"rewear/internal/pkg/request"
)

// 註冊：uid 與 email 取自 token，body 只帶顯示資料
type RegisterRequest struct {
	Name   string `json:"name" binding:"required,max=100"` // 顯示名稱
	Avatar string `json:"avatar,omitempty"`                // 頭像網址
}

func (RegisterRequest) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{
		"Name.required": "Missing required fields",
		"Name.max":      "Name must be at most 100 characters",
	}
}

// 更新個人資料；name 為空字串時忽略，avatar 有帶就套用
type UpdateProfileRequest struct {
	Name   *string `json:"name,omitempty" binding:"omitempty,max=100"`
	Avatar *string `json:"avatar,omitempty"`
}

// 調整點數
type AdjustPointsRequest struct {
	Points    int64                `json:"points" binding:"required,min=1"`
	Operation core.PointsOperation `json:"operation,omitempty" binding:"omitempty,oneof=add subtract"`
}

func (AdjustPointsRequest) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{
		"Points.required": "Points must be a positive integer",
		"Points.min":      "Points must be a positive integer",
		"Operation.oneof": "Operation must be add or subtract",
	}
}

type UserResponse struct {
	ID          string    `json:"id"`
	FirebaseUID string    `json:"firebaseUid"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        core.Role `json:"role"`
	Points      int64     `json:"points"`
	Avatar      string    `json:"avatar,omitempty"`
}

type PointsResponse struct {
	ID     string `json:"id"`
	Points int64  `json:"points"`
}

func NewUserResponse(m *model.User) *UserResponse {
	return &UserResponse{
		ID:          m.ID.Hex(),
		FirebaseUID: m.FirebaseUID,
		Email:       m.Email,
		Name:        m.Name,
		Role:        m.Role,
		Points:      m.Points,
		Avatar:      m.Avatar,
	}
}
