package dto

import (
	"rewear/internal/database/mongodb/model"
	"rewear/internal/pkg/request"
)

// 發起交換；toUserId 可省略，一律以目標商品擁有者為準
type CreateSwapRequest struct {
	ItemID        string `json:"itemId" binding:"required"`
	OfferItemID   string `json:"offerItemId,omitempty"`
	PointsOffered int64  `json:"pointsOffered,omitempty" binding:"min=0"`
	Message       string `json:"message,omitempty" binding:"max=500"`
	ToUserID      string `json:"toUserId,omitempty"`
}

func (CreateSwapRequest) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{
		"ItemID.required":   "Missing required fields",
		"PointsOffered.min": "Points offered cannot be negative",
		"Message.max":       "Message must be at most 500 characters",
	}
}

// 狀態檢查在 service（需要先確認權限才回 Invalid status）
type UpdateSwapStatusRequest struct {
	Status string `json:"status"`
}

type SwapResponse struct {
	*model.SwapRequest
	FromUser  *model.UserSummary `json:"fromUser,omitempty"`
	ToUser    *model.UserSummary `json:"toUser,omitempty"`
	Item      *model.ItemSummary `json:"item,omitempty"`
	OfferItem *model.ItemSummary `json:"offerItem,omitempty"`
}
