package model

import (
	"rewear/internal/core"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SwapRequest struct {
	ID            primitive.ObjectID  `json:"_id" bson:"_id"`
	FromUserID    primitive.ObjectID  `json:"fromUserId" bson:"fromUserId"` // 發起者
	ToUserID      primitive.ObjectID  `json:"toUserId" bson:"toUserId"`     // 一律為目標商品的擁有者
	ItemID        primitive.ObjectID  `json:"itemId" bson:"itemId"`
	OfferItemID   *primitive.ObjectID `json:"offerItemId,omitempty" bson:"offerItemId,omitempty"`
	PointsOffered int64               `json:"pointsOffered" bson:"pointsOffered"`
	Status        core.SwapStatus     `json:"status" bson:"status"`
	Message       string              `json:"message,omitempty" bson:"message,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}

func (s *SwapRequest) Involves(userID primitive.ObjectID) bool {
	return s.FromUserID == userID || s.ToUserID == userID
}

// SwapFilter 列表查詢條件
type SwapFilter struct {
	UserID primitive.ObjectID // 發起者或接收者
	Status *core.SwapStatus
}

func (f SwapFilter) Matches(swap *SwapRequest) bool {
	if !f.UserID.IsZero() && !swap.Involves(f.UserID) {
		return false
	}
	if f.Status != nil && swap.Status != *f.Status {
		return false
	}
	return true
}

type SwapCount struct {
	Status core.SwapStatus `bson:"_id"`
	Count  int64           `bson:"count"`
}
