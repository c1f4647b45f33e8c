package model

// SwapEventLog 交換狀態變更的稽核紀錄
type SwapEventLog struct {
	RequestID     string `bson:"request_id,omitempty" json:"request_id,omitempty"`
	SwapID        string `bson:"swap_id" json:"swap_id"`
	ActorID       string `bson:"actor_id" json:"actor_id"`
	FromUserID    string `bson:"from_user_id" json:"from_user_id"`
	ToUserID      string `bson:"to_user_id" json:"to_user_id"`
	ItemID        string `bson:"item_id" json:"item_id"`
	OfferItemID   string `bson:"offer_item_id,omitempty" json:"offer_item_id,omitempty"`
	PointsOffered int64  `bson:"points_offered" json:"points_offered"`
	FromStatus    string `bson:"from_status" json:"from_status"`
	ToStatus      string `bson:"to_status" json:"to_status"`
	Transactional bool   `bson:"transactional" json:"transactional"`
	Version       string `bson:"version" json:"version"`
	LoggedAt      string `bson:"logged_at" json:"logged_at"`
}
