package service

import (
	"context"

	"rewear/internal/core"
	fluentdModel "rewear/internal/database/fluentd/model"
	"rewear/internal/database/mongodb/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore 使用者儲存
type UserStore interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByFirebaseUID(ctx context.Context, firebaseUID string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, patch model.UserPatch) (*model.User, error)
	// AdjustPoints 條件式加減點，扣點不足回傳 repository.ErrInsufficientPoints
	AdjustPoints(ctx context.Context, id primitive.ObjectID, delta int64) (*model.User, error)
	Promote(ctx context.Context, id primitive.ObjectID, points int64) (*model.User, error)
}

// ItemStore 商品儲存
type ItemStore interface {
	Create(ctx context.Context, item *model.Item) (*model.Item, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Item, error)
	List(ctx context.Context, filter model.ItemFilter) ([]*model.Item, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*model.Item, error)
	Update(ctx context.Context, id primitive.ObjectID, patch model.ItemPatch) (*model.Item, error)
	SetApproval(ctx context.Context, id primitive.ObjectID, approved bool) (*model.Item, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from []core.ItemStatus, to core.ItemStatus) error
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context) ([]model.ItemCount, error)
}

// SwapStore 交換請求儲存
type SwapStore interface {
	Create(ctx context.Context, swap *model.SwapRequest) (*model.SwapRequest, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.SwapRequest, error)
	List(ctx context.Context, filter model.SwapFilter) ([]*model.SwapRequest, error)
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to core.SwapStatus) (*model.SwapRequest, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context) ([]model.SwapCount, error)
}

// Transactor 多文件寫入的交易邊界；Atomic 為 false 時由呼叫端補償
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}

// SwapAuditor 交換狀態變更的稽核出口
type SwapAuditor interface {
	LogSwapEvent(ctx context.Context, event fluentdModel.SwapEventLog) error
}
