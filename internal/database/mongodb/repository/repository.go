package repository

import (
	"errors"

	"rewear/internal/database/mongodb/model"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrDuplicateKey 唯一索引衝突（firebaseUid / email）
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInsufficientPoints 條件式扣點失敗：文件存在但餘額不足
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrStatusConflict 條件式狀態轉換失敗：文件存在但狀態不符
	ErrStatusConflict = errors.New("status conflict")
)

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewUserRepository,
	NewItemRepository,
	NewSwapRequestRepository,
)

func withUpdatedAt(update bson.M) bson.M {
	// 確保 $currentDate 存在
	currentDate, ok := update["$currentDate"].(bson.M)
	if !ok || currentDate == nil {
		currentDate = bson.M{}
	}
	currentDate["updatedAt"] = true
	update["$currentDate"] = currentDate
	return update
}

// BuildItemFilter 將 ItemFilter 轉成查詢條件
func BuildItemFilter(filter model.ItemFilter) bson.M {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Category != nil {
		query["category"] = *filter.Category
	}
	if filter.Approved != nil {
		query["approved"] = *filter.Approved
	}
	if filter.UploaderID != nil {
		query["uploaderId"] = *filter.UploaderID
	}
	return query
}

// BuildSwapFilter 發起者或接收者為指定使用者
func BuildSwapFilter(filter model.SwapFilter) bson.M {
	query := bson.M{}
	if !filter.UserID.IsZero() {
		query["$or"] = bson.A{
			bson.M{"fromUserId": filter.UserID},
			bson.M{"toUserId": filter.UserID},
		}
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	return query
}

func wrapDuplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(ErrDuplicateKey, err)
	}
	return err
}
