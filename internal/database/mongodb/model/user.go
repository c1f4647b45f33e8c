package model

import (
	"rewear/internal/core"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID          primitive.ObjectID `json:"id" bson:"_id"`                              // 使用者唯一識別碼
	FirebaseUID string             `json:"firebaseUid" bson:"firebaseUid"`             // Firebase Auth 的 uid
	Email       string             `json:"email" bson:"email"`                         // 小寫、去空白
	Name        string             `json:"name" bson:"name"`                           // 顯示名稱
	Role        core.Role          `json:"role" bson:"role"`                           // 使用者角色
	Points      int64              `json:"points" bson:"points"`                       // 點數餘額，不可為負
	Avatar      string             `json:"avatar,omitempty" bson:"avatar,omitempty"`   // 頭像網址
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`                 // 建立時間
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`                 // 更新時間
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == core.RoleAdmin
}

// UserSummary 交換請求與商品上附帶的使用者投影
type UserSummary struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserPatch 個人資料的部分更新；nil 代表不修改
type UserPatch struct {
	Name   *string
	Avatar *string
}
