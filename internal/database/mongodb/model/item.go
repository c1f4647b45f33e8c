package model

import (
	"rewear/internal/core"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Item struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	Title          string             `json:"title" bson:"title"`
	Description    string             `json:"description" bson:"description"`
	Category       core.ItemCategory  `json:"category" bson:"category"`
	Type           string             `json:"type" bson:"type"`
	Size           core.ItemSize      `json:"size" bson:"size"`
	Condition      core.ItemCondition `json:"condition" bson:"condition"`
	Tags           []string           `json:"tags" bson:"tags"`
	Images         []string           `json:"images" bson:"images"`
	ImagePublicIDs []string           `json:"-" bson:"imagePublicIds,omitempty"` // 媒體刪除用，不回傳給前端
	UploaderID     primitive.ObjectID `json:"uploaderId" bson:"uploaderId"`
	UploaderName   string             `json:"uploaderName" bson:"uploaderName"` // 建立當下的名稱快照
	PointsRequired int64              `json:"pointsRequired" bson:"pointsRequired"`
	Status         core.ItemStatus    `json:"status" bson:"status"`
	Approved       bool               `json:"approved" bson:"approved"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ItemSummary 交換請求上附帶的商品投影
type ItemSummary struct {
	ID         primitive.ObjectID `json:"_id"`
	Title      string             `json:"title"`
	Images     []string           `json:"images"`
	UploaderID primitive.ObjectID `json:"uploaderId"`
}

func (i *Item) Summary() *ItemSummary {
	return &ItemSummary{ID: i.ID, Title: i.Title, Images: i.Images, UploaderID: i.UploaderID}
}

func (i *Item) OwnedBy(userID primitive.ObjectID) bool {
	return i != nil && i.UploaderID == userID
}

// ItemPatch 商品的部分更新；nil 代表不修改。
// uploaderId / uploaderName / approved / status 不在這裡，前端不可設定。
type ItemPatch struct {
	Title          *string
	Description    *string
	Category       *core.ItemCategory
	Type           *string
	Size           *core.ItemSize
	Condition      *core.ItemCondition
	Tags           *[]string
	Images         *[]string
	PointsRequired *int64
	// ImagePublicIDs 由 service 依 Images 重算，不對外開放
	ImagePublicIDs *[]string
}

func (p ItemPatch) IsEmpty() bool {
	return len(p.ToSet()) == 0
}

// ToSet 轉成 $set 內容
func (p ItemPatch) ToSet() bson.M {
	set := bson.M{}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Type != nil {
		set["type"] = *p.Type
	}
	if p.Size != nil {
		set["size"] = *p.Size
	}
	if p.Condition != nil {
		set["condition"] = *p.Condition
	}
	if p.Tags != nil {
		set["tags"] = *p.Tags
	}
	if p.Images != nil {
		set["images"] = *p.Images
	}
	if p.PointsRequired != nil {
		set["pointsRequired"] = *p.PointsRequired
	}
	if p.ImagePublicIDs != nil {
		set["imagePublicIds"] = *p.ImagePublicIDs
	}
	return set
}

// Apply 套用到記憶體中的文件（測試替身與回傳值共用）
func (p ItemPatch) Apply(item *Item) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.Size != nil {
		item.Size = *p.Size
	}
	if p.Condition != nil {
		item.Condition = *p.Condition
	}
	if p.Tags != nil {
		item.Tags = *p.Tags
	}
	if p.Images != nil {
		item.Images = *p.Images
	}
	if p.PointsRequired != nil {
		item.PointsRequired = *p.PointsRequired
	}
	if p.ImagePublicIDs != nil {
		item.ImagePublicIDs = *p.ImagePublicIDs
	}
}

// ItemFilter 列表查詢條件；nil 代表不過濾該欄位
type ItemFilter struct {
	Status     *core.ItemStatus
	Category   *core.ItemCategory
	Approved   *bool
	UploaderID *primitive.ObjectID
}

// Matches 與 BuildItemFilter 產生的查詢語意一致
func (f ItemFilter) Matches(item *Item) bool {
	if f.Status != nil && item.Status != *f.Status {
		return false
	}
	if f.Category != nil && item.Category != *f.Category {
		return false
	}
	if f.Approved != nil && item.Approved != *f.Approved {
		return false
	}
	if f.UploaderID != nil && item.UploaderID != *f.UploaderID {
		return false
	}
	return true
}

// ItemCount 統計用：依狀態與審核分組
type ItemCount struct {
	Status   core.ItemStatus `bson:"status"`
	Approved bool            `bson:"approved"`
	Count    int64           `bson:"count"`
}
