package dto

import (
	"rewear/internal/core"
	"rewear/internal/database/mongodb/model"
	"rewear/internal/pkg/request"
)

// 建立商品；multipart 時放在 data 欄位，圖片另外以 images 檔案上傳
type CreateItemRequest struct {
	Title          string             `json:"title" binding:"required,max=100"`
	Description    string             `json:"description" binding:"required,max=500"`
	Category       core.ItemCategory  `json:"category" binding:"required,item_category"`
	Type           string             `json:"type" binding:"required"`
	Size           core.ItemSize      `json:"size" binding:"required,item_size"`
	Condition      core.ItemCondition `json:"condition" binding:"required,item_condition"`
	Tags           []string           `json:"tags,omitempty"`
	Images         []string           `json:"images,omitempty" binding:"omitempty,dive,url"`
	PointsRequired int64              `json:"pointsRequired" binding:"min=0,max=1000"`
}

func (CreateItemRequest) GetMessages() request.ValidatorMessages {
	return itemMessages
}

// 更新商品；uploaderId / uploaderName / approved / status 不開放（未知欄位直接忽略）
type UpdateItemRequest struct {
	Title          *string             `json:"title,omitempty" binding:"omitempty,min=1,max=100"`
	Description    *string             `json:"description,omitempty" binding:"omitempty,min=1,max=500"`
	Category       *core.ItemCategory  `json:"category,omitempty" binding:"omitempty,item_category"`
	Type           *string             `json:"type,omitempty" binding:"omitempty,min=1"`
	Size           *core.ItemSize      `json:"size,omitempty" binding:"omitempty,item_size"`
	Condition      *core.ItemCondition `json:"condition,omitempty" binding:"omitempty,item_condition"`
	Tags           *[]string           `json:"tags,omitempty"`
	Images         *[]string           `json:"images,omitempty" binding:"omitempty,dive,url"`
	PointsRequired *int64              `json:"pointsRequired,omitempty" binding:"omitempty,min=0,max=1000"`
}

func (UpdateItemRequest) GetMessages() request.ValidatorMessages {
	return itemMessages
}

func (r *UpdateItemRequest) ToPatch() model.ItemPatch {
	return model.ItemPatch{
		Title:          r.Title,
		Description:    r.Description,
		Category:       r.Category,
		Type:           r.Type,
		Size:           r.Size,
		Condition:      r.Condition,
		Tags:           r.Tags,
		Images:         r.Images,
		PointsRequired: r.PointsRequired,
	}
}

var itemMessages = request.ValidatorMessages{
	"Title.required":           "Title is required",
	"Title.min":                "Title is required",
	"Title.max":                "Title must be at most 100 characters",
	"Description.required":     "Description is required",
	"Description.min":          "Description is required",
	"Description.max":          "Description must be at most 500 characters",
	"Category.required":        "Category is required",
	"Category.item_category":   "Invalid category",
	"Type.required":            "Type is required",
	"Type.min":                 "Type is required",
	"Size.required":            "Size is required",
	"Size.item_size":           "Invalid size",
	"Condition.required":       "Condition is required",
	"Condition.item_condition": "Invalid condition",
	"PointsRequired.min":       "Points required must be between 0 and 1000",
	"PointsRequired.max":       "Points required must be between 0 and 1000",
	"Images.*.url":             "Images must be valid URLs",
}

// 審核
type ApproveItemRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

func (ApproveItemRequest) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{"Approved.required": "approved must be a boolean"}
}

// 列表查詢：nil 代表參數沒帶，"" 代表帶了但為空（不過濾）
type ItemListQuery struct {
	Status   *string
	Category *string
	Approved *string
}

type ItemResponse struct {
	*model.Item
	Uploader *model.UserSummary `json:"uploader,omitempty"`
}

type UploadImagesResponse struct {
	URLs []string `json:"urls"`
}
