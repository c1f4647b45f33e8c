package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"rewear/internal/dto"
	"rewear/internal/media"
	"rewear/internal/middleware"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/pkg/response"
	"rewear/internal/service"
	"rewear/internal/telemetry"
	"rewear/utils/validate"

	"github.com/gin-gonic/gin"
)

const (
	formFieldData   = "data"
	formFieldImages = "images"
)

type ItemHandler struct {
	trace       *telemetry.Trace
	itemService *service.ItemService
	bodyLimit   *middleware.BodyLimit
}

func NewItemHandler(trace *telemetry.Trace, itemService *service.ItemService, bodyLimit *middleware.BodyLimit) *ItemHandler {
	return &ItemHandler{trace: trace, itemService: itemService, bodyLimit: bodyLimit}
}

// List 商品列表
// @Summary 公開商品列表（預設只列出已上架且已審核）
// @Tags Items
// @Produce json
// @Param status query string false "available / pending / swapped，空字串代表不過濾"
// @Param category query string false "分類"
// @Param approved query string false "true / false（僅管理員有效）"
// @Success 200 {object} map[string]any
// @Router /items [get]
func (h *ItemHandler) List(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	items, err := h.itemService.ListItems(ctx, dto.ItemListQuery{
		Status:   optionalQuery(c, "status"),
		Category: optionalQuery(c, "category"),
		Approved: optionalQuery(c, "approved"),
	}, middleware.CurrentUser(c))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

// Get 單一商品
// @Summary 取得商品（未審核商品僅擁有者與管理員可見）
// @Tags Items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} response.ErrorResponse
// @Router /items/{id} [get]
func (h *ItemHandler) Get(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	item, err := h.itemService.GetItem(ctx, id, middleware.CurrentUser(c))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"item": item})
}

// Create 新增商品
// @Summary 新增商品：JSON，或 multipart（data 欄位放 JSON、images 放圖片）
// @Tags Items
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param body body dto.CreateItemRequest false "JSON 版本"
// @Success 201 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Router /items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	var req dto.CreateItemRequest
	var files []media.File
	if isMultipart(c) {
		form, err := h.multipartForm(c)
		if err != nil {
			end(err)
			response.AbortWithError(c, err)
			return
		}
		if err := decodeDataField(form, &req); err != nil {
			end(err)
			response.AbortWithError(c, err)
			return
		}
		if cause, respErr := validate.ValidateStruct(&req); cause != nil {
			end(cause)
			response.AbortWithError(c, respErr)
			return
		}
		if files, err = readFiles(form.File[formFieldImages]); err != nil {
			end(err)
			response.AbortWithError(c, err)
			return
		}
	} else if cause, respErr := validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	item, err := h.itemService.CreateItem(ctx, middleware.CurrentUser(c), &req, files)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Create(c, gin.H{
		"message": "Item created successfully",
		"item":    item,
	})
}

// UploadImages 只上傳圖片
// @Summary 上傳圖片並回傳 URL
// @Tags Items
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param images formData file true "圖片（可多張）"
// @Success 200 {object} dto.UploadImagesResponse
// @Failure 400 {object} response.ErrorResponse
// @Router /items/upload-images [post]
func (h *ItemHandler) UploadImages(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	if !isMultipart(c) {
		response.AbortWithError(c, cErr.ValidateErr("No images uploaded"))
		return
	}
	form, err := h.multipartForm(c)
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}
	files, err := readFiles(form.File[formFieldImages])
	if err != nil {
		end(err)
		response.AbortWithError(c, err)
		return
	}

	urls, err := h.itemService.UploadImages(ctx, files)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{
		"message": "Images uploaded successfully",
		"urls":    urls,
	})
}

// ListMine 自己的商品
// @Summary 目前使用者上傳的所有商品（含未審核）
// @Tags Items
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /items/user/items [get]
func (h *ItemHandler) ListMine(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	items, err := h.itemService.ListMyItems(ctx, middleware.CurrentUser(c))
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

// Update 更新商品
// @Summary 更新商品（擁有者或管理員）
// @Tags Items
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param body body dto.UpdateItemRequest true "更新欄位"
// @Success 200 {object} map[string]any
// @Failure 403 {object} response.ErrorResponse
// @Router /items/{id} [put]
func (h *ItemHandler) Update(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.UpdateItemRequest
	if cause, respErr = validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	item, err := h.itemService.UpdateItem(ctx, id, middleware.CurrentUser(c), &req)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{
		"message": "Item updated successfully",
		"item":    item,
	})
}

// Delete 刪除商品
// @Summary 刪除商品（擁有者或管理員）
// @Tags Items
// @Security BearerAuth
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} map[string]any
// @Failure 403 {object} response.ErrorResponse
// @Router /items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	if err := h.itemService.DeleteItem(ctx, id, middleware.CurrentUser(c)); err != nil {
		response.AbortWithError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Item deleted successfully"})
}

// Approve 審核商品
// @Summary 管理員審核：approved=true 上架，false 退回待審
// @Tags Items
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param body body dto.ApproveItemRequest true "審核結果"
// @Success 200 {object} map[string]any
// @Failure 403 {object} response.ErrorResponse
// @Router /items/{id}/approve [put]
func (h *ItemHandler) Approve(c *gin.Context) {
	ctx, _, end := h.trace.WithSpan(c)
	defer end(nil)

	id, cause, respErr := validate.ParseObjectID(c, "id")
	if cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}
	var req dto.ApproveItemRequest
	if cause, respErr = validate.BindAndValidate(c, &req); cause != nil {
		end(cause)
		response.AbortWithError(c, respErr)
		return
	}

	item, err := h.itemService.ApproveItem(ctx, id, middleware.CurrentUser(c), *req.Approved)
	if err != nil {
		response.AbortWithError(c, err)
		return
	}
	message := "Item rejected successfully"
	if *req.Approved {
		message = "Item approved successfully"
	}
	response.Success(c, gin.H{
		"message": message,
		"item":    item,
	})
}

// ---- helpers ----

// optionalQuery 區分「沒帶」（nil）與「帶了空值」
func optionalQuery(c *gin.Context, key string) *string {
	if v, ok := c.GetQuery(key); ok {
		return &v
	}
	return nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

func (h *ItemHandler) multipartForm(c *gin.Context) (*multipart.Form, error) {
	if err := c.Request.ParseMultipartForm(h.bodyLimit.MaxBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, cErr.PayloadTooLarge("Request body too large")
		}
		return nil, cErr.ValidateErr("Invalid multipart form")
	}
	return c.Request.MultipartForm, nil
}

// decodeDataField multipart 的 data 欄位是 JSON 字串
func decodeDataField(form *multipart.Form, req *dto.CreateItemRequest) error {
	values := form.Value[formFieldData]
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return cErr.ValidateErr("Missing item data")
	}
	if err := json.Unmarshal([]byte(values[0]), req); err != nil {
		return cErr.ValidateErr("Item data must be valid JSON")
	}
	return nil
}

func readFiles(headers []*multipart.FileHeader) ([]media.File, error) {
	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, cErr.UploadFailed("Cannot read file: " + fh.Filename)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, cErr.UploadFailed("Cannot read file: " + fh.Filename)
		}
		files = append(files, media.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}
