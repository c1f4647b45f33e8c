package service

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"rewear/config"
	"rewear/internal/core"
	"rewear/internal/database/mongodb/model"
	"rewear/internal/database/mongodb/repository"
	"rewear/internal/dto"
	"rewear/internal/media"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/telemetry"
	"rewear/utils/validate"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ItemService struct {
	trace    *telemetry.Trace
	metric   *telemetry.Metric
	logger   *zap.Logger
	items    ItemStore
	users    UserStore
	media    media.Store
	maxFiles int
}

func NewItemService(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	logger *zap.Logger,
	conf *config.Configuration,
	items ItemStore,
	users UserStore,
	mediaStore media.Store,
) *ItemService {
	return &ItemService{
		trace:    trace,
		metric:   metric,
		logger:   logger,
		items:    items,
		users:    users,
		media:    mediaStore,
		maxFiles: conf.Media.MaxFiles,
	}
}

// CreateItem 上傳圖片後建立商品（待審核）；寫入失敗時清掉剛上傳的圖片
func (s *ItemService) CreateItem(ctx context.Context, owner *model.User, req *dto.CreateItemRequest, files []media.File) (*dto.ItemResponse, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if err := validateItemFields(req.Category, req.Size, req.Condition, req.PointsRequired); err != nil {
		return nil, err
	}

	assets, err := s.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	images := append(nonEmpty(req.Images), assetURLs(assets)...)
	item := &model.Item{
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		Category:       req.Category,
		Type:           strings.TrimSpace(req.Type),
		Size:           req.Size,
		Condition:      req.Condition,
		Tags:           nonEmpty(req.Tags),
		Images:         images,
		ImagePublicIDs: assetIDs(assets),
		UploaderID:     owner.ID,
		UploaderName:   owner.Name,
		PointsRequired: req.PointsRequired,
		Status:         core.ItemStatusPending,
		Approved:       false,
	}
	created, err := s.items.Create(ctx, item)
	if err != nil {
		s.logger.Error("create item failed", zap.Error(err))
		s.deleteAssets(ctx, assetIDs(assets))
		return nil, cErr.DatabaseError("database CreateItem error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceItemMeta{
		Op:      "create",
		ItemID:  created.ID.Hex(),
		OwnerID: owner.ID.Hex(),
		Status:  string(created.Status),
		Images:  len(created.Images),
	})
	return &dto.ItemResponse{Item: created}, nil
}

// UploadImages 只上傳，回傳 URL
func (s *ItemService) UploadImages(ctx context.Context, files []media.File) ([]string, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if len(files) == 0 {
		return nil, cErr.ValidateErr("No images uploaded")
	}
	assets, err := s.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}
	return assetURLs(assets), nil
}

// ListItems 公開列表；非管理員一律只看得到已審核的商品
func (s *ItemService) ListItems(ctx context.Context, query dto.ItemListQuery, viewer *model.User) ([]*dto.ItemResponse, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	filter, err := BuildListFilter(query, viewer.IsAdmin())
	if err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx, filter)
	if err != nil {
		s.logger.Error("list items failed", zap.Error(err))
		return nil, cErr.DatabaseError("database ListItems error")
	}
	resp, err := s.withUploaders(ctx, items)
	if err != nil {
		return nil, err
	}

	meta := core.TraceItemListMeta{ResultCount: len(resp)}
	if filter.Status != nil {
		meta.Status = string(*filter.Status)
	}
	if filter.Category != nil {
		meta.Category = string(*filter.Category)
	}
	if filter.Approved != nil {
		meta.Approved = strconv.FormatBool(*filter.Approved)
	}
	if viewer != nil {
		meta.ViewerRole = string(viewer.Role)
	}
	s.trace.ApplyTraceAttributes(span, meta)
	return resp, nil
}

// BuildListFilter 參數沒帶：status=available、approved=true；帶了但為空：不過濾。
// 非管理員 approved 永遠為 true。
func BuildListFilter(query dto.ItemListQuery, isAdmin bool) (model.ItemFilter, error) {
	filter := model.ItemFilter{}

	switch {
	case query.Status == nil:
		status := core.ItemStatusAvailable
		filter.Status = &status
	case *query.Status != "":
		if !validate.IsValidItemStatus(*query.Status) {
			return filter, cErr.ValidatePathParamsErr("Invalid status")
		}
		status := core.ItemStatus(*query.Status)
		filter.Status = &status
	}

	if query.Category != nil && *query.Category != "" {
		if !validate.IsValidCategory(*query.Category) {
			return filter, cErr.ValidatePathParamsErr("Invalid category")
		}
		category := core.ItemCategory(*query.Category)
		filter.Category = &category
	}

	switch {
	case query.Approved == nil:
		approved := true
		filter.Approved = &approved
	case *query.Approved != "":
		approved, err := strconv.ParseBool(*query.Approved)
		if err != nil {
			return filter, cErr.ValidatePathParamsErr("approved must be true or false")
		}
		filter.Approved = &approved
	}

	if !isAdmin {
		approved := true
		filter.Approved = &approved
	}
	return filter, nil
}

// GetItem 未審核的商品只有擁有者與管理員看得到
func (s *ItemService) GetItem(ctx context.Context, id primitive.ObjectID, viewer *model.User) (*dto.ItemResponse, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.Approved && !(viewer != nil && (item.OwnedBy(viewer.ID) || viewer.IsAdmin())) {
		return nil, cErr.NotFound("Item not found")
	}
	resp, err := s.withUploaders(ctx, []*model.Item{item})
	if err != nil {
		return nil, err
	}
	return resp[0], nil
}

func (s *ItemService) UpdateItem(ctx context.Context, id primitive.ObjectID, requester *model.User, req *dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.OwnedBy(requester.ID) && !requester.IsAdmin() {
		return nil, cErr.Forbidden("Insufficient permissions")
	}

	patch := req.ToPatch()
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	var dropped []string
	if patch.Images != nil {
		kept, removed := splitAssets(item.ImagePublicIDs, *patch.Images)
		patch.ImagePublicIDs = &kept
		dropped = removed
	}
	updated, err := s.items.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("Item not found")
		}
		s.logger.Error("update item failed", zap.Error(err))
		return nil, cErr.DatabaseError("database UpdateItem error")
	}
	// 寫入成功後才刪除被換掉的圖片
	s.deleteAssets(ctx, dropped)

	s.trace.ApplyTraceAttributes(span, core.TraceItemMeta{
		Op:       "update",
		ItemID:   id.Hex(),
		OwnerID:  updated.UploaderID.Hex(),
		ActorID:  requester.ID.Hex(),
		Status:   string(updated.Status),
		Approved: updated.Approved,
		Images:   len(updated.Images),
	})
	return &dto.ItemResponse{Item: updated}, nil
}

// DeleteItem 刪除紀錄後盡力清除圖片
func (s *ItemService) DeleteItem(ctx context.Context, id primitive.ObjectID, requester *model.User) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	item, err := s.findItem(ctx, id)
	if err != nil {
		return err
	}
	if !item.OwnedBy(requester.ID) && !requester.IsAdmin() {
		return cErr.Forbidden("Insufficient permissions")
	}
	if err := s.items.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("Item not found")
		}
		s.logger.Error("delete item failed", zap.Error(err))
		return cErr.DatabaseError("database DeleteItem error")
	}
	s.deleteAssets(ctx, item.ImagePublicIDs)
	return nil
}

// ApproveItem 管理員審核；approved=true → available，false → pending，已交換不可再動
func (s *ItemService) ApproveItem(ctx context.Context, id primitive.ObjectID, requester *model.User, approved bool) (*dto.ItemResponse, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if !requester.IsAdmin() {
		return nil, cErr.Forbidden("Admin access required")
	}
	updated, err := s.items.SetApproval(ctx, id, approved)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, cErr.NotFound("Item not found")
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, cErr.InvalidOperation("Item has already been swapped")
		}
		s.logger.Error("approve item failed", zap.Error(err))
		return nil, cErr.DatabaseError("database ApproveItem error")
	}

	s.trace.ApplyTraceAttributes(span, core.TraceItemMeta{
		Op:       "approve",
		ItemID:   id.Hex(),
		OwnerID:  updated.UploaderID.Hex(),
		ActorID:  requester.ID.Hex(),
		Status:   string(updated.Status),
		Approved: updated.Approved,
		Images:   len(updated.Images),
	})
	return &dto.ItemResponse{Item: updated}, nil
}

// ListMyItems 自己的商品，不論審核狀態
func (s *ItemService) ListMyItems(ctx context.Context, owner *model.User) ([]*dto.ItemResponse, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	items, err := s.items.List(ctx, model.ItemFilter{UploaderID: &owner.ID})
	if err != nil {
		s.logger.Error("list my items failed", zap.Error(err))
		return nil, cErr.DatabaseError("database ListMyItems error")
	}
	resp := make([]*dto.ItemResponse, len(items))
	for i, item := range items {
		resp[i] = &dto.ItemResponse{Item: item}
	}
	return resp, nil
}

func (s *ItemService) findItem(ctx context.Context, id primitive.ObjectID) (*model.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("Item not found")
		}
		s.logger.Error("get item failed", zap.Error(err))
		return nil, cErr.DatabaseError("database GetItem error")
	}
	return item, nil
}

// withUploaders 一次批次查詢所有上傳者
func (s *ItemService) withUploaders(ctx context.Context, items []*model.Item) ([]*dto.ItemResponse, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	seen := map[primitive.ObjectID]bool{}
	for _, item := range items {
		if !seen[item.UploaderID] {
			seen[item.UploaderID] = true
			ids = append(ids, item.UploaderID)
		}
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("list uploaders failed", zap.Error(err))
		return nil, cErr.DatabaseError("database ListUsers error")
	}
	byID := make(map[primitive.ObjectID]*model.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.Summary()
	}

	resp := make([]*dto.ItemResponse, len(items))
	for i, item := range items {
		resp[i] = &dto.ItemResponse{Item: item, Uploader: byID[item.UploaderID]}
	}
	return resp, nil
}

// uploadAll 任何一張失敗就回滾本次已上傳的圖片
func (s *ItemService) uploadAll(ctx context.Context, files []media.File) ([]*media.Asset, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.maxFiles > 0 && len(files) > s.maxFiles {
		return nil, cErr.UploadFailed("Too many images, at most " + strconv.Itoa(s.maxFiles) + " allowed")
	}

	driver := s.media.Driver()
	assets := make([]*media.Asset, 0, len(files))
	for _, file := range files {
		asset, err := s.media.Upload(ctx, file)
		if err != nil {
			s.metric.IncMediaUpload(driver, "error")
			s.logger.Warn("image upload failed",
				zap.String("driver", driver),
				zap.String("file", file.Name),
				zap.Error(err))
			s.deleteAssets(ctx, assetIDs(assets))
			if errors.Is(err, media.ErrInvalidImage) {
				return nil, cErr.UploadFailed("Invalid image file: " + file.Name)
			}
			return nil, cErr.UploadProviderFailed("Image upload failed")
		}
		s.metric.IncMediaUpload(driver, "success")
		assets = append(assets, asset)
	}
	return assets, nil
}

// splitAssets 依新的圖片 URL 分出仍被引用與已被移除的 public id
func splitAssets(publicIDs, urls []string) (kept, removed []string) {
	kept = []string{}
	for _, id := range publicIDs {
		if slices.ContainsFunc(urls, func(u string) bool { return referencesAsset(u, id) }) {
			kept = append(kept, id)
		} else {
			removed = append(removed, id)
		}
	}
	return kept, removed
}

// referencesAsset 各 driver 的 URL 都以 public id 結尾，後面只可能接副檔名
func referencesAsset(url, publicID string) bool {
	if publicID == "" {
		return false
	}
	i := strings.LastIndex(url, "/"+publicID)
	if i < 0 {
		return false
	}
	rest := url[i+1+len(publicID):]
	return rest == "" || strings.HasPrefix(rest, ".")
}

func (s *ItemService) deleteAssets(ctx context.Context, publicIDs []string) {
	for _, id := range publicIDs {
		if err := s.media.Delete(ctx, id); err != nil {
			s.logger.Warn("delete image failed", zap.String("publicId", id), zap.Error(err))
		}
	}
}

func validateItemFields(category core.ItemCategory, size core.ItemSize, condition core.ItemCondition, points int64) error {
	if !validate.IsValidCategory(string(category)) {
		return cErr.ValidateErr("Invalid category")
	}
	if !validate.IsValidSize(string(size)) {
		return cErr.ValidateErr("Invalid size")
	}
	if !validate.IsValidCondition(string(condition)) {
		return cErr.ValidateErr("Invalid condition")
	}
	if points < 0 || points > core.ItemPointsMax {
		return cErr.ValidateErr("Points required must be between 0 and 1000")
	}
	return nil
}

func validatePatch(p model.ItemPatch) error {
	if p.Title != nil && (strings.TrimSpace(*p.Title) == "" || len([]rune(*p.Title)) > core.ItemTitleMaxLen) {
		return cErr.ValidateErr("Title must be 1 to 100 characters")
	}
	if p.Description != nil && (strings.TrimSpace(*p.Description) == "" || len([]rune(*p.Description)) > core.ItemDescriptionMaxLen) {
		return cErr.ValidateErr("Description must be 1 to 500 characters")
	}
	if p.Type != nil && strings.TrimSpace(*p.Type) == "" {
		return cErr.ValidateErr("Type is required")
	}
	if p.Category != nil && !validate.IsValidCategory(string(*p.Category)) {
		return cErr.ValidateErr("Invalid category")
	}
	if p.Size != nil && !validate.IsValidSize(string(*p.Size)) {
		return cErr.ValidateErr("Invalid size")
	}
	if p.Condition != nil && !validate.IsValidCondition(string(*p.Condition)) {
		return cErr.ValidateErr("Invalid condition")
	}
	if p.PointsRequired != nil && (*p.PointsRequired < 0 || *p.PointsRequired > core.ItemPointsMax) {
		return cErr.ValidateErr("Points required must be between 0 and 1000")
	}
	return nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func assetURLs(assets []*media.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.URL
	}
	return out
}

func assetIDs(assets []*media.Asset) []string {
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.PublicID
	}
	return out
}
