package service

import (
	"context"
	"errors"
	"strings"

	"rewear/internal/core"
	fluentdModel "rewear/internal/database/fluentd/model"
	"rewear/internal/database/mongodb/model"
	"rewear/internal/dto"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/telemetry"
	"rewear/utils/validate"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type SwapService struct {
	trace   *telemetry.Trace
	metric  *telemetry.Metric
	logger  *zap.Logger
	swaps   SwapStore
	items   ItemStore
	users   UserStore
	tx      Transactor
	auditor SwapAuditor
}

func NewSwapService(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	logger *zap.Logger,
	swaps SwapStore,
	items ItemStore,
	users UserStore,
	tx Transactor,
	auditor SwapAuditor,
) *SwapService {
	return &SwapService{
		trace:   trace,
		metric:  metric,
		logger:  logger,
		swaps:   swaps,
		items:   items,
		users:   users,
		tx:      tx,
		auditor: auditor,
	}
}

// CreateSwap 發起交換：目標需已上架，接收者一律為目標擁有者，點數只檢查不預扣
func (s *SwapService) CreateSwap(ctx context.Context, requester *model.User, req *dto.CreateSwapRequest) (*dto.SwapResponse, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	itemID, err := primitive.ObjectIDFromHex(req.ItemID)
	if err != nil {
		return nil, cErr.ValidateErr("Invalid itemId")
	}
	if req.PointsOffered < 0 {
		return nil, cErr.ValidateErr("Points offered cannot be negative")
	}
	if len([]rune(req.Message)) > core.SwapMessageMaxLen {
		return nil, cErr.ValidateErr("Message must be at most 500 characters")
	}

	target, err := s.items.GetByID(ctx, itemID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		s.logger.Error("get target item failed", zap.Error(err))
		return nil, cErr.DatabaseError("database GetItem error")
	}
	if target == nil || target.Status != core.ItemStatusAvailable || !target.Approved {
		return nil, cErr.NotFound("Target item not available")
	}
	if target.OwnedBy(requester.ID) {
		return nil, cErr.InvalidOperation("Cannot swap your own item")
	}
	if req.ToUserID != "" && req.ToUserID != target.UploaderID.Hex() {
		return nil, cErr.ValidateErr("toUserId must be the owner of the target item")
	}

	var offerItemID *primitive.ObjectID
	if req.OfferItemID != "" {
		id, err := primitive.ObjectIDFromHex(req.OfferItemID)
		if err != nil {
			return nil, cErr.ValidateErr("Invalid offerItemId")
		}
		offer, err := s.items.GetByID(ctx, id)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, cErr.NotFound("Offer item not found or not owned by you")
		case err != nil:
			s.logger.Error("get offer item failed", zap.Error(err))
			return nil, cErr.DatabaseError("database GetItem error")
		case !offer.OwnedBy(requester.ID):
			return nil, cErr.Forbidden("Offer item not found or not owned by you")
		case offer.Status == core.ItemStatusSwapped:
			return nil, cErr.InvalidOperation("Offer item has already been swapped")
		}
		offerItemID = &id
	}

	if req.PointsOffered > 0 {
		current, err := s.users.GetByID(ctx, requester.ID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, cErr.NotFound("User not found")
			}
			s.logger.Error("get requester failed", zap.Error(err))
			return nil, cErr.DatabaseError("database GetUser error")
		}
		if current.Points < req.PointsOffered {
			return nil, cErr.InsufficientPoints("Insufficient points")
		}
	}

	created, err := s.swaps.Create(ctx, &model.SwapRequest{
		FromUserID:    requester.ID,
		ToUserID:      target.UploaderID,
		ItemID:        target.ID,
		OfferItemID:   offerItemID,
		PointsOffered: req.PointsOffered,
		Status:        core.SwapStatusPending,
		Message:       strings.TrimSpace(req.Message),
	})
	if err != nil {
		s.logger.Error("create swap request failed", zap.Error(err))
		return nil, cErr.DatabaseError("database CreateSwapRequest error")
	}
	s.metric.IncSwapTransition(core.SwapStatusPending, "success")
	s.trace.ApplyTraceAttributes(span, swapMeta("create", created, "", core.SwapStatusPending, false))
	return &dto.SwapResponse{SwapRequest: created}, nil
}

// ListSwaps 使用者為發起者或接收者的請求，附帶雙方與商品投影
func (s *SwapService) ListSwaps(ctx context.Context, user *model.User, status *string) ([]*dto.SwapResponse, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	filter := model.SwapFilter{UserID: user.ID}
	if status != nil && *status != "" {
		if !validate.IsValidSwapStatus(*status) {
			return nil, cErr.ValidatePathParamsErr("Invalid status")
		}
		st := core.SwapStatus(*status)
		filter.Status = &st
	}
	swaps, err := s.swaps.List(ctx, filter)
	if err != nil {
		s.logger.Error("list swap requests failed", zap.Error(err))
		return nil, cErr.DatabaseError("database ListSwapRequests error")
	}
	return s.withProjections(ctx, swaps)
}

// UpdateSwapStatus 接收者或管理員處理請求。
// 相同狀態視為成功（重試安全），終態不可再改，accepted 在單一交易內完成所有轉移。
func (s *SwapService) UpdateSwapStatus(ctx context.Context, id primitive.ObjectID, actor *model.User, req *dto.UpdateSwapStatusRequest) (*dto.SwapResponse, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	swap, err := s.findSwap(ctx, id)
	if err != nil {
		return nil, err
	}
	if swap.ToUserID != actor.ID && !actor.IsAdmin() {
		return nil, cErr.Forbidden("Insufficient permissions")
	}
	if !validate.IsValidSwapStatus(req.Status) {
		return nil, cErr.ValidateErr("Invalid status")
	}
	next := core.SwapStatus(req.Status)

	if next == swap.Status {
		return &dto.SwapResponse{SwapRequest: swap}, nil
	}
	if swap.Status != core.SwapStatusPending {
		return nil, cErr.InvalidOperation("Swap request has already been " + string(swap.Status))
	}

	var updated *model.SwapRequest
	switch next {
	case core.SwapStatusRejected:
		updated, err = s.reject(ctx, swap)
	case core.SwapStatusAccepted:
		updated, err = s.accept(ctx, swap)
	default:
		// pending 以外的狀態不能回到 pending
		err = cErr.InvalidOperation("Swap request cannot return to pending")
	}
	if err != nil {
		s.metric.IncSwapTransition(next, "failed")
		return nil, err
	}

	s.metric.IncSwapTransition(next, "success")
	s.trace.ApplyTraceAttributes(span, swapMeta("update_status", updated, swap.Status, next, s.tx.Atomic()))
	s.audit(ctx, actor, updated, swap.Status)
	return &dto.SwapResponse{SwapRequest: updated}, nil
}

// DeleteSwap 發起者或管理員可刪；已接受的請求保留作為點數轉移紀錄
func (s *SwapService) DeleteSwap(ctx context.Context, id primitive.ObjectID, actor *model.User) error {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	swap, err := s.findSwap(ctx, id)
	if err != nil {
		return err
	}
	if swap.FromUserID != actor.ID && !actor.IsAdmin() {
		return cErr.Forbidden("Insufficient permissions")
	}
	if swap.Status == core.SwapStatusAccepted {
		return cErr.InvalidOperation("Accepted swap requests cannot be deleted")
	}
	if err := s.swaps.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return cErr.NotFound("Swap request not found")
		}
		s.logger.Error("delete swap request failed", zap.Error(err))
		return cErr.DatabaseError("database DeleteSwapRequest error")
	}
	return nil
}

func (s *SwapService) reject(ctx context.Context, swap *model.SwapRequest) (*model.SwapRequest, error) {
	updated, err := s.swaps.TransitionStatus(ctx, swap.ID, core.SwapStatusPending, core.SwapStatusRejected)
	if err != nil {
		return nil, mapSwapStepError(err, "Swap request is no longer pending")
	}
	return updated, nil
}

func (s *SwapService) findSwap(ctx context.Context, id primitive.ObjectID) (*model.SwapRequest, error) {
	swap, err := s.swaps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("Swap request not found")
		}
		s.logger.Error("get swap request failed", zap.Error(err))
		return nil, cErr.DatabaseError("database GetSwapRequest error")
	}
	return swap, nil
}

// withProjections 批次查詢使用者與商品，避免 N+1
func (s *SwapService) withProjections(ctx context.Context, swaps []*model.SwapRequest) ([]*dto.SwapResponse, error) {
	userIDs := make([]primitive.ObjectID, 0, len(swaps)*2)
	itemIDs := make([]primitive.ObjectID, 0, len(swaps)*2)
	for _, sw := range swaps {
		userIDs = append(userIDs, sw.FromUserID, sw.ToUserID)
		itemIDs = append(itemIDs, sw.ItemID)
		if sw.OfferItemID != nil {
			itemIDs = append(itemIDs, *sw.OfferItemID)
		}
	}

	users, err := s.users.ListByIDs(ctx, uniqueIDs(userIDs))
	if err != nil {
		s.logger.Error("list swap users failed", zap.Error(err))
		return nil, cErr.DatabaseError("database ListUsers error")
	}
	items, err := s.items.ListByIDs(ctx, uniqueIDs(itemIDs))
	if err != nil {
		s.logger.Error("list swap items failed", zap.Error(err))
		return nil, cErr.DatabaseError("database ListItems error")
	}
	userByID := make(map[primitive.ObjectID]*model.UserSummary, len(users))
	for _, u := range users {
		userByID[u.ID] = u.Summary()
	}
	itemByID := make(map[primitive.ObjectID]*model.ItemSummary, len(items))
	for _, it := range items {
		itemByID[it.ID] = it.Summary()
	}

	resp := make([]*dto.SwapResponse, len(swaps))
	for i, sw := range swaps {
		r := &dto.SwapResponse{
			SwapRequest: sw,
			FromUser:    userByID[sw.FromUserID],
			ToUser:      userByID[sw.ToUserID],
			Item:        itemByID[sw.ItemID],
		}
		if sw.OfferItemID != nil {
			r.OfferItem = itemByID[*sw.OfferItemID]
		}
		resp[i] = r
	}
	return resp, nil
}

func (s *SwapService) audit(ctx context.Context, actor *model.User, swap *model.SwapRequest, from core.SwapStatus) {
	event := fluentdModel.SwapEventLog{
		RequestID:     core.RequestIDFromContext(ctx),
		SwapID:        swap.ID.Hex(),
		ActorID:       actor.ID.Hex(),
		FromUserID:    swap.FromUserID.Hex(),
		ToUserID:      swap.ToUserID.Hex(),
		ItemID:        swap.ItemID.Hex(),
		PointsOffered: swap.PointsOffered,
		FromStatus:    string(from),
		ToStatus:      string(swap.Status),
		Transactional: s.tx.Atomic(),
	}
	if swap.OfferItemID != nil {
		event.OfferItemID = swap.OfferItemID.Hex()
	}
	if err := s.auditor.LogSwapEvent(ctx, event); err != nil {
		s.logger.Warn("swap audit log failed", zap.String("swapId", event.SwapID), zap.Error(err))
	}
}

func swapMeta(op string, swap *model.SwapRequest, from, to core.SwapStatus, transactional bool) core.TraceSwapMeta {
	meta := core.TraceSwapMeta{
		Op:            op,
		SwapID:        swap.ID.Hex(),
		FromUserID:    swap.FromUserID.Hex(),
		ToUserID:      swap.ToUserID.Hex(),
		ItemID:        swap.ItemID.Hex(),
		Points:        swap.PointsOffered,
		FromStatus:    string(from),
		ToStatus:      string(to),
		Transactional: transactional,
	}
	if swap.OfferItemID != nil {
		meta.OfferItemID = swap.OfferItemID.Hex()
	}
	return meta
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
