package service

import (
	"context"
	"errors"

	"rewear/internal/core"
	"rewear/internal/database/mongodb/model"
	"rewear/internal/database/mongodb/repository"
	cErr "rewear/internal/pkg/error"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// swapStep 接受交換的一個條件式寫入；revert 只在無交易模式下使用
type swapStep struct {
	name   string
	apply  func(ctx context.Context) error
	revert func(ctx context.Context) error
}

// accept 依序：請求 pending→accepted、目標商品 available→swapped、
// 提供商品 →swapped、扣發起者點數、加接收者點數。任何一步失敗整筆放棄。
func (s *SwapService) accept(ctx context.Context, swap *model.SwapRequest) (*model.SwapRequest, error) {
	ctx, span, end := s.trace.WithSpan(ctx, string(core.SpanSwapAcceptTx))
	var returnedError error
	defer func() { end(returnedError) }()

	s.trace.ApplyTraceAttributes(span, swapMeta("accept", swap, swap.Status, core.SwapStatusAccepted, s.tx.Atomic()))

	returnedError = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		steps, err := s.acceptSteps(txCtx, swap)
		if err != nil {
			return err
		}
		return s.runSteps(txCtx, swap, steps)
	})
	if returnedError != nil {
		var appErr *cErr.Error
		if !errors.As(returnedError, &appErr) {
			s.logger.Error("accept swap transaction failed", zap.String("swapId", swap.ID.Hex()), zap.Error(returnedError))
			returnedError = cErr.DatabaseError("database AcceptSwap error")
		}
		return nil, returnedError
	}

	updated, err := s.swaps.GetByID(ctx, swap.ID)
	if err != nil {
		s.logger.Error("reload accepted swap failed", zap.Error(err))
		return nil, cErr.DatabaseError("database GetSwapRequest error")
	}
	return updated, nil
}

func (s *SwapService) acceptSteps(ctx context.Context, swap *model.SwapRequest) ([]swapStep, error) {
	steps := []swapStep{
		{
			name: "swap_request",
			apply: func(ctx context.Context) error {
				_, err := s.swaps.TransitionStatus(ctx, swap.ID, core.SwapStatusPending, core.SwapStatusAccepted)
				return mapSwapStepError(err, "Swap request is no longer pending")
			},
			revert: func(ctx context.Context) error {
				_, err := s.swaps.TransitionStatus(ctx, swap.ID, core.SwapStatusAccepted, core.SwapStatusPending)
				return err
			},
		},
		{
			name: "target_item",
			apply: func(ctx context.Context) error {
				err := s.items.TransitionStatus(ctx, swap.ItemID, []core.ItemStatus{core.ItemStatusAvailable}, core.ItemStatusSwapped)
				return mapSwapStepError(err, "Item is no longer available")
			},
			revert: func(ctx context.Context) error {
				return s.items.TransitionStatus(ctx, swap.ItemID, []core.ItemStatus{core.ItemStatusSwapped}, core.ItemStatusAvailable)
			},
		},
	}

	if swap.OfferItemID != nil {
		offerID := *swap.OfferItemID
		offer, err := s.items.GetByID(ctx, offerID)
		if err != nil {
			return nil, mapSwapStepError(err, "Offer item is no longer available")
		}
		previous := offer.Status
		steps = append(steps, swapStep{
			name: "offer_item",
			apply: func(ctx context.Context) error {
				err := s.items.TransitionStatus(ctx, offerID,
					[]core.ItemStatus{core.ItemStatusAvailable, core.ItemStatusPending}, core.ItemStatusSwapped)
				return mapSwapStepError(err, "Offer item is no longer available")
			},
			revert: func(ctx context.Context) error {
				return s.items.TransitionStatus(ctx, offerID, []core.ItemStatus{core.ItemStatusSwapped}, previous)
			},
		})
	}

	if points := swap.PointsOffered; points > 0 {
		steps = append(steps,
			swapStep{
				name: "debit_requester",
				apply: func(ctx context.Context) error {
					_, err := s.users.AdjustPoints(ctx, swap.FromUserID, -points)
					return mapSwapStepError(err, "")
				},
				revert: func(ctx context.Context) error {
					_, err := s.users.AdjustPoints(ctx, swap.FromUserID, points)
					return err
				},
			},
			swapStep{
				name: "credit_recipient",
				apply: func(ctx context.Context) error {
					_, err := s.users.AdjustPoints(ctx, swap.ToUserID, points)
					return mapSwapStepError(err, "")
				},
				revert: func(ctx context.Context) error {
					_, err := s.users.AdjustPoints(ctx, swap.ToUserID, -points)
					return err
				},
			},
		)
	}
	return steps, nil
}

// runSteps 依序執行；無交易時失敗會反向補償已完成的步驟
func (s *SwapService) runSteps(ctx context.Context, swap *model.SwapRequest, steps []swapStep) error {
	for i, step := range steps {
		err := step.apply(ctx)
		if err == nil {
			continue
		}
		if !s.tx.Atomic() {
			for j := i - 1; j >= 0; j-- {
				if revertErr := steps[j].revert(ctx); revertErr != nil {
					s.logger.Error("swap compensation failed",
						zap.String("swapId", swap.ID.Hex()),
						zap.String("step", steps[j].name),
						zap.Error(revertErr))
				}
			}
		}
		s.logger.Info("swap acceptance aborted",
			zap.String("swapId", swap.ID.Hex()),
			zap.String("step", step.name),
			zap.Error(err))
		return err
	}
	return nil
}

// mapSwapStepError 把 repository 錯誤轉成對外錯誤；暫時性交易錯誤原樣回傳讓 driver 重試
func mapSwapStepError(err error, conflictMessage string) error {
	if err == nil {
		return nil
	}
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorLabel("TransientTransactionError") {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrInsufficientPoints):
		return cErr.InsufficientPoints("Insufficient points")
	case errors.Is(err, repository.ErrStatusConflict):
		return cErr.InvalidOperation(conflictMessage)
	case errors.Is(err, mongo.ErrNoDocuments):
		if conflictMessage != "" {
			return cErr.InvalidOperation(conflictMessage)
		}
		return cErr.NotFound("User not found")
	}
	return err
}
