package service

import (
	"context"
	"errors"
	"strings"

	"rewear/internal/core"
	"rewear/internal/database/mongodb/model"
	"rewear/internal/database/mongodb/repository"
	"rewear/internal/dto"
	"rewear/internal/identity"
	cErr "rewear/internal/pkg/error"
	"rewear/internal/telemetry"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type UserService struct {
	trace  *telemetry.Trace
	logger *zap.Logger
	users  UserStore
}

func NewUserService(trace *telemetry.Trace, logger *zap.Logger, users UserStore) *UserService {
	return &UserService{trace: trace, logger: logger, users: users}
}

// 註冊：uid / email 來自已驗證的 token，贈送 50 點
func (s *UserService) Register(ctx context.Context, ident *identity.Identity, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	email := normalizeEmail(ident.Email)
	name := strings.TrimSpace(req.Name)
	if ident.Subject == "" || email == "" || name == "" {
		return nil, cErr.ValidateErr("Missing required fields")
	}

	if _, err := s.users.GetByFirebaseUID(ctx, ident.Subject); err == nil {
		return nil, cErr.Conflict("User already exists")
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		s.logger.Error("lookup user failed", zap.Error(err))
		return nil, cErr.DatabaseError("database GetByFirebaseUID error")
	}

	created, err := s.users.Create(ctx, &model.User{
		FirebaseUID: ident.Subject,
		Email:       email,
		Name:        name,
		Avatar:      req.Avatar,
		Role:        core.RoleUser,
		Points:      core.WelcomePoints,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, cErr.Conflict("User already exists")
		}
		s.logger.Error("create user failed", zap.Error(err))
		return nil, cErr.DatabaseError("database CreateUser error")
	}
	return dto.NewUserResponse(created), nil
}

// ResolveUser 依 Firebase uid 找本地使用者（middleware 用）
func (s *UserService) ResolveUser(ctx context.Context, firebaseUID string) (*model.User, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	user, err := s.users.GetByFirebaseUID(ctx, firebaseUID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("User not found")
		}
		s.logger.Error("resolve user failed", zap.Error(err))
		return nil, cErr.DatabaseError("database GetByFirebaseUID error")
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, firebaseUID string) (*dto.UserResponse, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	user, err := s.ResolveUser(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

// 本人或管理員可改；空白 name 忽略，avatar 有帶就套用（可清空）
func (s *UserService) UpdateProfile(ctx context.Context, firebaseUID string, actor *model.User, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if !canActOn(actor, firebaseUID) {
		return nil, cErr.Forbidden("Insufficient permissions")
	}
	target, err := s.ResolveUser(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}

	patch := model.UserPatch{Avatar: req.Avatar}
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			patch.Name = &name
		}
	}
	updated, err := s.users.UpdateProfile(ctx, target.ID, patch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cErr.NotFound("User not found")
		}
		s.logger.Error("update profile failed", zap.Error(err))
		return nil, cErr.DatabaseError("database UpdateProfile error")
	}
	return dto.NewUserResponse(updated), nil
}

// 加減點；subtract 為條件式更新，餘額永遠不會為負
func (s *UserService) AdjustPoints(ctx context.Context, firebaseUID string, actor *model.User, req *dto.AdjustPointsRequest) (*dto.PointsResponse, error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer end(nil)

	if !canActOn(actor, firebaseUID) {
		return nil, cErr.Forbidden("Insufficient permissions")
	}
	if req.Points < 1 {
		return nil, cErr.ValidateErr("Points must be a positive integer")
	}
	operation := req.Operation
	if operation == "" {
		operation = core.PointsAdd
	}
	delta := req.Points
	switch operation {
	case core.PointsAdd:
	case core.PointsSubtract:
		delta = -req.Points
	default:
		return nil, cErr.ValidateErr("Operation must be add or subtract")
	}

	target, err := s.ResolveUser(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}
	updated, err := s.users.AdjustPoints(ctx, target.ID, delta)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientPoints):
			return nil, cErr.InsufficientPoints("Insufficient points")
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, cErr.NotFound("User not found")
		}
		s.logger.Error("adjust points failed", zap.Error(err))
		return nil, cErr.DatabaseError("database AdjustPoints error")
	}

	s.trace.ApplyTraceAttributes(span, core.TracePointsMeta{
		UserID:    updated.ID.Hex(),
		Operation: string(operation),
		Amount:    req.Points,
		Balance:   updated.Points,
	})
	return &dto.PointsResponse{ID: updated.ID.Hex(), Points: updated.Points}, nil
}

// AdminParams create-admin 指令參數
type AdminParams struct {
	FirebaseUID string
	Email       string
	Name        string
	Points      int64
}

// EnsureAdmin 建立或升級管理員；回傳 created 表示是否為新建
func (s *UserService) EnsureAdmin(ctx context.Context, params AdminParams) (_ *model.User, created bool, _ error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer end(nil)

	existing, err := s.users.GetByFirebaseUID(ctx, params.FirebaseUID)
	switch {
	case err == nil:
		promoted, err := s.users.Promote(ctx, existing.ID, params.Points)
		if err != nil {
			return nil, false, err
		}
		return promoted, false, nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, false, err
	}

	user, err := s.users.Create(ctx, &model.User{
		FirebaseUID: params.FirebaseUID,
		Email:       normalizeEmail(params.Email),
		Name:        strings.TrimSpace(params.Name),
		Role:        core.RoleAdmin,
		Points:      params.Points,
	})
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func canActOn(actor *model.User, firebaseUID string) bool {
	return actor != nil && (actor.FirebaseUID == firebaseUID || actor.IsAdmin())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
