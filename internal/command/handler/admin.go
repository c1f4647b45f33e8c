package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rewear/internal/identity"
	"rewear/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultAdminEmail  = "admin@rewear.com"
	defaultAdminName   = "Admin User"
	defaultAdminPoints = 1000
)

// AdminHandler create-admin 指令
type AdminHandler struct {
	logger      *zap.Logger
	directory   identity.Directory
	userService *service.UserService
}

func NewAdminHandler(logger *zap.Logger, directory identity.Directory, userService *service.UserService) *AdminHandler {
	return &AdminHandler{
		logger:      logger,
		directory:   directory,
		userService: userService,
	}
}

// AdminFlags 註冊 create-admin 參數
func AdminFlags(cmd *cobra.Command) {
	cmd.Flags().String("uid", "", "Firebase uid（省略時以 email 查詢）")
	cmd.Flags().String("email", defaultAdminEmail, "管理員信箱")
	cmd.Flags().String("name", defaultAdminName, "顯示名稱")
	cmd.Flags().Int64("points", defaultAdminPoints, "初始點數")
}

// CreateAdmin 建立管理員；已存在則升級為 admin
func (handler *AdminHandler) CreateAdmin(cmd *cobra.Command, _ []string) error {
	params, err := handler.params(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if params.FirebaseUID == "" {
		ident, err := handler.directory.LookupByEmail(ctx, params.Email)
		if err != nil {
			if errors.Is(err, identity.ErrUserNotFound) {
				return fmt.Errorf("firebase user %s not found, create it in the Firebase console first", params.Email)
			}
			return fmt.Errorf("lookup firebase user: %w", err)
		}
		params.FirebaseUID = ident.Subject
	}

	user, created, err := handler.userService.EnsureAdmin(ctx, params)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	handler.logger.Info("admin user ready",
		zap.String("id", user.ID.Hex()),
		zap.String("firebaseUid", user.FirebaseUID),
		zap.String("email", user.Email),
		zap.Bool("created", created),
	)
	if created {
		cmd.Printf("Admin user created: %s (%s)\n", user.Email, user.ID.Hex())
	} else {
		cmd.Printf("Existing user promoted to admin: %s (%s)\n", user.Email, user.ID.Hex())
	}
	return nil
}

func (handler *AdminHandler) params(cmd *cobra.Command) (service.AdminParams, error) {
	flags := cmd.Flags()
	uid, _ := flags.GetString("uid")
	email, _ := flags.GetString("email")
	name, _ := flags.GetString("name")
	points, _ := flags.GetInt64("points")

	params := service.AdminParams{
		FirebaseUID: strings.TrimSpace(uid),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Name:        strings.TrimSpace(name),
		Points:      points,
	}
	switch {
	case params.Email == "":
		return params, errors.New("--email is required")
	case params.Name == "":
		return params, errors.New("--name is required")
	case params.Points < 0:
		return params, errors.New("--points cannot be negative")
	}
	return params, nil
}
