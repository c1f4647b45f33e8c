package command

import (
	commandHandler "rewear/internal/command/handler"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(NewCommand, commandHandler.NewAdminHandler)

type Command struct {
	adminCommandHandler *commandHandler.AdminHandler
}

// NewCommand .
func NewCommand(
	adminCommandHandler *commandHandler.AdminHandler,
) *Command {
	return &Command{
		adminCommandHandler: adminCommandHandler,
	}
}

func Register(rootCmd *cobra.Command, newCmd func() (*Command, func(), error)) {
	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "建立或升級管理員帳號",
		RunE: func(cmd *cobra.Command, args []string) error {
			command, cleanup, err := newCmd()
			if err != nil {
				return err
			}
			defer cleanup()

			return command.adminCommandHandler.CreateAdmin(cmd, args)
		},
	}
	commandHandler.AdminFlags(createAdmin)
	rootCmd.AddCommand(createAdmin)
}
