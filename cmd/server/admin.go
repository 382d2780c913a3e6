package main

import (
	"elsofra/internal/clock"
	"elsofra/internal/repository"
	"elsofra/internal/service"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCreateAdminCmd(configFile *string) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a staff account for the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return errors.New("--username and --password are required")
			}
			rt, err := setup(cmd.Context(), *configFile)
			if err != nil {
				return err
			}
			defer rt.Close()

			svc := service.NewAdminAuthService(repository.NewAdminAuthRepository(rt.db), rt.cfg.JWTSecret, service.DefaultTokenTTL, clock.NewSystem(rt.cfg.Location))
			if err := svc.CreateAdmin(cmd.Context(), username, password); err != nil {
				return err
			}
			rt.logger.Info("admin created", zap.String("username", username))
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	return cmd
}
