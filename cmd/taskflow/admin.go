package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/internal/app"
	"taskflow/internal/config"
	"taskflow/internal/services"
)

func createAdminCmd(flags *rootFlags) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:     "create-admin",
		Short:   "Create an admin account",
		Example: `  taskflow create-admin --name "Ops" --email ops@example.com --password 's3cret!'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver == config.DriverMemory {
				return errors.New("create-admin needs a persistent database driver")
			}
			ctx := background(cmd)
			store, err := app.OpenStore(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			svc, err := app.NewServices(cfg, store, nil)
			if err != nil {
				return err
			}
			res, err := svc.Users.Signup(ctx, services.SignupInput{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     "admin",
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %s)\n", res.User.Email, res.User.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password (min 6 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
