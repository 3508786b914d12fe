package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pageza/recipe-api/internal/service"
)

func newCreateSuperuserCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, closeDB, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer closeDB()

			user, err := service.NewUserService(db, log).CreateUser(cmd.Context(), service.NewUser{
				Email:    email,
				Password: password,
				Name:     name,
				IsStaff:  true,
			})
			if errors.Is(err, service.ErrEmailTaken) {
				return fmt.Errorf("a user with email %s already exists", email)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "superuser %s created\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the new account")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&password, "password", "", "Password of the new account")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
