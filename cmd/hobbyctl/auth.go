package main

import (
	"errors"
	"fmt"

	"hobbyhub/internal/client/auth"

	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `hobbyctl login` first")

func loginCmd(flags *globalFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			session, err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return a.print(session.User)
		}),
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func registerCmd(flags *globalFlags) *cobra.Command {
	var in auth.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			session, err := a.auth.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.print(session.User)
		}),
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Username, "username", "", "Username")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (at least 8 characters)")
	cmd.Flags().StringVar(&in.DisplayName, "display-name", "", "Display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func socialCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "social <provider> <access-token>",
		Short: "Sign in with a provider access token (google, github)",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			session, err := a.auth.SocialAuth(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.print(session.User)
		}),
	}
}

func logoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		}),
	}
}

func meCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			user, err := a.auth.GetCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				return errNotLoggedIn
			}
			return a.print(user)
		}),
	}
}
