package command

// auth.go holds register, login, logout and whoami.

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/recipe-share/internal/client"
	"github.com/sakif/recipe-share/internal/session"
)

func (a *app) registerCmd() *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client(cmd, nil).Register(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			if err := a.save(res); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Registered and signed in as %s\n", res.Profile.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "username (3-30 letters, digits, _ . -)")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (at least 8 characters)")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&req.CookingExperience, "experience", "", "beginner, intermediate or expert")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client(cmd, nil).Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := a.save(res); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Signed in as %s\n", res.Profile.Username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Signed out.")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}

			p, err := a.client(cmd, sess).Me(cmd.Context())
			if err != nil {
				return a.signedOutIfRejected(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Username:   %s\n", p.Username)
			fmt.Fprintf(out, "Email:      %s\n", p.Email)
			if p.FullName != "" {
				fmt.Fprintf(out, "Name:       %s\n", p.FullName)
			}
			if p.CookingExperience != "" {
				fmt.Fprintf(out, "Experience: %s\n", p.CookingExperience)
			}
			return nil
		},
	}
}

func (a *app) save(res *client.AuthResponse) error {
	return a.store.Save(&session.Session{
		Profile: res.Profile,
		Token:   res.Token,
		Server:  a.apiURL,
	})
}
