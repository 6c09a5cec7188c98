package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lokis-perfume/storefront/client"
)

func newRegisterCmd(a *app) *cobra.Command {
	var req client.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			u, err := c.Register(ctx, req)
			if err != nil {
				return err
			}
			log.Debug().Uint("user_id", u.ID).Str("email", u.Email).Msg("registered")
			return printJSON(cmd, u)
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password; defaults to $STOREFRONT_PASSWORD")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		return passwordFromEnv(&req.Password)
	}
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var (
		req       client.LoginRequest
		noSave    bool
		showToken bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session token",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return passwordFromEnv(&req.Password)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			resp, err := c.Login(ctx, req)
			if err != nil {
				return err
			}
			if !noSave {
				s := Session{Token: resp.Token, UserID: resp.User.ID, Email: resp.User.Email, Role: resp.User.Role, SavedAt: time.Now().UTC()}
				if err := saveSession(a.sessionFile, s); err != nil {
					return err
				}
				log.Info().Str("session_file", a.sessionFile).Msg("session saved")
			}
			if showToken {
				return printJSON(cmd, resp)
			}
			return printJSON(cmd, resp.User)
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password; defaults to $STOREFRONT_PASSWORD")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not write the session file")
	cmd.Flags().BoolVar(&showToken, "show-token", false, "Print the token with the profile")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clearSession(a.sessionFile)
		},
	}
}

func newMeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the profile of the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.bearer()
			if err != nil {
				return err
			}
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			u, err := c.Me(ctx, token)
			if err != nil {
				return err
			}
			return printJSON(cmd, u)
		},
	}
}

func newUserCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show a user by ID (owner or admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 0)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			token, err := a.bearer()
			if err != nil {
				return err
			}
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			u, err := c.GetUser(ctx, uint(id), token)
			if err != nil {
				return err
			}
			return printJSON(cmd, u)
		},
	}
}

func passwordFromEnv(dst *string) error {
	if *dst != "" {
		return nil
	}
	if v := os.Getenv("STOREFRONT_PASSWORD"); v != "" {
		*dst = v
		return nil
	}
	return fmt.Errorf("password required: pass --password or set STOREFRONT_PASSWORD")
}
