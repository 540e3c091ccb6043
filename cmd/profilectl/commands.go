package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/brizzai/auth-profile/internal/auth"
	"github.com/brizzai/auth-profile/internal/profile"
	"github.com/brizzai/auth-profile/internal/translator"
	"github.com/brizzai/auth-profile/internal/tui"
)

func newRegisterCmd() *cobra.Command {
	var req auth.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store its profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := promptSecret(&req.Password, "Password"); err != nil {
				return err
			}
			if err := promptSecret(&req.PasswordConfirmation, "Confirm password"); err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc *auth.Service) error {
				id, err := svc.Register(ctx, req)
				if err != nil {
					return err
				}
				pterm.Success.Println(svc.Messages().Message(translator.KeyRegistered))
				pterm.Info.Printfln("Identity %s (%s)", pterm.LightGreen(id.ID), id.Email)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "Full name")
	f.StringVar(&req.Email, "email", "", "Email address")
	f.StringVar(&req.Age, "age", "", "Age")
	f.StringVar(&req.Phone, "phone", "", "Phone number")
	f.StringVar(&req.Password, "password", "", "Password (prompted when omitted)")
	f.StringVar(&req.PasswordConfirmation, "confirm-password", "", "Password confirmation (prompted when omitted)")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var (
		email, password string
		logout          bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and show the current identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := promptSecret(&password, "Password"); err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc *auth.Service) error {
				id, err := svc.Login(ctx, email, password)
				if err != nil {
					return err
				}
				pterm.Success.Println(svc.Messages().Message(translator.KeyLoggedIn))
				printIdentity(id.ID, id.Email, id.DisplayName)

				if !logout {
					return nil
				}
				if err := svc.Logout(ctx); err != nil {
					return err
				}
				pterm.Info.Println(svc.Messages().Message(translator.KeyLoggedOut))
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&email, "email", "", "Email address")
	f.StringVar(&password, "password", "", "Password (prompted when omitted)")
	f.BoolVar(&logout, "logout", false, "Sign out again after signing in")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the provider session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *auth.Service) error {
				if err := svc.Logout(ctx); err != nil {
					return err
				}
				pterm.Info.Println(svc.Messages().Message(translator.KeyLoggedOut))
				return nil
			})
		},
	}
}

func newResetPasswordCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Send a password reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *auth.Service) error {
				if err := svc.ResetPassword(ctx, email); err != nil {
					return err
				}
				pterm.Success.Println(svc.Messages().Message(translator.KeyResetEmailSent))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	return cmd
}

func newUpdateNameCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "update-name",
		Short: "Sign in and change the display name",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := promptSecret(&password, "Password"); err != nil {
				return err
			}
			return withService(cmd, func(ctx context.Context, svc *auth.Service) error {
				if _, err := svc.Login(ctx, email, password); err != nil {
					return err
				}
				if err := svc.UpdateDisplayName(ctx, name); err != nil {
					return err
				}
				pterm.Success.Printfln("Display name set to %q", name)
				return svc.Logout(ctx)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&email, "email", "", "Email address")
	f.StringVar(&password, "password", "", "Password (prompted when omitted)")
	f.StringVar(&name, "name", "", "New display name")
	return cmd
}

func newUsersCmd() *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List stored user profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, svc *auth.Service) error {
				records, err := svc.ListProfiles(ctx)
				if err != nil {
					return fmt.Errorf("%s: %w", svc.Messages().Message(translator.KeyListUsersFailed), err)
				}
				if interactive {
					return runTUI(records, svc)
				}
				if len(records) == 0 {
					pterm.Info.Println(svc.Messages().Message(translator.KeyNoUsers))
					return nil
				}
				return printProfiles(records)
			})
		},
	}
	cmd.Flags().BoolVar(&interactive, "tui", false, "Browse users interactively and export them to YAML")
	return cmd
}

func runTUI(records []profile.Record, svc *auth.Service) error {
	p := tea.NewProgram(tui.NewAppModel(records, svc.CurrentIdentity()), tea.WithAltScreen())

	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	finalModel := m.(tui.AppModel)
	if finalModel.IsFinished() {
		kept := 0
		for _, item := range finalModel.Profiles() {
			if !item.IsExcluded {
				kept++
			}
		}
		pterm.Info.Printfln("Export complete. Wrote %s users out of %s to %s.",
			pterm.LightGreen(kept),
			pterm.White(len(records)),
			finalModel.ExportedFile())
	}
	return nil
}

func printProfiles(records []profile.Record) error {
	data := pterm.TableData{{"Name", "Email", "Age", "Phone", "Created"}}
	for _, rec := range records {
		created := ""
		if !rec.CreatedAt.IsZero() {
			created = rec.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		data = append(data, []string{rec.Name, rec.Email, rec.Age, rec.Phone, created})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Info.Printfln("%d users", len(records))
	return nil
}

func printIdentity(id, email, name string) {
	pterm.DefaultSection.Println("Current identity")
	pterm.Printfln("  id:    %s", id)
	pterm.Printfln("  email: %s", email)
	if name != "" {
		pterm.Printfln("  name:  %s", name)
	}
}
