package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brizzai/auth-profile/internal/app"
	"github.com/brizzai/auth-profile/internal/auth"
	"github.com/brizzai/auth-profile/internal/config"
	"github.com/brizzai/auth-profile/internal/identity"
	"github.com/brizzai/auth-profile/internal/logger"
	"github.com/brizzai/auth-profile/internal/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "profilectl",
	Short: "Register, sign in and browse user profiles",
	Long: `profilectl drives the auth-profile layer from the command line.
It registers accounts together with their profile record, signs users in and
out, sends password reset emails and lists the stored profiles.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// reportedError marks an error already shown to the user.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// flags are parsed by the time PersistentPreRun runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			pterm.Error.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(
		newRegisterCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newResetPasswordCmd(),
		newUpdateNameCmd(),
		newUsersCmd(),
	)
}

// withService loads the configuration, starts the application and hands the
// auth service to fn. The application is always stopped before returning.
func withService(cmd *cobra.Command, fn func(ctx context.Context, svc *auth.Service) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pterm.Error.Printf("\nCaught panic: %v\n", r)
			pterm.Error.Printf("%s\n", debug.Stack())
			os.Exit(2)
		}
	}()

	cfg, err := config.Load(cmd.Root().PersistentFlags())
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("error starting: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if stopErr := a.Stop(stopCtx); stopErr != nil {
			logger.Warn("Shutdown failed", zap.Error(stopErr))
		}
	}()

	unsubscribe := a.Auth.SubscribeToIdentity(func(id *identity.Identity) {
		if id == nil {
			logger.Debug("Identity changed: signed out")
			return
		}
		logger.Debug("Identity changed", zap.String("identity_id", id.ID), logger.Email("email", id.Email))
	})
	defer unsubscribe()

	if err := fn(ctx, a.Auth); err != nil {
		report(a.Auth, err)
		return reportedError{err}
	}
	return nil
}

// report prints err in the user's language.
func report(svc *auth.Service, err error) {
	var (
		verr       *validation.Error
		aerr       *auth.Error
		incomplete *auth.IncompleteRegistrationError
	)
	switch {
	case errors.As(err, &verr):
		pterm.Warning.Println(svc.Messages().Validation(verr.Kind))
	case errors.As(err, &incomplete):
		pterm.Error.Println(incomplete.Message)
		pterm.Warning.Printfln("Account %s was created but step %q did not complete.",
			incomplete.Identity.Email, incomplete.Step)
	case errors.As(err, &aerr):
		pterm.Error.Println(aerr.Message)
	default:
		pterm.Error.Println(err)
	}
}
