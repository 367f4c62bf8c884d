// Command escrowctl runs the background jobs once and inspects records from a shell.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/DanielPopoola/ficmart-escrow/internal/app"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/spf13/cobra"
)

var Version = "dev"

type appKey struct{}

func main() {
	rootCmd := &cobra.Command{
		Use:           "escrowctl",
		Short:         "Operator tool for the FicMart escrow gateway",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger := cfg.Logger.NewLogger()

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a := appFrom(cmd); a != nil {
				a.Close()
			}
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(expireCmd())
	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(relayCmd())
	rootCmd.AddCommand(showCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func appFrom(cmd *cobra.Command) *app.App {
	a, _ := cmd.Context().Value(appKey{}).(*app.App)
	return a
}
