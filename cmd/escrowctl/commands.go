package main

import (
	"encoding/json"
	"fmt"

	"github.com/DanielPopoola/ficmart-escrow/internal/interfaces/rest"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := appFrom(cmd).DB.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Release held escrows whose auto-release time has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := appFrom(cmd).AutoRelease.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "released %d escrow(s)\n", n)
			return nil
		},
	}
}

func expireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Expire pending payments past their deadline",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := appFrom(cmd).Expiration.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d payment(s)\n", n)
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [payment-id]",
		Short: "Ask the gateway for the status of stale pending payments, or of one payment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if len(args) == 1 {
				payment, err := a.Payments.CheckStatus(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, rest.ToPaymentResponse(payment))
			}

			n, err := a.Reconciler.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d payment(s)\n", n)
			return nil
		},
	}
}

func relayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Publish pending outbox events once",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := appFrom(cmd).Relay.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d event(s)\n", n)
			return nil
		},
	}
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a record as JSON",
	}

	cmd.AddCommand(&cobra.Command{
		Use:  "payment <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payment, err := appFrom(cmd).Payments.GetPayment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, rest.ToPaymentResponse(payment))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:  "escrow <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			escrow, err := appFrom(cmd).Escrows.GetEscrow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, rest.ToEscrowResponse(escrow))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:  "withdrawal <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			withdrawal, err := appFrom(cmd).Withdrawals.GetWithdrawal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, rest.ToWithdrawalResponse(withdrawal))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:  "refund <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refund, err := appFrom(cmd).Refunds.GetRefund(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, rest.ToRefundResponse(refund))
		},
	})

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
