package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bountyvault/internal/errs"
	"bountyvault/internal/ports"
	"bountyvault/internal/transport/presenter"
	"bountyvault/internal/usecase/bounty"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Compare every vault's custody balance with its ledger counters",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		results, err := deps.Service.AuditSolvency(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "audit solvency")
		}

		views := presenter.NewSolvency(results)
		if err := writeOutput(cmd, views, func(w io.Writer) error {
			if len(views) == 0 {
				_, err := fmt.Fprintln(w, "no vaults")
				return err
			}
			for _, v := range views {
				state := "ok"
				if !v.Healthy {
					state = "UNHEALTHY " + v.Problem
				}
				if _, err := fmt.Fprintf(w, "%s team=%s outstanding=%d custody=%d %s\n",
					v.Vault, v.Team, v.Outstanding, v.CustodyBalance, state); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}
		return bounty.AuditError(results)
	}),
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List ledger events in commit order",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		vault, err := optionalAddressFlag(cmd, "vault")
		if err != nil {
			return err
		}
		report, err := optionalAddressFlag(cmd, "report")
		if err != nil {
			return err
		}
		after, _ := cmd.Flags().GetUint64("after")
		limit, _ := cmd.Flags().GetInt("limit")

		events, err := deps.Service.ListEvents(cmd.Context(), ports.LedgerEventFilter{
			Vault:   vault,
			Report:  report,
			AfterID: after,
			Limit:   limit,
		})
		if err != nil {
			return errs.Wrap(err, "list events")
		}
		views := presenter.NewEvents(events)
		return writeOutput(cmd, views, eventsText(views))
	}),
}

func init() {
	rootCmd.AddCommand(auditCmd, eventsCmd)

	eventsCmd.Flags().String("vault", "", "Only events for this vault")
	eventsCmd.Flags().String("report", "", "Only events for this report")
	eventsCmd.Flags().Uint64("after", 0, "Only events after this id")
	eventsCmd.Flags().Int("limit", 50, "Maximum events to list")
}
