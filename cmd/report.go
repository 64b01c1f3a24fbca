package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"bountyvault/internal/bootstrap/logging"
	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/errs"
	"bountyvault/internal/ports"
	"bountyvault/internal/transport/presenter"
	"bountyvault/internal/usecase/bounty"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Submit, decide and pay vulnerability reports",
}

var reportSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a report to a vault as the caller",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := cmd.Context()

		caller, err := requireCallerFlag()
		if err != nil {
			return err
		}
		vault, err := addressFlag(cmd, "vault")
		if err != nil {
			return err
		}
		rawSeverity, _ := cmd.Flags().GetString("severity")
		severity, err := domainbounty.ParseSeverity(rawSeverity)
		if err != nil {
			return err
		}
		digest, err := resolveDigest(cmd)
		if err != nil {
			return err
		}

		report, err := deps.Service.SubmitReport(ctx, bounty.SubmitReportInput{
			Caller:   caller,
			Vault:    vault,
			Severity: severity,
			Digest:   digest,
		})
		if err != nil {
			logging.Error(ctx, "submit report failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "submit report")
		}
		return writeReport(cmd, presenter.NewReport(report))
	}),
}

var reportApproveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve a pending report as governance",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		return runDecision(cmd, "approve", deps.Service.ApproveReport)
	}),
}

var reportRejectCmd = &cobra.Command{
	Use:   "reject",
	Short: "Reject a pending report as governance",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		return runDecision(cmd, "reject", deps.Service.RejectReport)
	}),
}

var reportPayoutCmd = &cobra.Command{
	Use:   "payout",
	Short: "Pay an approved report to the researcher's custody account",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := cmd.Context()

		caller, err := requireCallerFlag()
		if err != nil {
			return err
		}
		vault, err := addressFlag(cmd, "vault")
		if err != nil {
			return err
		}
		report, err := addressFlag(cmd, "report")
		if err != nil {
			return err
		}
		account, err := addressFlag(cmd, "account")
		if err != nil {
			return err
		}

		result, err := deps.Service.ExecutePayout(ctx, bounty.ExecutePayoutInput{
			Caller:            caller,
			Vault:             vault,
			Report:            report,
			ResearcherAccount: account,
		})
		if err != nil {
			logging.Error(ctx, "execute payout failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "execute payout")
		}

		view := presenter.NewPayout(result)
		return writeOutput(cmd, view, func(w io.Writer) error {
			if err := reportText(view.Report)(w); err != nil {
				return err
			}
			if view.Transfer == nil {
				_, err := fmt.Fprintln(w, "transfer: none")
				return err
			}
			_, err := fmt.Fprintf(w, "transfer: %s amount=%d\n", view.Transfer.TransferID, view.Transfer.Amount)
			return err
		})
	}),
}

var reportShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a report and its history",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		address, err := addressFlag(cmd, "report")
		if err != nil {
			return err
		}
		detail, err := deps.Service.GetReport(cmd.Context(), address)
		if err != nil {
			return errs.Wrap(err, "get report")
		}

		view := presenter.NewReportDetail(detail)
		return writeOutput(cmd, view, func(w io.Writer) error {
			if err := reportText(view.Report)(w); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w, "history:"); err != nil {
				return err
			}
			return eventsText(view.Events)(w)
		})
	}),
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		vault, err := optionalAddressFlag(cmd, "vault")
		if err != nil {
			return err
		}
		researcher, _ := cmd.Flags().GetString("researcher")
		filter := ports.ReportFilter{Vault: vault, Researcher: researcher}
		if raw, _ := cmd.Flags().GetString("status"); raw != "" {
			if filter.Status, err = domainbounty.ParseReportStatus(raw); err != nil {
				return err
			}
		}

		reports, err := deps.Service.ListReports(cmd.Context(), filter)
		if err != nil {
			return errs.Wrap(err, "list reports")
		}
		views := presenter.NewReports(reports)
		return writeOutput(cmd, views, func(w io.Writer) error {
			if len(views) == 0 {
				_, err := fmt.Fprintln(w, "no reports")
				return err
			}
			for _, r := range views {
				if _, err := fmt.Fprintf(w, "%s [%s] %s researcher=%s payout=%d\n",
					r.Address, r.Status, r.Severity, r.Researcher, r.PayoutAmount); err != nil {
					return err
				}
			}
			return nil
		})
	}),
}

func runDecision(cmd *cobra.Command, action string, apply func(ctx context.Context, input bounty.DecideReportInput) (ports.ReportRecord, error)) error {
	ctx := cmd.Context()

	caller, err := requireCallerFlag()
	if err != nil {
		return err
	}
	vault, err := addressFlag(cmd, "vault")
	if err != nil {
		return err
	}
	report, err := addressFlag(cmd, "report")
	if err != nil {
		return err
	}
	reason, _ := cmd.Flags().GetString("reason")

	record, err := apply(ctx, bounty.DecideReportInput{
		Caller: caller,
		Vault:  vault,
		Report: report,
		Reason: reason,
	})
	if err != nil {
		logging.Error(ctx, action+" report failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrapf(err, "%s report", action)
	}
	return writeReport(cmd, presenter.NewReport(record))
}

// resolveDigest reads --digest, or hashes --body-file when no digest is given.
func resolveDigest(cmd *cobra.Command) (domainbounty.ContentDigest, error) {
	raw, _ := cmd.Flags().GetString("digest")
	bodyFile, _ := cmd.Flags().GetString("body-file")
	raw = strings.TrimSpace(raw)
	bodyFile = strings.TrimSpace(bodyFile)

	switch {
	case raw != "" && bodyFile != "":
		return domainbounty.ContentDigest{}, fmt.Errorf("%w: use either --digest or --body-file", domainbounty.ErrInvalidArgument)
	case raw != "":
		return domainbounty.ParseContentDigest(raw)
	case bodyFile != "":
		body, err := os.ReadFile(bodyFile)
		if err != nil {
			return domainbounty.ContentDigest{}, errs.Wrapf(err, "read body file %q", bodyFile)
		}
		return domainbounty.DigestOf(body), nil
	default:
		return domainbounty.ContentDigest{}, fmt.Errorf("%w: --digest or --body-file is required", domainbounty.ErrInvalidArgument)
	}
}

func writeReport(cmd *cobra.Command, r presenter.Report) error {
	return writeOutput(cmd, r, reportText(r))
}

func reportText(r presenter.Report) func(w io.Writer) error {
	lines := []string{
		"report: " + r.Address,
		"vault: " + r.Vault,
		"researcher: " + r.Researcher,
		fmt.Sprintf("index: %d", r.ReportIndex),
		"severity: " + r.Severity,
		"status: " + r.Status,
		"digest: " + r.ContentDigest,
		fmt.Sprintf("payout: %d", r.PayoutAmount),
	}
	if r.Approver != nil {
		lines = append(lines, "decided_by: "+*r.Approver)
	}
	if r.Reason != nil {
		lines = append(lines, "reason: "+*r.Reason)
	}
	return textLines(lines...)
}

func eventsText(events []presenter.Event) func(w io.Writer) error {
	return func(w io.Writer) error {
		if len(events) == 0 {
			_, err := fmt.Fprintln(w, "- none")
			return err
		}
		for _, e := range events {
			if _, err := fmt.Fprintf(w, "- e%d %s %s actor=%s amount=%d %s\n",
				e.EventID, e.CreatedAt, e.Kind, e.Actor, e.Amount, e.Detail); err != nil {
				return err
			}
		}
		return nil
	}
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportSubmitCmd, reportApproveCmd, reportRejectCmd, reportPayoutCmd, reportShowCmd, reportListCmd)

	reportSubmitCmd.Flags().String("vault", "", "Vault address")
	reportSubmitCmd.Flags().String("severity", "", "critical|high|medium|low")
	reportSubmitCmd.Flags().String("digest", "", "Hex sha256 of the report body")
	reportSubmitCmd.Flags().String("body-file", "", "Report body file to hash instead of --digest")

	for _, decision := range []*cobra.Command{reportApproveCmd, reportRejectCmd} {
		decision.Flags().String("vault", "", "Vault address")
		decision.Flags().String("report", "", "Report address")
		decision.Flags().String("reason", "", "Decision reason (required for reject)")
	}

	reportPayoutCmd.Flags().String("vault", "", "Vault address")
	reportPayoutCmd.Flags().String("report", "", "Report address")
	reportPayoutCmd.Flags().String("account", "", "Researcher custody account to credit")

	reportShowCmd.Flags().String("report", "", "Report address")

	reportListCmd.Flags().String("vault", "", "Only reports in this vault")
	reportListCmd.Flags().String("researcher", "", "Only reports by this researcher")
	reportListCmd.Flags().String("status", "", "pending|approved|rejected|paid")
}
