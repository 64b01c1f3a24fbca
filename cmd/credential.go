package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"bountyvault/internal/bootstrap/logging"
	"bountyvault/internal/errs"
	"bountyvault/internal/transport/presenter"
	"bountyvault/internal/usecase/bounty"
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Mint and list reputation credentials",
}

var credentialMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint the reputation credential for a paid report",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := cmd.Context()

		caller, err := requireCallerFlag()
		if err != nil {
			return err
		}
		report, err := addressFlag(cmd, "report")
		if err != nil {
			return err
		}
		label, _ := cmd.Flags().GetString("label")

		credential, err := deps.Service.MintCredential(ctx, bounty.MintCredentialInput{
			Caller:       caller,
			Report:       report,
			ProjectLabel: label,
		})
		if err != nil {
			logging.Error(ctx, "mint credential failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "mint credential")
		}

		view := presenter.NewCredential(credential)
		return writeOutput(cmd, view, textLines(
			"credential: "+view.Address,
			"researcher: "+view.Researcher,
			"report: "+view.Report,
			"severity: "+view.Severity,
			"project: "+view.ProjectLabel,
			"minted_at: "+view.MintedAt,
		))
	}),
}

var credentialListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a researcher's credentials",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		researcher, _ := cmd.Flags().GetString("researcher")
		if researcher == "" {
			researcher = callerName
		}

		credentials, err := deps.Service.ListCredentials(cmd.Context(), researcher)
		if err != nil {
			return errs.Wrap(err, "list credentials")
		}
		views := presenter.NewCredentials(credentials)
		return writeOutput(cmd, views, func(w io.Writer) error {
			if len(views) == 0 {
				_, err := fmt.Fprintln(w, "no credentials")
				return err
			}
			for _, c := range views {
				if _, err := fmt.Fprintf(w, "%s %s project=%s report=%s\n", c.Address, c.Severity, c.ProjectLabel, c.Report); err != nil {
					return err
				}
			}
			return nil
		})
	}),
}

func init() {
	rootCmd.AddCommand(credentialCmd)
	credentialCmd.AddCommand(credentialMintCmd, credentialListCmd)

	credentialMintCmd.Flags().String("report", "", "Paid report address")
	credentialMintCmd.Flags().String("label", "", "Project label recorded on the credential")

	credentialListCmd.Flags().String("researcher", "", "Researcher (defaults to --caller)")
}
