package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"bountyvault/internal/bootstrap/logging"
	"bountyvault/internal/errs"
	"bountyvault/internal/ports"
	"bountyvault/internal/transport/presenter"
	"bountyvault/internal/usecase/bounty"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Create, fund and configure bounty vaults",
}

var vaultCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the caller's vault",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := cmd.Context()

		caller, err := requireCallerFlag()
		if err != nil {
			return err
		}
		team, _ := cmd.Flags().GetString("team")
		if team == "" {
			team = caller
		}
		governance, _ := cmd.Flags().GetString("governance")
		funding, _ := cmd.Flags().GetUint64("initial-funding")
		tokenID, _ := cmd.Flags().GetString("token")
		schedule, err := scheduleFromFlags(cmd)
		if err != nil {
			return err
		}
		custody, err := addressFlag(cmd, "custody-account")
		if err != nil {
			return err
		}
		funder, err := optionalAddressFlag(cmd, "funder-account")
		if err != nil {
			return err
		}

		vault, err := deps.Service.CreateVault(ctx, bounty.CreateVaultInput{
			Caller:         caller,
			Team:           team,
			Governance:     governance,
			Schedule:       schedule,
			InitialFunding: funding,
			CustodyAccount: custody,
			TokenID:        tokenID,
			FunderAccount:  funder,
		})
		if err != nil {
			logging.Error(ctx, "create vault failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create vault")
		}
		return writeVault(cmd, presenter.NewVault(vault))
	}),
}

var vaultFundCmd = &cobra.Command{
	Use:   "fund",
	Short: "Move funds from the caller's custody account into a vault",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := cmd.Context()

		caller, err := requireCallerFlag()
		if err != nil {
			return err
		}
		address, err := addressFlag(cmd, "vault")
		if err != nil {
			return err
		}
		funder, err := addressFlag(cmd, "funder-account")
		if err != nil {
			return err
		}
		amount, _ := cmd.Flags().GetUint64("amount")

		vault, err := deps.Service.FundVault(ctx, bounty.FundVaultInput{
			Caller:        caller,
			Vault:         address,
			Amount:        amount,
			FunderAccount: funder,
		})
		if err != nil {
			logging.Error(ctx, "fund vault failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "fund vault")
		}
		return writeVault(cmd, presenter.NewVault(vault))
	}),
}

var vaultToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Flip whether a vault accepts new reports",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := cmd.Context()

		caller, err := requireCallerFlag()
		if err != nil {
			return err
		}
		address, err := addressFlag(cmd, "vault")
		if err != nil {
			return err
		}

		vault, err := deps.Service.ToggleActive(ctx, bounty.ToggleActiveInput{Caller: caller, Vault: address})
		if err != nil {
			logging.Error(ctx, "toggle vault failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "toggle vault")
		}
		return writeVault(cmd, presenter.NewVault(vault))
	}),
}

var vaultScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Replace a vault's reward schedule for future reports",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := cmd.Context()

		caller, err := requireCallerFlag()
		if err != nil {
			return err
		}
		address, err := addressFlag(cmd, "vault")
		if err != nil {
			return err
		}
		schedule, err := scheduleFromFlags(cmd)
		if err != nil {
			return err
		}

		vault, err := deps.Service.UpdateRewardSchedule(ctx, bounty.UpdateScheduleInput{
			Caller:   caller,
			Vault:    address,
			Schedule: schedule,
		})
		if err != nil {
			logging.Error(ctx, "update reward schedule failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "update reward schedule")
		}
		return writeVault(cmd, presenter.NewVault(vault))
	}),
}

var vaultShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one vault",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		address, err := addressFlag(cmd, "vault")
		if err != nil {
			return err
		}
		vault, err := deps.Service.GetVault(cmd.Context(), address)
		if err != nil {
			return errs.Wrap(err, "get vault")
		}
		return writeVault(cmd, presenter.NewVault(vault))
	}),
}

var vaultListCmd = &cobra.Command{
	Use:   "list",
	Short: "List vaults",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		team, _ := cmd.Flags().GetString("team")
		activeOnly, _ := cmd.Flags().GetBool("active")

		vaults, err := deps.Service.ListVaults(cmd.Context(), ports.VaultFilter{Team: team, ActiveOnly: activeOnly})
		if err != nil {
			return errs.Wrap(err, "list vaults")
		}
		views := presenter.NewVaults(vaults)
		return writeOutput(cmd, views, func(w io.Writer) error {
			if len(views) == 0 {
				_, err := fmt.Fprintln(w, "no vaults")
				return err
			}
			for _, v := range views {
				if _, err := fmt.Fprintf(w, "%s team=%s active=%t funded=%d paid_out=%d reports=%d\n",
					v.Address, v.Team, v.Active, v.TotalFunded, v.TotalPaidOut, v.TotalReports); err != nil {
					return err
				}
			}
			return nil
		})
	}),
}

func writeVault(cmd *cobra.Command, v presenter.Vault) error {
	return writeOutput(cmd, v, textLines(
		"vault: "+v.Address,
		"team: "+v.Team,
		"governance: "+v.Governance,
		"custody_account: "+v.CustodyAccount,
		fmt.Sprintf("token: %s", firstNonEmpty(v.TokenID, "native")),
		fmt.Sprintf("schedule: critical=%d high=%d medium=%d low=%d", v.Schedule.Critical, v.Schedule.High, v.Schedule.Medium, v.Schedule.Low),
		fmt.Sprintf("funded: %d paid_out: %d", v.TotalFunded, v.TotalPaidOut),
		fmt.Sprintf("reports: %d approved: %d", v.TotalReports, v.ApprovedReports),
		fmt.Sprintf("active: %t", v.Active),
	))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(vaultCmd)
	vaultCmd.AddCommand(vaultCreateCmd, vaultFundCmd, vaultToggleCmd, vaultScheduleCmd, vaultShowCmd, vaultListCmd)

	vaultCreateCmd.Flags().String("team", "", "Owning team (defaults to --caller)")
	vaultCreateCmd.Flags().String("governance", "", "Identity that approves or rejects reports")
	vaultCreateCmd.Flags().Uint64("initial-funding", 0, "Initial funding amount")
	vaultCreateCmd.Flags().String("custody-account", "", "Vault custody account (see custody open-vault)")
	vaultCreateCmd.Flags().String("funder-account", "", "Caller custody account that pays the initial funding")
	vaultCreateCmd.Flags().String("token", "", "Reward token id (empty for the native unit)")
	addScheduleFlags(vaultCreateCmd)

	vaultFundCmd.Flags().String("vault", "", "Vault address")
	vaultFundCmd.Flags().Uint64("amount", 0, "Amount to move")
	vaultFundCmd.Flags().String("funder-account", "", "Caller custody account to debit")

	vaultToggleCmd.Flags().String("vault", "", "Vault address")

	vaultScheduleCmd.Flags().String("vault", "", "Vault address")
	addScheduleFlags(vaultScheduleCmd)

	vaultShowCmd.Flags().String("vault", "", "Vault address")

	vaultListCmd.Flags().String("team", "", "Only vaults owned by this team")
	vaultListCmd.Flags().Bool("active", false, "Only active vaults")
}
