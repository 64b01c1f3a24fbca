package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"bountyvault/internal/bootstrap/logging"
	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/errs"
	"bountyvault/internal/transport/presenter"
)

var custodyCmd = &cobra.Command{
	Use:   "custody",
	Short: "Manage custody accounts on the local ledger",
}

var custodyOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a custody account held by the caller",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := cmd.Context()

		caller, err := requireCallerFlag()
		if err != nil {
			return err
		}
		tokenID, _ := cmd.Flags().GetString("token")

		account, err := deps.Service.OpenCustodyAccount(ctx, caller, tokenID)
		if err != nil {
			logging.Error(ctx, "open custody account failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "open custody account")
		}
		return writeCustodyAccount(cmd, presenter.NewCustodyAccount(account))
	}),
}

var custodyOpenVaultCmd = &cobra.Command{
	Use:   "open-vault",
	Short: "Open the custody account the caller's vault pays from",
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
		if err := domainbounty.AuthorizeTeam(caller, team); err != nil {
			return err
		}
		tokenID, _ := cmd.Flags().GetString("token")

		account, err := deps.Service.OpenVaultCustodyAccount(ctx, team, tokenID)
		if err != nil {
			logging.Error(ctx, "open vault custody account failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "open vault custody account")
		}
		return writeCustodyAccount(cmd, presenter.NewCustodyAccount(account))
	}),
}

var custodyMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Issue funds into a signer custody account (caller must be ledger.mint_issuer)",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := cmd.Context()

		caller, err := requireCallerFlag()
		if err != nil {
			return err
		}
		address, err := addressFlag(cmd, "account")
		if err != nil {
			return err
		}
		amount, _ := cmd.Flags().GetUint64("amount")

		account, err := deps.Service.MintCustody(ctx, caller, address, amount)
		if err != nil {
			logging.Error(ctx, "mint custody funds failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "mint custody funds")
		}
		return writeCustodyAccount(cmd, presenter.NewCustodyAccount(account))
	}),
}

var custodyBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show a custody account and its recent transfers",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		address, err := addressFlag(cmd, "account")
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		account, err := deps.Service.GetCustodyAccount(cmd.Context(), address)
		if err != nil {
			return errs.Wrap(err, "get custody account")
		}
		transfers, err := deps.Service.ListCustodyTransfers(cmd.Context(), address, limit)
		if err != nil {
			return errs.Wrap(err, "list custody transfers")
		}

		view := struct {
			Account   presenter.CustodyAccount `json:"account" yaml:"account"`
			Transfers []presenter.Transfer     `json:"transfers" yaml:"transfers"`
		}{
			Account:   presenter.NewCustodyAccount(account),
			Transfers: presenter.NewTransfers(transfers),
		}
		return writeOutput(cmd, view, func(w io.Writer) error {
			if err := custodyAccountText(view.Account)(w); err != nil {
				return err
			}
			for _, t := range view.Transfers {
				if _, err := fmt.Fprintf(w, "- %s %s %s -> %s amount=%d by=%s\n",
					t.CreatedAt, t.TransferID, firstNonEmpty(t.From, "mint"), t.To, t.Amount, t.Authority); err != nil {
					return err
				}
			}
			return nil
		})
	}),
}

func writeCustodyAccount(cmd *cobra.Command, a presenter.CustodyAccount) error {
	return writeOutput(cmd, a, custodyAccountText(a))
}

func custodyAccountText(a presenter.CustodyAccount) func(w io.Writer) error {
	return textLines(
		"account: "+a.Address,
		fmt.Sprintf("holder: %s (%s)", a.Holder, a.HolderKind),
		"token: "+firstNonEmpty(a.TokenID, "native"),
		fmt.Sprintf("balance: %d", a.Balance),
	)
}

func init() {
	rootCmd.AddCommand(custodyCmd)
	custodyCmd.AddCommand(custodyOpenCmd, custodyOpenVaultCmd, custodyMintCmd, custodyBalanceCmd)

	custodyOpenCmd.Flags().String("token", "", "Token id (empty for the native unit)")

	custodyOpenVaultCmd.Flags().String("team", "", "Vault team (defaults to --caller)")
	custodyOpenVaultCmd.Flags().String("token", "", "Token id (empty for the native unit)")

	custodyMintCmd.Flags().String("account", "", "Signer custody account")
	custodyMintCmd.Flags().Uint64("amount", 0, "Amount to issue")

	custodyBalanceCmd.Flags().String("account", "", "Custody account")
	custodyBalanceCmd.Flags().Int("limit", 20, "Recent transfers to show")
}
