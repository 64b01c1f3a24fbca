package bounty

import (
	"context"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
)

// ExecutePayout pays an Approved report's snapshotted amount from the vault's
// custody account to the researcher and marks it Paid. The transfer is
// authorized by the vault's derived authority, which only this path presents.
// A replay finds the report Paid and fails with ErrReportNotApproved.
func (s *Service) ExecutePayout(ctx context.Context, input ExecutePayoutInput) (PayoutResult, error) {
	if err := s.checkReady(ctx); err != nil {
		return PayoutResult{}, err
	}
	if s.custody == nil {
		return PayoutResult{}, errCustodyRequired
	}
	caller, err := domainbounty.NormalizeIdentity("caller", input.Caller)
	if err != nil {
		return PayoutResult{}, err
	}

	now := s.timestamp()
	var (
		result PayoutResult
		out    committed
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		vault, err := s.repo.GetVault(txCtx, input.Vault)
		if err != nil {
			return err
		}
		report, err := loadReportForVaultTx(txCtx, s.repo, vault.Address, input.Report)
		if err != nil {
			return err
		}
		if err := domainbounty.AuthorizePayout(caller, report.Researcher, report.Status); err != nil {
			return err
		}

		paidOut, err := domainbounty.SettleAgainstFunding(vault.TotalPaidOut, report.PayoutAmount, vault.TotalFunded, s.opts.EnforceSolvency)
		if err != nil {
			return err
		}

		if report.PayoutAmount > 0 {
			result.Transfer, err = s.custody.Transfer(txCtx, ports.TransferInput{
				From:      vault.CustodyAccount,
				To:        input.ResearcherAccount,
				Authority: ports.Authority{VaultSeeds: ports.NewVaultSeeds(vault.Address)},
				Amount:    report.PayoutAmount,
			})
			if err != nil {
				return err
			}
		}

		report.Status = domainbounty.StatusPaid
		report.PaidAt = &now
		if err := s.repo.SaveReport(txCtx, report); err != nil {
			return err
		}

		vault.TotalPaidOut = paidOut
		vault.UpdatedAt = now
		if err := s.repo.SaveVault(txCtx, vault); err != nil {
			return err
		}
		result.Report = report

		return appendEventTx(txCtx, s.repo, &out, ports.LedgerEventCreate{
			Kind:      EventPayoutExecuted,
			Vault:     vault.Address,
			Report:    &report.Address,
			Actor:     caller,
			Amount:    report.PayoutAmount,
			Detail:    "to=" + input.ResearcherAccount.String() + " paid_out=" + formatAmount(paidOut),
			CreatedAt: now,
		})
	}); err != nil {
		return PayoutResult{}, err
	}

	out.setCache(cacheReportStatusKey(result.Report.Address), string(result.Report.Status))
	s.afterCommit(ctx, out)
	return result, nil
}
