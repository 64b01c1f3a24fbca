package bounty

import (
	"context"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
)

// SubmitReport files a Pending report against an active vault. The payout is
// fixed now from the vault's current schedule, and the report lands at the
// address derived from the vault's report count before this submission.
func (s *Service) SubmitReport(ctx context.Context, input SubmitReportInput) (ports.ReportRecord, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.ReportRecord{}, err
	}
	researcher, err := domainbounty.NormalizeIdentity("caller", input.Caller)
	if err != nil {
		return ports.ReportRecord{}, err
	}
	if !input.Severity.Valid() {
		return ports.ReportRecord{}, domainbounty.ErrInvalidArgument
	}

	now := s.timestamp()
	var (
		report ports.ReportRecord
		out    committed
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		vault, err := s.repo.GetVault(txCtx, input.Vault)
		if err != nil {
			return err
		}
		if !vault.Active {
			return domainbounty.ErrVaultInactive
		}

		index := vault.TotalReports
		total, err := domainbounty.CheckedIncrement(index)
		if err != nil {
			return err
		}
		payout, err := vault.Schedule.Reward(input.Severity)
		if err != nil {
			return err
		}

		report = ports.ReportRecord{
			Address:       domainbounty.ReportAddress(vault.Address, researcher, index),
			Vault:         vault.Address,
			Researcher:    researcher,
			ReportIndex:   index,
			Severity:      input.Severity,
			Status:        domainbounty.StatusPending,
			ContentDigest: input.Digest,
			PayoutAmount:  payout,
			SubmittedAt:   now,
		}
		if err := s.repo.CreateReport(txCtx, report); err != nil {
			return err
		}

		vault.TotalReports = total
		vault.UpdatedAt = now
		if err := s.repo.SaveVault(txCtx, vault); err != nil {
			return err
		}

		return appendEventTx(txCtx, s.repo, &out, ports.LedgerEventCreate{
			Kind:      EventReportSubmitted,
			Vault:     vault.Address,
			Report:    &report.Address,
			Actor:     researcher,
			Amount:    payout,
			Detail:    "severity=" + input.Severity.String() + " digest=" + input.Digest.String(),
			CreatedAt: now,
		})
	}); err != nil {
		return ports.ReportRecord{}, err
	}

	out.setCache(cacheReportStatusKey(report.Address), string(report.Status))
	s.afterCommit(ctx, out)
	return report, nil
}
