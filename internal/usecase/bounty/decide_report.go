package bounty

import (
	"context"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
)

// ApproveReport moves a Pending report to Approved. Only the vault's
// governance authority may call; the reason is optional.
func (s *Service) ApproveReport(ctx context.Context, input DecideReportInput) (ports.ReportRecord, error) {
	return s.decideReport(ctx, input, domainbounty.StatusApproved)
}

// RejectReport moves a Pending report to Rejected. A reason is required.
func (s *Service) RejectReport(ctx context.Context, input DecideReportInput) (ports.ReportRecord, error) {
	return s.decideReport(ctx, input, domainbounty.StatusRejected)
}

func (s *Service) decideReport(ctx context.Context, input DecideReportInput, to domainbounty.ReportStatus) (ports.ReportRecord, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.ReportRecord{}, err
	}
	caller, err := domainbounty.NormalizeIdentity("caller", input.Caller)
	if err != nil {
		return ports.ReportRecord{}, err
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
		report, err = loadReportForVaultTx(txCtx, s.repo, vault.Address, input.Report)
		if err != nil {
			return err
		}
		if err := domainbounty.AuthorizeDecision(caller, vault.Governance, report.Status, to); err != nil {
			return err
		}

		var reason string
		if to == domainbounty.StatusRejected {
			reason, err = requiredText("reason", input.Reason)
		} else {
			reason, err = optionalText("reason", input.Reason)
		}
		if err != nil {
			return err
		}

		report.Status = to
		report.Approver = &caller
		if reason != "" {
			report.Reason = &reason
		}

		kind := EventReportRejected
		if to == domainbounty.StatusApproved {
			approved, err := domainbounty.CheckedIncrement(vault.ApprovedReports)
			if err != nil {
				return err
			}
			vault.ApprovedReports = approved
			vault.UpdatedAt = now
			if err := s.repo.SaveVault(txCtx, vault); err != nil {
				return err
			}
			report.ApprovedAt = &now
			kind = EventReportApproved
		} else {
			report.RejectedAt = &now
		}

		if err := s.repo.SaveReport(txCtx, report); err != nil {
			return err
		}

		return appendEventTx(txCtx, s.repo, &out, ports.LedgerEventCreate{
			Kind:      kind,
			Vault:     vault.Address,
			Report:    &report.Address,
			Actor:     caller,
			Amount:    report.PayoutAmount,
			Detail:    reason,
			CreatedAt: now,
		})
	}); err != nil {
		return ports.ReportRecord{}, err
	}

	out.setCache(cacheReportStatusKey(report.Address), string(report.Status))
	s.afterCommit(ctx, out)
	return report, nil
}
