package bounty

import (
	"context"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
)

// MintCredential issues the reputation credential for a Paid report. The
// credential address is derived from (researcher, report), so a second mint
// fails with ErrAddressInUse.
func (s *Service) MintCredential(ctx context.Context, input MintCredentialInput) (ports.CredentialRecord, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.CredentialRecord{}, err
	}
	caller, err := domainbounty.NormalizeIdentity("caller", input.Caller)
	if err != nil {
		return ports.CredentialRecord{}, err
	}
	label, err := requiredText("project label", input.ProjectLabel)
	if err != nil {
		return ports.CredentialRecord{}, err
	}

	now := s.timestamp()
	var (
		credential ports.CredentialRecord
		out        committed
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		report, err := s.repo.GetReport(txCtx, input.Report)
		if err != nil {
			return err
		}
		if err := domainbounty.AuthorizeCredential(report.Status); err != nil {
			return err
		}

		credential = ports.CredentialRecord{
			Address:      domainbounty.CredentialAddress(report.Researcher, report.Address),
			Researcher:   report.Researcher,
			Vault:        report.Vault,
			Report:       report.Address,
			Severity:     report.Severity,
			ProjectLabel: label,
			MintedAt:     now,
		}
		if err := s.repo.CreateCredential(txCtx, credential); err != nil {
			return err
		}

		return appendEventTx(txCtx, s.repo, &out, ports.LedgerEventCreate{
			Kind:      EventCredentialMinted,
			Vault:     report.Vault,
			Report:    &report.Address,
			Actor:     caller,
			Detail:    "credential=" + credential.Address.String() + " label=" + label,
			CreatedAt: now,
		})
	}); err != nil {
		return ports.CredentialRecord{}, err
	}

	s.afterCommit(ctx, out)
	return credential, nil
}
