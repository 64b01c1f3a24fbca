package repository

import (
	"fmt"

	"github.com/google/uuid"

	"bountyvault/internal/domain/bounty"
	"bountyvault/internal/infrastructure/persistence/sqlite/model"
	"bountyvault/internal/ports"
)

func newEventUID() string {
	return uuid.NewString()
}

func malformed(kind string, address string, err error) error {
	return fmt.Errorf("%w: malformed %s %s: %v", bounty.ErrDiscriminatorMismatch, kind, address, err)
}

func mapVault(row model.Vault) (ports.VaultRecord, error) {
	if row.Discriminator != bounty.DiscriminatorVault {
		return ports.VaultRecord{}, fmt.Errorf("%w: %s is a %s, not a vault", bounty.ErrDiscriminatorMismatch, row.Address, row.Discriminator)
	}

	address, err := bounty.ParseAddress(row.Address)
	if err != nil {
		return ports.VaultRecord{}, malformed("vault", row.Address, err)
	}
	custody, err := bounty.ParseAddress(row.CustodyAccount)
	if err != nil {
		return ports.VaultRecord{}, malformed("vault", row.Address, err)
	}

	return ports.VaultRecord{
		Address:        address,
		Team:           row.Team,
		Governance:     row.Governance,
		CustodyAccount: custody,
		TokenID:        row.TokenID,
		Schedule: bounty.NewRewardSchedule(
			uint64(row.RewardCritical),
			uint64(row.RewardHigh),
			uint64(row.RewardMedium),
			uint64(row.RewardLow),
		),
		TotalFunded:     uint64(row.TotalFunded),
		TotalPaidOut:    uint64(row.TotalPaidOut),
		TotalReports:    uint64(row.TotalReports),
		ApprovedReports: uint64(row.ApprovedReports),
		Active:          row.Active,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func vaultRow(vault ports.VaultRecord) model.Vault {
	return model.Vault{
		Address:         vault.Address.String(),
		Team:            vault.Team,
		Governance:      vault.Governance,
		CustodyAccount:  vault.CustodyAccount.String(),
		TokenID:         vault.TokenID,
		RewardCritical:  model.Amount(vault.Schedule[bounty.SeverityCritical]),
		RewardHigh:      model.Amount(vault.Schedule[bounty.SeverityHigh]),
		RewardMedium:    model.Amount(vault.Schedule[bounty.SeverityMedium]),
		RewardLow:       model.Amount(vault.Schedule[bounty.SeverityLow]),
		TotalFunded:     model.Amount(vault.TotalFunded),
		TotalPaidOut:    model.Amount(vault.TotalPaidOut),
		TotalReports:    model.Amount(vault.TotalReports),
		ApprovedReports: model.Amount(vault.ApprovedReports),
		Active:          vault.Active,
		CreatedAt:       vault.CreatedAt,
		UpdatedAt:       vault.UpdatedAt,
	}
}

func mapReport(row model.Report) (ports.ReportRecord, error) {
	if row.Discriminator != bounty.DiscriminatorReport {
		return ports.ReportRecord{}, fmt.Errorf("%w: %s is a %s, not a report", bounty.ErrDiscriminatorMismatch, row.Address, row.Discriminator)
	}

	address, err := bounty.ParseAddress(row.Address)
	if err != nil {
		return ports.ReportRecord{}, malformed("report", row.Address, err)
	}
	vault, err := bounty.ParseAddress(row.VaultAddress)
	if err != nil {
		return ports.ReportRecord{}, malformed("report", row.Address, err)
	}
	severity, err := bounty.ParseSeverity(row.Severity)
	if err != nil {
		return ports.ReportRecord{}, malformed("report", row.Address, err)
	}
	status, err := bounty.ParseReportStatus(row.Status)
	if err != nil {
		return ports.ReportRecord{}, malformed("report", row.Address, err)
	}
	digest, err := bounty.ParseContentDigest(row.ContentDigest)
	if err != nil {
		return ports.ReportRecord{}, malformed("report", row.Address, err)
	}

	return ports.ReportRecord{
		Address:       address,
		Vault:         vault,
		Researcher:    row.Researcher,
		ReportIndex:   uint64(row.ReportIndex),
		Severity:      severity,
		Status:        status,
		ContentDigest: digest,
		PayoutAmount:  uint64(row.PayoutAmount),
		Approver:      row.Approver,
		Reason:        row.Reason,
		SubmittedAt:   row.SubmittedAt,
		ApprovedAt:    row.ApprovedAt,
		RejectedAt:    row.RejectedAt,
		PaidAt:        row.PaidAt,
	}, nil
}

func reportRow(report ports.ReportRecord) model.Report {
	return model.Report{
		Address:       report.Address.String(),
		VaultAddress:  report.Vault.String(),
		ReportIndex:   model.Amount(report.ReportIndex),
		Researcher:    report.Researcher,
		Severity:      report.Severity.String(),
		Status:        string(report.Status),
		ContentDigest: report.ContentDigest.String(),
		PayoutAmount:  model.Amount(report.PayoutAmount),
		Approver:      report.Approver,
		Reason:        report.Reason,
		SubmittedAt:   report.SubmittedAt,
		ApprovedAt:    report.ApprovedAt,
		RejectedAt:    report.RejectedAt,
		PaidAt:        report.PaidAt,
	}
}

func mapCredential(row model.Credential) (ports.CredentialRecord, error) {
	if row.Discriminator != bounty.DiscriminatorCredential {
		return ports.CredentialRecord{}, fmt.Errorf("%w: %s is a %s, not a credential", bounty.ErrDiscriminatorMismatch, row.Address, row.Discriminator)
	}

	address, err := bounty.ParseAddress(row.Address)
	if err != nil {
		return ports.CredentialRecord{}, malformed("credential", row.Address, err)
	}
	vault, err := bounty.ParseAddress(row.VaultAddress)
	if err != nil {
		return ports.CredentialRecord{}, malformed("credential", row.Address, err)
	}
	report, err := bounty.ParseAddress(row.ReportAddress)
	if err != nil {
		return ports.CredentialRecord{}, malformed("credential", row.Address, err)
	}
	severity, err := bounty.ParseSeverity(row.Severity)
	if err != nil {
		return ports.CredentialRecord{}, malformed("credential", row.Address, err)
	}

	return ports.CredentialRecord{
		Address:      address,
		Researcher:   row.Researcher,
		Vault:        vault,
		Report:       report,
		Severity:     severity,
		ProjectLabel: row.ProjectLabel,
		MintedAt:     row.MintedAt,
	}, nil
}

func mapLedgerEvent(row model.LedgerEvent) (ports.LedgerEvent, error) {
	vault, err := bounty.ParseAddress(row.VaultAddress)
	if err != nil {
		return ports.LedgerEvent{}, fmt.Errorf("parse ledger event %d vault: %w", row.EventID, err)
	}

	event := ports.LedgerEvent{
		EventID:   row.EventID,
		EventUID:  row.EventUID,
		Kind:      row.Kind,
		Vault:     vault,
		Actor:     row.Actor,
		Amount:    uint64(row.Amount),
		Detail:    row.Detail,
		CreatedAt: row.CreatedAt,
	}
	if row.ReportAddress != nil {
		report, err := bounty.ParseAddress(*row.ReportAddress)
		if err != nil {
			return ports.LedgerEvent{}, fmt.Errorf("parse ledger event %d report: %w", row.EventID, err)
		}
		event.Report = &report
	}
	return event, nil
}
