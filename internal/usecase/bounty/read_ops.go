package bounty

import (
	"context"
	"log/slog"

	"bountyvault/internal/bootstrap/logging"
	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/errs"
	"bountyvault/internal/ports"
)

func (s *Service) GetVault(ctx context.Context, vault domainbounty.Address) (ports.VaultRecord, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.VaultRecord{}, err
	}
	return s.repo.GetVault(ctx, vault)
}

func (s *Service) ListVaults(ctx context.Context, filter ports.VaultFilter) ([]ports.VaultRecord, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListVaults(ctx, filter)
}

// GetReport returns the report with its ledger history, oldest first.
func (s *Service) GetReport(ctx context.Context, report domainbounty.Address) (ReportDetail, error) {
	if err := s.checkReady(ctx); err != nil {
		return ReportDetail{}, err
	}

	record, err := s.repo.GetReport(ctx, report)
	if err != nil {
		return ReportDetail{}, err
	}
	events, err := s.repo.ListLedgerEvents(ctx, ports.LedgerEventFilter{Report: &record.Address})
	if err != nil {
		return ReportDetail{}, err
	}
	return ReportDetail{Report: record, Events: events}, nil
}

func (s *Service) ListReports(ctx context.Context, filter ports.ReportFilter) ([]ports.ReportRecord, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListReports(ctx, filter)
}

// ReportStatus answers from the status cache when it can. It is for display
// only; operations always re-read the ledger.
func (s *Service) ReportStatus(ctx context.Context, report domainbounty.Address) (domainbounty.ReportStatus, error) {
	if err := s.checkReady(ctx); err != nil {
		return "", err
	}

	if s.cache != nil {
		value, found, err := s.cache.Get(ctx, cacheReportStatusKey(report))
		if err != nil {
			logging.Warn(logging.WithComponent(ctx, "usecase.bounty"), "cache read failed", slog.Any("err", errs.Loggable(err)))
		} else if found {
			if status, err := domainbounty.ParseReportStatus(value); err == nil {
				return status, nil
			}
		}
	}

	record, err := s.repo.GetReport(ctx, report)
	if err != nil {
		return "", err
	}
	return record.Status, nil
}

func (s *Service) GetCredential(ctx context.Context, credential domainbounty.Address) (ports.CredentialRecord, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.CredentialRecord{}, err
	}
	return s.repo.GetCredential(ctx, credential)
}

func (s *Service) ListCredentials(ctx context.Context, researcher string) ([]ports.CredentialRecord, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListCredentials(ctx, researcher)
}

func (s *Service) ListEvents(ctx context.Context, filter ports.LedgerEventFilter) ([]ports.LedgerEvent, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListLedgerEvents(ctx, filter)
}
