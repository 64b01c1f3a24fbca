package bounty

import (
	"context"
	"fmt"
	"log/slog"

	"bountyvault/internal/bootstrap/logging"
	"bountyvault/internal/errs"
	"bountyvault/internal/ports"
)

// AuditSolvency checks every vault's custody balance against
// total_funded - total_paid_out. It reads only and reports per vault; one
// unreadable custody account does not stop the audit.
func (s *Service) AuditSolvency(ctx context.Context) ([]VaultSolvency, error) {
	if err := s.checkReady(ctx); err != nil {
		return nil, err
	}
	if err := s.checkCustody(ctx); err != nil {
		return nil, err
	}
	logCtx := logging.WithComponent(ctx, "usecase.bounty.audit")

	vaults, err := s.repo.ListVaults(ctx, ports.VaultFilter{})
	if err != nil {
		return nil, err
	}

	results := make([]VaultSolvency, 0, len(vaults))
	unhealthy := 0
	for _, vault := range vaults {
		result := VaultSolvency{
			Vault:        vault.Address,
			Team:         vault.Team,
			TotalFunded:  vault.TotalFunded,
			TotalPaidOut: vault.TotalPaidOut,
			Healthy:      true,
		}

		if vault.TotalPaidOut > vault.TotalFunded {
			result.Healthy = false
			result.Problem = fmt.Sprintf("paid out %d exceeds funded %d", vault.TotalPaidOut, vault.TotalFunded)
		} else {
			result.Outstanding = vault.TotalFunded - vault.TotalPaidOut
		}

		account, err := s.custody.GetAccount(ctx, vault.CustodyAccount)
		if err != nil {
			result.Healthy = false
			result.Problem = "custody account unreadable: " + err.Error()
		} else {
			result.CustodyBalance = account.Balance
			if result.Healthy && account.Balance < result.Outstanding {
				result.Healthy = false
				result.Problem = fmt.Sprintf("custody holds %d, ledger owes %d", account.Balance, result.Outstanding)
			}
		}

		if !result.Healthy {
			unhealthy++
			logging.Warn(logCtx, "vault solvency check failed",
				slog.String("vault", vault.Address.String()),
				slog.String("team", vault.Team),
				slog.String("problem", result.Problem),
			)
		}
		results = append(results, result)
	}

	logging.Info(logCtx, "solvency audit completed", slog.Int("vaults", len(results)), slog.Int("unhealthy", unhealthy))
	return results, nil
}

// AuditError summarizes a failed audit for callers that need an error.
func AuditError(results []VaultSolvency) error {
	var failed []string
	for _, result := range results {
		if !result.Healthy {
			failed = append(failed, result.Vault.String()+": "+result.Problem)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return errs.Wrapf(fmt.Errorf("%d vault(s) unhealthy: %v", len(failed), failed), "solvency audit")
}
