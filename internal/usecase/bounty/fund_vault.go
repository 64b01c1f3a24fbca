package bounty

import (
	"context"
	"fmt"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
)

// FundVault moves amount from the caller's custody account into the vault
// and raises total_funded. Anyone may fund any vault, active or not.
func (s *Service) FundVault(ctx context.Context, input FundVaultInput) (ports.VaultRecord, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.VaultRecord{}, err
	}
	if s.custody == nil {
		return ports.VaultRecord{}, errCustodyRequired
	}

	caller, err := domainbounty.NormalizeIdentity("caller", input.Caller)
	if err != nil {
		return ports.VaultRecord{}, err
	}
	if input.Amount == 0 {
		return ports.VaultRecord{}, fmt.Errorf("%w: amount must be positive", domainbounty.ErrInvalidArgument)
	}

	now := s.timestamp()
	var (
		vault ports.VaultRecord
		out   committed
	)
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		vault, err = s.repo.GetVault(txCtx, input.Vault)
		if err != nil {
			return err
		}

		funded, err := domainbounty.CheckedAdd(vault.TotalFunded, input.Amount)
		if err != nil {
			return err
		}

		transfer, err := s.custody.Transfer(txCtx, ports.TransferInput{
			From:      input.FunderAccount,
			To:        vault.CustodyAccount,
			Authority: ports.SignerAuthority(caller),
			Amount:    input.Amount,
		})
		if err != nil {
			return err
		}

		vault.TotalFunded = funded
		vault.UpdatedAt = now
		if err := s.repo.SaveVault(txCtx, vault); err != nil {
			return err
		}

		return appendEventTx(txCtx, s.repo, &out, ports.LedgerEventCreate{
			Kind:      EventVaultFunded,
			Vault:     vault.Address,
			Actor:     caller,
			Amount:    input.Amount,
			Detail:    "transfer=" + transfer.TransferID,
			CreatedAt: now,
		})
	}); err != nil {
		return ports.VaultRecord{}, err
	}

	s.afterCommit(ctx, out)
	return vault, nil
}
