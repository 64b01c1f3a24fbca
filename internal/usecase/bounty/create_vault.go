package bounty

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
)

// CreateVault opens a bounty program for the calling team. The custody
// account must already exist, be held by the vault's derived authority and
// carry the vault's token.
func (s *Service) CreateVault(ctx context.Context, input CreateVaultInput) (ports.VaultRecord, error) {
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
	team, err := domainbounty.NormalizeIdentity("team", input.Team)
	if err != nil {
		return ports.VaultRecord{}, err
	}
	if err := domainbounty.AuthorizeTeam(caller, team); err != nil {
		return ports.VaultRecord{}, err
	}
	governance, err := domainbounty.NormalizeIdentity("governance", input.Governance)
	if err != nil {
		return ports.VaultRecord{}, err
	}
	tokenID := strings.TrimSpace(input.TokenID)

	now := s.timestamp()
	vault := ports.VaultRecord{
		Address:        domainbounty.VaultAddress(team),
		Team:           team,
		Governance:     governance,
		CustodyAccount: input.CustodyAccount,
		TokenID:        tokenID,
		Schedule:       input.Schedule,
		TotalFunded:    input.InitialFunding,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var out committed
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		account, err := s.custody.GetAccount(txCtx, input.CustodyAccount)
		if err != nil {
			return err
		}
		authority := s.custody.AuthorityAddress(vault.Address)
		if account.HolderKind != ports.HolderDerived || account.Holder != authority.String() {
			return fmt.Errorf("%w: custody account %s is not held by the vault authority %s", domainbounty.ErrCustodyUnauthorized, account.Address, authority)
		}
		if account.TokenID != tokenID {
			return fmt.Errorf("%w: custody account holds %q, vault pays %q", domainbounty.ErrTokenMismatch, account.TokenID, tokenID)
		}

		if err := s.repo.CreateVault(txCtx, vault); err != nil {
			return err
		}

		if input.FunderAccount != nil && input.InitialFunding > 0 {
			if _, err := s.custody.Transfer(txCtx, ports.TransferInput{
				From:      *input.FunderAccount,
				To:        vault.CustodyAccount,
				Authority: ports.SignerAuthority(caller),
				Amount:    input.InitialFunding,
			}); err != nil {
				return err
			}
		}

		return appendEventTx(txCtx, s.repo, &out, ports.LedgerEventCreate{
			Kind:      EventVaultCreated,
			Vault:     vault.Address,
			Actor:     caller,
			Amount:    input.InitialFunding,
			Detail:    "governance=" + governance + " schedule=" + vault.Schedule.String(),
			CreatedAt: now,
		})
	}); err != nil {
		return ports.VaultRecord{}, err
	}

	out.setCache(cacheVaultActiveKey(vault.Address), strconv.FormatBool(true))
	s.afterCommit(ctx, out)
	return vault, nil
}
