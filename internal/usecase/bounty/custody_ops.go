package bounty

import (
	"context"
	"errors"
	"fmt"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/errs"
	"bountyvault/internal/ports"
)

func (s *Service) checkCustody(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.custody == nil {
		return errCustodyRequired
	}
	return nil
}

// OpenCustodyAccount opens a signer-held account for the caller.
func (s *Service) OpenCustodyAccount(ctx context.Context, caller string, tokenID string) (ports.CustodyAccount, error) {
	if err := s.checkCustody(ctx); err != nil {
		return ports.CustodyAccount{}, err
	}
	holder, err := domainbounty.NormalizeIdentity("caller", caller)
	if err != nil {
		return ports.CustodyAccount{}, err
	}
	return s.custody.OpenAccount(ctx, ports.OpenCustodyAccountInput{
		Holder:     holder,
		HolderKind: ports.HolderSigner,
		TokenID:    tokenID,
	})
}

// OpenVaultCustodyAccount opens the account a team's vault will pay from,
// held by the vault's derived authority. It can be opened before the vault
// exists so its address can be passed to CreateVault.
func (s *Service) OpenVaultCustodyAccount(ctx context.Context, team string, tokenID string) (ports.CustodyAccount, error) {
	if err := s.checkCustody(ctx); err != nil {
		return ports.CustodyAccount{}, err
	}
	team, err := domainbounty.NormalizeIdentity("team", team)
	if err != nil {
		return ports.CustodyAccount{}, err
	}
	authority := s.custody.AuthorityAddress(domainbounty.VaultAddress(team))
	return s.custody.OpenAccount(ctx, ports.OpenCustodyAccountInput{
		Holder:     authority.String(),
		HolderKind: ports.HolderDerived,
		TokenID:    tokenID,
	})
}

// MintCustody issues funds into a signer account. It stands in for an
// external token issuer on local ledgers and is refused unless caller is the
// configured issuer.
func (s *Service) MintCustody(ctx context.Context, caller string, account domainbounty.Address, amount uint64) (ports.CustodyAccount, error) {
	if err := s.checkCustody(ctx); err != nil {
		return ports.CustodyAccount{}, err
	}
	caller, err := domainbounty.NormalizeIdentity("caller", caller)
	if err != nil {
		return ports.CustodyAccount{}, err
	}
	if s.opts.MintIssuer == "" {
		return ports.CustodyAccount{}, fmt.Errorf("%w: minting is disabled", domainbounty.ErrCustodyUnauthorized)
	}
	if caller != s.opts.MintIssuer {
		return ports.CustodyAccount{}, fmt.Errorf("%w: %s is not the mint issuer", domainbounty.ErrCustodyUnauthorized, caller)
	}
	return s.custody.Mint(ctx, account, amount)
}

func (s *Service) GetCustodyAccount(ctx context.Context, account domainbounty.Address) (ports.CustodyAccount, error) {
	if err := s.checkCustody(ctx); err != nil {
		return ports.CustodyAccount{}, err
	}
	return s.custody.GetAccount(ctx, account)
}

func (s *Service) ListCustodyTransfers(ctx context.Context, account domainbounty.Address, limit int) ([]ports.CustodyTransfer, error) {
	if err := s.checkCustody(ctx); err != nil {
		return nil, err
	}
	return s.custody.ListTransfers(ctx, account, limit)
}
