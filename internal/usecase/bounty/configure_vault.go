package bounty

import (
	"context"
	"strconv"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
)

// ToggleActive pauses or resumes submissions. In-flight approvals and
// payouts are unaffected.
func (s *Service) ToggleActive(ctx context.Context, input ToggleActiveInput) (ports.VaultRecord, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.VaultRecord{}, err
	}
	caller, err := domainbounty.NormalizeIdentity("caller", input.Caller)
	if err != nil {
		return ports.VaultRecord{}, err
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
		if err := domainbounty.AuthorizeTeam(caller, vault.Team); err != nil {
			return err
		}

		vault.Active = !vault.Active
		vault.UpdatedAt = now
		if err := s.repo.SaveVault(txCtx, vault); err != nil {
			return err
		}

		return appendEventTx(txCtx, s.repo, &out, ports.LedgerEventCreate{
			Kind:      EventVaultToggled,
			Vault:     vault.Address,
			Actor:     caller,
			Detail:    "active=" + strconv.FormatBool(vault.Active),
			CreatedAt: now,
		})
	}); err != nil {
		return ports.VaultRecord{}, err
	}

	out.setCache(cacheVaultActiveKey(vault.Address), strconv.FormatBool(vault.Active))
	s.afterCommit(ctx, out)
	return vault, nil
}

// UpdateRewardSchedule replaces all four tiers at once. Submitted reports
// keep the payout they were snapshotted with.
func (s *Service) UpdateRewardSchedule(ctx context.Context, input UpdateScheduleInput) (ports.VaultRecord, error) {
	if err := s.checkReady(ctx); err != nil {
		return ports.VaultRecord{}, err
	}
	caller, err := domainbounty.NormalizeIdentity("caller", input.Caller)
	if err != nil {
		return ports.VaultRecord{}, err
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
		if err := domainbounty.AuthorizeTeam(caller, vault.Team); err != nil {
			return err
		}

		previous := vault.Schedule
		vault.Schedule = input.Schedule
		vault.UpdatedAt = now
		if err := s.repo.SaveVault(txCtx, vault); err != nil {
			return err
		}

		return appendEventTx(txCtx, s.repo, &out, ports.LedgerEventCreate{
			Kind:      EventScheduleUpdated,
			Vault:     vault.Address,
			Actor:     caller,
			Detail:    previous.String() + " -> " + input.Schedule.String(),
			CreatedAt: now,
		})
	}); err != nil {
		return ports.VaultRecord{}, err
	}

	s.afterCommit(ctx, out)
	return vault, nil
}
