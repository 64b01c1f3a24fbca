package bounty

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bountyvault/internal/bootstrap/logging"
	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/errs"
	"bountyvault/internal/ports"
)

// committed collects what to announce once a unit of work commits.
type committed struct {
	events []ports.LedgerEvent
	cache  map[string]string
}

func (c *committed) setCache(key string, value string) {
	if c.cache == nil {
		c.cache = make(map[string]string)
	}
	c.cache[key] = value
}

func appendEventTx(ctx context.Context, repo ports.LedgerRepository, out *committed, input ports.LedgerEventCreate) error {
	event, err := repo.AppendLedgerEvent(ctx, input)
	if err != nil {
		return errs.Wrapf(err, "append %s event", input.Kind)
	}
	out.events = append(out.events, event)
	return nil
}

// loadReportForVaultTx reads a report and checks it belongs to vault.
func loadReportForVaultTx(ctx context.Context, repo ports.LedgerRepository, vault domainbounty.Address, report domainbounty.Address) (ports.ReportRecord, error) {
	record, err := repo.GetReport(ctx, report)
	if err != nil {
		return ports.ReportRecord{}, err
	}
	if record.Vault != vault {
		return ports.ReportRecord{}, fmt.Errorf("%w: report %s belongs to %s", domainbounty.ErrVaultMismatch, report, record.Vault)
	}
	return record, nil
}

// afterCommit publishes events and refreshes the status cache. Neither is
// part of the ledger; failures are logged and dropped.
func (s *Service) afterCommit(ctx context.Context, out committed) {
	logCtx := logging.WithComponent(ctx, "usecase.bounty")

	for key, value := range out.cache {
		if s.cache == nil {
			break
		}
		if err := s.cache.Set(ctx, key, value, 0); err != nil {
			logging.Warn(logCtx, "cache update failed", slog.String("key", key), slog.Any("err", errs.Loggable(err)))
		}
	}

	if s.publisher == nil {
		return
	}
	for _, event := range out.events {
		if err := s.publisher.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
			logging.Warn(logCtx, "ledger event publish failed",
				slog.Uint64("event_id", event.EventID),
				slog.String("kind", event.Kind),
				slog.Any("err", errs.Loggable(err)),
			)
		}
	}
}
