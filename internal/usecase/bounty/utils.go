package bounty

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/errs"
)

func (s *Service) checkReady(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errRepoRequired
	}
	if s.uow == nil {
		return errUoWRequired
	}
	return nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func optionalText(field string, raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if len(text) > maxTextLen {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", domainbounty.ErrInvalidArgument, field, maxTextLen)
	}
	return text, nil
}

func requiredText(field string, raw string) (string, error) {
	text, err := optionalText(field, raw)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("%w: %s is required", domainbounty.ErrInvalidArgument, field)
	}
	return text, nil
}

func formatAmount(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}

func cacheReportStatusKey(report domainbounty.Address) string {
	return "report_status:" + report.String()
}

func cacheVaultActiveKey(vault domainbounty.Address) string {
	return "vault_active:" + vault.String()
}
