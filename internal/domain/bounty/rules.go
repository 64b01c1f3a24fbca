package bounty

import (
	"fmt"
	"strings"
)

func NormalizeIdentity(field string, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, field)
	}
	return trimmed, nil
}

func AuthorizeTeam(caller string, team string) error {
	if caller != team {
		return ErrUnauthorizedTeam
	}
	return nil
}

// AuthorizeDecision guards Pending -> {Approved, Rejected}. Role is checked
// before state.
func AuthorizeDecision(caller string, governance string, status ReportStatus, to ReportStatus) error {
	if caller != governance {
		return ErrNotGovernanceAuthority
	}
	if status != StatusPending || !CanTransition(status, to) {
		return fmt.Errorf("%w: report is %s", ErrInvalidReportStatus, status)
	}
	return nil
}

// AuthorizePayout guards Approved -> Paid. A replay on a paid report fails
// here with ErrReportNotApproved.
func AuthorizePayout(caller string, researcher string, status ReportStatus) error {
	if status != StatusApproved {
		return fmt.Errorf("%w: report is %s", ErrReportNotApproved, status)
	}
	if caller != researcher {
		return ErrUnauthorizedResearcher
	}
	return nil
}

func AuthorizeCredential(status ReportStatus) error {
	if status != StatusPaid {
		return fmt.Errorf("%w: report is %s", ErrReportNotPaid, status)
	}
	return nil
}

// SettleAgainstFunding returns the new paid-out total, refusing payouts that
// would take it past the funded total.
func SettleAgainstFunding(totalPaidOut uint64, amount uint64, totalFunded uint64, enforce bool) (uint64, error) {
	next, err := CheckedAdd(totalPaidOut, amount)
	if err != nil {
		return 0, err
	}
	if enforce && next > totalFunded {
		return 0, fmt.Errorf("%w: paid %d + payout %d > funded %d", ErrInsufficientVaultFunds, totalPaidOut, amount, totalFunded)
	}
	return next, nil
}
