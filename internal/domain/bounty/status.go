package bounty

import (
	"fmt"
	"strings"
)

type ReportStatus string

const (
	StatusPending  ReportStatus = "pending"
	StatusApproved ReportStatus = "approved"
	StatusRejected ReportStatus = "rejected"
	StatusPaid     ReportStatus = "paid"
)

// allowedTransitions is the whole report lifecycle. Rejected and Paid are terminal.
var allowedTransitions = map[ReportStatus][]ReportStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusPaid},
	StatusRejected: {},
	StatusPaid:     {},
}

func ParseReportStatus(raw string) (ReportStatus, error) {
	status := ReportStatus(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := allowedTransitions[status]; !ok {
		return "", fmt.Errorf("%w: unknown report status %q", ErrInvalidArgument, raw)
	}
	return status, nil
}

func CanTransition(from, to ReportStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s ReportStatus) Terminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}
