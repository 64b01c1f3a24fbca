package bounty

import (
	"errors"
	"time"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
)

// Ledger event kinds, also the NATS subject suffixes.
const (
	EventVaultCreated     = "vault_created"
	EventVaultFunded      = "vault_funded"
	EventVaultToggled     = "vault_toggled"
	EventScheduleUpdated  = "schedule_updated"
	EventReportSubmitted  = "report_submitted"
	EventReportApproved   = "report_approved"
	EventReportRejected   = "report_rejected"
	EventPayoutExecuted   = "payout_executed"
	EventCredentialMinted = "credential_minted"
)

// maxTextLen bounds free-text reasons and project labels.
const maxTextLen = 256

var (
	errRepoRequired    = errors.New("ledger repository is required")
	errUoWRequired     = errors.New("ledger unit of work is required")
	errCustodyRequired = errors.New("custody is required")
)

type Options struct {
	// EnforceSolvency refuses payouts that would take total_paid_out past
	// total_funded. total_paid_out is maintained either way.
	EnforceSolvency bool
	// MintIssuer is the only caller allowed to mint custody funds. Empty
	// disables minting.
	MintIssuer string
}

func DefaultOptions() Options {
	return Options{EnforceSolvency: true}
}

type Service struct {
	repo      ports.LedgerRepository
	uow       ports.UnitOfWork
	custody   ports.Custody
	cache     ports.Cache
	publisher ports.EventPublisher
	opts      Options
	now       func() time.Time
}

// NewService wires ledger usecases. cache and publisher are optional.
func NewService(
	repo ports.LedgerRepository,
	uow ports.UnitOfWork,
	custody ports.Custody,
	cache ports.Cache,
	publisher ports.EventPublisher,
	opts Options,
) *Service {
	return &Service{
		repo:      repo,
		uow:       uow,
		custody:   custody,
		cache:     cache,
		publisher: publisher,
		opts:      opts,
		now:       time.Now,
	}
}

type CreateVaultInput struct {
	Caller         string
	Team           string
	Governance     string
	Schedule       domainbounty.RewardSchedule
	InitialFunding uint64
	CustodyAccount domainbounty.Address
	TokenID        string
	// FunderAccount, when set, moves InitialFunding from the caller's
	// custody account in the same unit of work. Otherwise the figure is
	// recorded as reported.
	FunderAccount *domainbounty.Address
}

type FundVaultInput struct {
	Caller        string
	Vault         domainbounty.Address
	Amount        uint64
	FunderAccount domainbounty.Address
}

type ToggleActiveInput struct {
	Caller string
	Vault  domainbounty.Address
}

type UpdateScheduleInput struct {
	Caller   string
	Vault    domainbounty.Address
	Schedule domainbounty.RewardSchedule
}

type SubmitReportInput struct {
	Caller   string
	Vault    domainbounty.Address
	Severity domainbounty.Severity
	Digest   domainbounty.ContentDigest
}

type DecideReportInput struct {
	Caller string
	Vault  domainbounty.Address
	Report domainbounty.Address
	Reason string
}

type ExecutePayoutInput struct {
	Caller            string
	Vault             domainbounty.Address
	Report            domainbounty.Address
	ResearcherAccount domainbounty.Address
}

type MintCredentialInput struct {
	Caller       string
	Report       domainbounty.Address
	ProjectLabel string
}

type PayoutResult struct {
	Report   ports.ReportRecord
	Transfer ports.CustodyTransfer
}

// VaultSolvency compares what custody holds for a vault with what the ledger
// says it should hold.
type VaultSolvency struct {
	Vault          domainbounty.Address
	Team           string
	TotalFunded    uint64
	TotalPaidOut   uint64
	Outstanding    uint64
	CustodyBalance uint64
	Healthy        bool
	Problem        string
}

type ReportDetail struct {
	Report ports.ReportRecord
	Events []ports.LedgerEvent
}
