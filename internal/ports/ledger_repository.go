package ports

import (
	"context"

	"bountyvault/internal/domain/bounty"
)

type VaultRecord struct {
	Address         bounty.Address
	Team            string
	Governance      string
	CustodyAccount  bounty.Address
	TokenID         string
	Schedule        bounty.RewardSchedule
	TotalFunded     uint64
	TotalPaidOut    uint64
	TotalReports    uint64
	ApprovedReports uint64
	Active          bool
	CreatedAt       string
	UpdatedAt       string
}

type ReportRecord struct {
	Address       bounty.Address
	Vault         bounty.Address
	Researcher    string
	ReportIndex   uint64
	Severity      bounty.Severity
	Status        bounty.ReportStatus
	ContentDigest bounty.ContentDigest
	PayoutAmount  uint64
	Approver      *string
	Reason        *string
	SubmittedAt   string
	ApprovedAt    *string
	RejectedAt    *string
	PaidAt        *string
}

type CredentialRecord struct {
	Address      bounty.Address
	Researcher   string
	Vault        bounty.Address
	Report       bounty.Address
	Severity     bounty.Severity
	ProjectLabel string
	MintedAt     string
}

type LedgerEvent struct {
	EventID   uint64
	EventUID  string
	Kind      string
	Vault     bounty.Address
	Report    *bounty.Address
	Actor     string
	Amount    uint64
	Detail    string
	CreatedAt string
}

type LedgerEventCreate struct {
	Kind      string
	Vault     bounty.Address
	Report    *bounty.Address
	Actor     string
	Amount    uint64
	Detail    string
	CreatedAt string
}

type VaultFilter struct {
	Team       string
	ActiveOnly bool
}

type ReportFilter struct {
	Vault      *bounty.Address
	Researcher string
	Status     bounty.ReportStatus
}

type LedgerEventFilter struct {
	Vault   *bounty.Address
	Report  *bounty.Address
	AfterID uint64
	Limit   int
}

type LedgerReadRepository interface {
	GetVault(ctx context.Context, address bounty.Address) (VaultRecord, error)
	ListVaults(ctx context.Context, filter VaultFilter) ([]VaultRecord, error)
	GetReport(ctx context.Context, address bounty.Address) (ReportRecord, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]ReportRecord, error)
	GetCredential(ctx context.Context, address bounty.Address) (CredentialRecord, error)
	ListCredentials(ctx context.Context, researcher string) ([]CredentialRecord, error)
	ListLedgerEvents(ctx context.Context, filter LedgerEventFilter) ([]LedgerEvent, error)
}

// LedgerRepository is the account store. Create* claim the record's address
// and fail with bounty.ErrAddressInUse when any record already holds it.
// Get* fail with bounty.ErrRecordNotFound or bounty.ErrDiscriminatorMismatch.
// Inside a unit of work, reads lock the row until commit.
type LedgerRepository interface {
	LedgerReadRepository
	CreateVault(ctx context.Context, vault VaultRecord) error
	SaveVault(ctx context.Context, vault VaultRecord) error
	CreateReport(ctx context.Context, report ReportRecord) error
	SaveReport(ctx context.Context, report ReportRecord) error
	CreateCredential(ctx context.Context, credential CredentialRecord) error
	AppendLedgerEvent(ctx context.Context, input LedgerEventCreate) (LedgerEvent, error)
}
