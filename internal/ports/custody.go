package ports

import (
	"context"

	"bountyvault/internal/domain/bounty"
)

type HolderKind string

const (
	HolderSigner  HolderKind = "signer"
	HolderDerived HolderKind = "derived"
)

type CustodyAccount struct {
	Address    bounty.Address
	Holder     string
	HolderKind HolderKind
	TokenID    string
	Balance    uint64
	CreatedAt  string
	UpdatedAt  string
}

type CustodyTransfer struct {
	TransferID string
	From       bounty.Address
	To         bounty.Address
	Authority  string
	Amount     uint64
	CreatedAt  string
}

// Authority proves the right to move funds out of a custody account: either
// an authenticated signer, or the seeds of a vault whose derived authority
// holds the account. Custody re-derives the holder from the seeds.
type Authority struct {
	Signer     string
	VaultSeeds *VaultSeeds
}

// VaultSeeds names the vault whose derived authority signs a transfer.
// Fields are unexported so seeds exist only through NewVaultSeeds; custody
// refuses the zero value.
type VaultSeeds struct {
	vault  bounty.Address
	sealed bool
}

// NewVaultSeeds seals the seeds of vault for a payout transfer.
func NewVaultSeeds(vault bounty.Address) *VaultSeeds {
	return &VaultSeeds{vault: vault, sealed: !vault.IsZero()}
}

func (s *VaultSeeds) Vault() bounty.Address { return s.vault }

// Sealed reports whether s came from NewVaultSeeds.
func (s *VaultSeeds) Sealed() bool { return s != nil && s.sealed }

func SignerAuthority(signer string) Authority {
	return Authority{Signer: signer}
}

type OpenCustodyAccountInput struct {
	Holder     string
	HolderKind HolderKind
	TokenID    string
}

type TransferInput struct {
	From      bounty.Address
	To        bounty.Address
	Authority Authority
	Amount    uint64
}

// Custody moves value between custody accounts. Inside a unit of work it
// joins the caller's transaction.
type Custody interface {
	OpenAccount(ctx context.Context, input OpenCustodyAccountInput) (CustodyAccount, error)
	GetAccount(ctx context.Context, address bounty.Address) (CustodyAccount, error)
	Mint(ctx context.Context, address bounty.Address, amount uint64) (CustodyAccount, error)
	Transfer(ctx context.Context, input TransferInput) (CustodyTransfer, error)
	ListTransfers(ctx context.Context, account bounty.Address, limit int) ([]CustodyTransfer, error)
	// AuthorityAddress is the holder a vault's custody account must have.
	AuthorityAddress(vault bounty.Address) bounty.Address
}
