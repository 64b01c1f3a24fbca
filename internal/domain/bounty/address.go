package bounty

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// Record discriminators. Every stored record carries one and reads of the
// wrong kind fail closed.
const (
	DiscriminatorVault      = "vault"
	DiscriminatorReport     = "report"
	DiscriminatorCredential = "reputation"
	DiscriminatorAuthority  = "vault-authority"
	DiscriminatorCustody    = "custody"
)

// Address is a deterministic 32-byte record address.
type Address [32]byte

// DeriveAddress hashes the discriminator and seeds, each length-prefixed so
// that ("ab","c") and ("a","bc") never collide.
func DeriveAddress(discriminator string, seeds ...[]byte) Address {
	h := sha256.New()
	writeSeed(h, []byte(discriminator))
	for _, seed := range seeds {
		writeSeed(h, seed)
	}

	var out Address
	copy(out[:], h.Sum(nil))
	return out
}

func writeSeed(w interface{ Write([]byte) (int, error) }, seed []byte) {
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(seed)))
	_, _ = w.Write(size[:])
	_, _ = w.Write(seed)
}

func VaultAddress(team string) Address {
	return DeriveAddress(DiscriminatorVault, []byte(team))
}

// ReportAddress places a researcher's submission at the slot keyed by the
// vault's report count at submission time.
func ReportAddress(vault Address, researcher string, reportIndex uint64) Address {
	var index [8]byte
	binary.LittleEndian.PutUint64(index[:], reportIndex)
	return DeriveAddress(DiscriminatorReport, vault[:], []byte(researcher), index[:])
}

func CredentialAddress(researcher string, report Address) Address {
	return DeriveAddress(DiscriminatorCredential, []byte(researcher), report[:])
}

// VaultAuthorityAddress is the non-human holder of a vault's custody account.
// It has no secret; only the payout path presents it to custody.
func VaultAuthorityAddress(vault Address, salt []byte) Address {
	return DeriveAddress(DiscriminatorAuthority, vault[:], salt)
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func ParseAddress(raw string) (Address, error) {
	var out Address
	trimmed := strings.TrimSpace(raw)
	decoded, err := hex.DecodeString(trimmed)
	if err != nil || len(decoded) != len(out) {
		return Address{}, fmt.Errorf("%w: address %q", ErrInvalidArgument, raw)
	}
	copy(out[:], decoded)
	return out, nil
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
