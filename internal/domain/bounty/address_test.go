package bounty

import (
	"errors"
	"testing"
)

func TestDeriveAddressIsDeterministicAndSeedBounded(t *testing.T) {
	a := DeriveAddress("x", []byte("ab"), []byte("c"))
	b := DeriveAddress("x", []byte("ab"), []byte("c"))
	c := DeriveAddress("x", []byte("a"), []byte("bc"))
	if a != b {
		t.Fatalf("same seeds produced different addresses")
	}
	if a == c {
		t.Fatalf("seed boundaries collided")
	}
	if DeriveAddress("y", []byte("ab"), []byte("c")) == a {
		t.Fatalf("discriminator not part of address")
	}
}

func TestReportAddressUsesReportIndex(t *testing.T) {
	vault := VaultAddress("team")
	first := ReportAddress(vault, "alice", 0)
	second := ReportAddress(vault, "alice", 1)
	other := ReportAddress(vault, "bob", 0)
	if first == second || first == other {
		t.Fatalf("report slots collided")
	}
	if ReportAddress(vault, "alice", 0) != first {
		t.Fatalf("report address not predictable")
	}
}

func TestVaultAuthorityDependsOnSalt(t *testing.T) {
	vault := VaultAddress("team")
	if VaultAuthorityAddress(vault, []byte("s1")) == VaultAuthorityAddress(vault, []byte("s2")) {
		t.Fatalf("salt ignored")
	}
	if VaultAuthorityAddress(vault, []byte("s1")) == vault {
		t.Fatalf("authority equals vault address")
	}
}

func TestParseAddressRoundTrip(t *testing.T) {
	addr := CredentialAddress("alice", VaultAddress("team"))
	parsed, err := ParseAddress(addr.String())
	if err != nil || parsed != addr {
		t.Fatalf("ParseAddress() = %v, %v", parsed, err)
	}
	if _, err := ParseAddress("zz"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("ParseAddress(bad) error = %v", err)
	}
}

func TestParseContentDigest(t *testing.T) {
	digest := DigestOf([]byte("report body"))
	parsed, err := ParseContentDigest("sha256:" + digest.String())
	if err != nil || parsed != digest {
		t.Fatalf("ParseContentDigest() = %v, %v", parsed, err)
	}
	if _, err := ParseContentDigest("abcd"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("short digest error = %v", err)
	}
}
