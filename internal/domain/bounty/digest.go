package bounty

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ContentDigest references an off-chain report body.
type ContentDigest [32]byte

func DigestOf(body []byte) ContentDigest {
	return sha256.Sum256(body)
}

func ParseContentDigest(raw string) (ContentDigest, error) {
	var out ContentDigest
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "sha256:")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil || len(decoded) != len(out) {
		return ContentDigest{}, fmt.Errorf("%w: content digest must be 32 bytes hex", ErrInvalidArgument)
	}
	copy(out[:], decoded)
	return out, nil
}

func (d ContentDigest) String() string {
	return hex.EncodeToString(d[:])
}

func (d ContentDigest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *ContentDigest) UnmarshalText(text []byte) error {
	parsed, err := ParseContentDigest(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
