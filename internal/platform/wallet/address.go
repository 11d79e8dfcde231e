package wallet

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// EVM address regex: 0x followed by exactly 40 hex characters
var evmAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ValidateAddress validates an EVM address and returns its EIP-55 checksummed form.
// Lowercase and uppercase inputs are accepted; mixed-case inputs must carry a valid checksum.
func ValidateAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", ErrMissingAddress
	}

	if !evmAddressRegex.MatchString(address) {
		return "", ErrInvalidAddress
	}

	checksummed := ToChecksumAddress(address)
	if isChecksummed(address) && address != checksummed {
		return "", ErrInvalidChecksum
	}

	return checksummed, nil
}

// ToChecksumAddress converts an EVM address to EIP-55 checksummed format.
// https://eips.ethereum.org/EIPS/eip-55
func ToChecksumAddress(address string) string {
	addr := strings.ToLower(strings.TrimPrefix(address, "0x"))
	hash := keccak256([]byte(addr))

	var result strings.Builder
	result.Grow(len(addr) + 2)
	result.WriteString("0x")

	for i, c := range addr {
		if c >= '0' && c <= '9' {
			result.WriteRune(c)
			continue
		}

		nibble := hash[i/2] & 0x0F
		if i%2 == 0 {
			nibble = hash[i/2] >> 4
		}

		if nibble >= 8 {
			result.WriteRune(c - 32)
		} else {
			result.WriteRune(c)
		}
	}

	return result.String()
}

// isChecksummed reports whether the address mixes upper and lower case hex letters
func isChecksummed(address string) bool {
	addr := strings.TrimPrefix(address, "0x")
	hasUpper := strings.ContainsAny(addr, "ABCDEF")
	hasLower := strings.ContainsAny(addr, "abcdef")
	return hasUpper && hasLower
}

func keccak256(data ...[]byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	for _, d := range data {
		hash.Write(d)
	}
	return hash.Sum(nil)
}

// LowerAddress returns the lowercase 0x-prefixed form used by indexers.
func LowerAddress(address string) string {
	return "0x" + strings.ToLower(strings.TrimPrefix(strings.TrimSpace(address), "0x"))
}

// AddressesEqual compares two EVM addresses case-insensitively
func AddressesEqual(a, b string) bool {
	return strings.EqualFold(
		strings.TrimPrefix(a, "0x"),
		strings.TrimPrefix(b, "0x"),
	)
}
