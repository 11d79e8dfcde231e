package wallet

import (
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const signatureLength = 65

// PersonalMessageHash returns the EIP-191 hash that personal_sign produces a signature over.
func PersonalMessageHash(message string) []byte {
	prefix := "\x19Ethereum Signed Message:\n" + strconv.Itoa(len(message))
	return keccak256([]byte(prefix), []byte(message))
}

// RecoverSigner returns the checksummed address that produced a personal_sign signature
// over message. Both the 27/28 and 0/1 recovery id conventions are accepted.
func RecoverSigner(message, signatureHex string) (string, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != signatureLength {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, signatureLength, len(sig))
	}

	// SigToPub mutates nothing but wants V in {0, 1}
	normalized := make([]byte, signatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	if normalized[64] > 1 {
		return "", fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig[64])
	}

	pub, err := crypto.SigToPub(PersonalMessageHash(message), normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// VerifySignature checks that address signed message.
func VerifySignature(address, message, signatureHex string) error {
	signer, err := RecoverSigner(message, signatureHex)
	if err != nil {
		return err
	}
	if !AddressesEqual(signer, address) {
		return ErrSignerMismatch
	}
	return nil
}
