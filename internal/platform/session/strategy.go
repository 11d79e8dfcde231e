package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kislikjeka/walletscope/internal/platform/wallet"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

// PrivyAuthenticator logs in with a Privy identity token
type PrivyAuthenticator struct {
	verifier IdentityVerifier
	logger   *logger.Logger
}

// NewPrivyAuthenticator creates the Privy strategy. A nil verifier leaves the method
// registered but every Connect fails with ErrProviderNotConfigured.
func NewPrivyAuthenticator(verifier IdentityVerifier, log *logger.Logger) *PrivyAuthenticator {
	return &PrivyAuthenticator{
		verifier: verifier,
		logger:   log.WithField("strategy", string(MethodPrivy)),
	}
}

func (a *PrivyAuthenticator) Method() Method { return MethodPrivy }

// Configured reports whether an identity verifier is wired in
func (a *PrivyAuthenticator) Configured() bool { return a.verifier != nil }

// Connect verifies the identity token and picks the wallet. When the browser names an
// address it must be one of the linked wallets; otherwise the first linked wallet wins.
func (a *PrivyAuthenticator) Connect(ctx context.Context, creds Credentials) (string, error) {
	if a.verifier == nil {
		return "", ErrProviderNotConfigured
	}
	if strings.TrimSpace(creds.Token) == "" {
		return "", fmt.Errorf("%w: identity token", ErrMissingCredentials)
	}

	linked, err := a.verifier.LinkedWallets(ctx, creds.Token)
	if err != nil {
		return "", err
	}
	if len(linked) == 0 {
		return "", ErrNoLinkedWallet
	}

	if creds.WalletAddress == "" {
		return wallet.ValidateAddress(linked[0])
	}

	requested, err := wallet.ValidateAddress(creds.WalletAddress)
	if err != nil {
		return "", err
	}
	for _, addr := range linked {
		if wallet.AddressesEqual(addr, requested) {
			return requested, nil
		}
	}
	return "", ErrWalletNotLinked
}

// Disconnect is a no-op: the Privy SDK ends its own session in the browser.
func (a *PrivyAuthenticator) Disconnect(ctx context.Context, address string) error {
	a.logger.WithContext(ctx).Debug("disconnect", "address", address)
	return nil
}

// SignatureAuthenticator logs in by verifying a personal_sign signature over a
// previously issued challenge. WalletConnect and Coinbase Wallet both use it.
type SignatureAuthenticator struct {
	method Method
	nonces NonceStore
	logger *logger.Logger
}

// NewSignatureAuthenticator creates a signature strategy for method
func NewSignatureAuthenticator(method Method, nonces NonceStore, log *logger.Logger) *SignatureAuthenticator {
	return &SignatureAuthenticator{
		method: method,
		nonces: nonces,
		logger: log.WithField("strategy", string(method)),
	}
}

func (a *SignatureAuthenticator) Method() Method { return a.method }

// Connect consumes the challenge named by the nonce and checks the signature against
// it. A failed attempt still burns that challenge.
func (a *SignatureAuthenticator) Connect(ctx context.Context, creds Credentials) (string, error) {
	address, err := wallet.ValidateAddress(creds.WalletAddress)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(creds.Signature) == "" {
		return "", fmt.Errorf("%w: signature", ErrMissingCredentials)
	}
	if strings.TrimSpace(creds.Nonce) == "" {
		return "", fmt.Errorf("%w: nonce", ErrMissingCredentials)
	}

	message, err := a.nonces.Take(ctx, ChallengeKey(address, creds.Nonce))
	if err != nil {
		return "", err
	}

	if err := wallet.VerifySignature(address, message, creds.Signature); err != nil {
		if errors.Is(err, wallet.ErrSignerMismatch) {
			a.logger.WithContext(ctx).Warn("signature from another address", "address", address)
		}
		return "", err
	}
	return address, nil
}

// Disconnect is a no-op: the wallet SDK drops its pairing in the browser.
func (a *SignatureAuthenticator) Disconnect(ctx context.Context, address string) error {
	a.logger.WithContext(ctx).Debug("disconnect", "address", address)
	return nil
}
