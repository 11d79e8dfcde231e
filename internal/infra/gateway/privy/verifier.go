package privy

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

const issuer = "privy.io"

var (
	ErrMissingAppID      = errors.New("privy app id is required")
	ErrInvalidKey        = errors.New("invalid privy verification key")
	ErrInvalidToken      = fmt.Errorf("%w: privy identity token", session.ErrInvalidCredentials)
	ErrMalformedAccounts = fmt.Errorf("%w: malformed linked_accounts claim", session.ErrInvalidCredentials)
)

// LinkedAccount is one entry of the linked_accounts claim
type LinkedAccount struct {
	Type      string `json:"type"`
	Address   string `json:"address,omitempty"`
	ChainType string `json:"chain_type,omitempty"`
}

// IdentityClaims represents the claims of a Privy identity token
type IdentityClaims struct {
	LinkedAccounts json.RawMessage `json:"linked_accounts"`
	jwt.RegisteredClaims
}

// Accounts decodes linked_accounts. Privy serializes the list as a JSON string inside
// the token; a plain array is accepted too.
func (c *IdentityClaims) Accounts() ([]LinkedAccount, error) {
	raw := bytes.TrimSpace(c.LinkedAccounts)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAccounts, err)
		}
		raw = []byte(encoded)
	}

	var accounts []LinkedAccount
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAccounts, err)
	}
	return accounts, nil
}

// Verifier validates Privy identity tokens (ES256) for one app
type Verifier struct {
	appID  string
	key    *ecdsa.PublicKey
	logger *logger.Logger
}

// Compile-time check that Verifier implements session.IdentityVerifier
var _ session.IdentityVerifier = (*Verifier)(nil)

// NewVerifier creates a verifier from the app id and the PEM-encoded verification key
// shown in the Privy dashboard.
func NewVerifier(appID, verificationKey string, log *logger.Logger) (*Verifier, error) {
	if strings.TrimSpace(appID) == "" {
		return nil, ErrMissingAppID
	}

	// Keys pasted into env files often carry literal \n sequences
	pem := strings.ReplaceAll(strings.TrimSpace(verificationKey), `\n`, "\n")
	key, err := jwt.ParseECPublicKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return &Verifier{
		appID:  appID,
		key:    key,
		logger: log.WithField("component", "privy"),
	}, nil
}

// Verify validates signature, issuer, audience and expiry and returns the claims
func (v *Verifier) Verify(tokenString string) (*IdentityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.key, nil
	},
		jwt.WithValidMethods([]string{"ES256"}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(v.appID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// LinkedWallets returns the Ethereum wallet addresses linked to the token's user,
// in the order Privy lists them.
func (v *Verifier) LinkedWallets(ctx context.Context, tokenString string) ([]string, error) {
	claims, err := v.Verify(tokenString)
	if err != nil {
		v.logger.WithContext(ctx).Warn("identity token rejected", "error", err)
		return nil, err
	}

	accounts, err := claims.Accounts()
	if err != nil {
		return nil, err
	}

	wallets := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if a.Type != "wallet" || a.Address == "" {
			continue
		}
		if a.ChainType != "" && a.ChainType != "ethereum" {
			continue
		}
		wallets = append(wallets, a.Address)
	}

	v.logger.WithContext(ctx).Debug("identity token verified", "subject", claims.Subject, "wallets", len(wallets))
	return wallets, nil
}
