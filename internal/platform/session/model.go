package session

import (
	"fmt"
	"strings"
	"time"
)

// Method is the wallet provider used to log in. The set is closed.
type Method string

const (
	MethodPrivy         Method = "privy"
	MethodWalletConnect Method = "walletconnect"
	MethodCoinbase      Method = "coinbase"
)

// Methods returns every supported login method
func Methods() []Method {
	return []Method{MethodPrivy, MethodWalletConnect, MethodCoinbase}
}

// IsValid checks if the method is part of the closed set
func (m Method) IsValid() bool {
	switch m {
	case MethodPrivy, MethodWalletConnect, MethodCoinbase:
		return true
	}
	return false
}

// ParseMethod accepts the canonical names case-insensitively, plus the display
// names browsers historically stored ("Privy", "WalletConnect", "Coinbase Wallet").
func ParseMethod(s string) (Method, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")

	switch normalized {
	case "privy":
		return MethodPrivy, nil
	case "walletconnect":
		return MethodWalletConnect, nil
	case "coinbase", "coinbasewallet":
		return MethodCoinbase, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
}

// Session is the authenticated state of one browser. LoginMethod and WalletAddress
// are written together and cleared together.
type Session struct {
	ID            string    `json:"-"`
	LoginMethod   Method    `json:"loginMethod"`
	WalletAddress string    `json:"walletAddress"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Valid reports whether both fields are present and the method is known
func (s *Session) Valid() bool {
	if s == nil {
		return false
	}
	return s.LoginMethod.IsValid() && strings.TrimSpace(s.WalletAddress) != ""
}

// Credentials carry what the browser obtained from its wallet SDK.
// Which fields are required depends on the method.
type Credentials struct {
	WalletAddress string
	Token         string
	Signature     string
	// Nonce names the challenge a signature answers
	Nonce string
}

// Challenge is a one-time message the wallet signs to prove control of an address
type Challenge struct {
	WalletAddress string    `json:"walletAddress"`
	Nonce         string    `json:"nonce"`
	Message       string    `json:"message"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Account is the login history of one wallet
type Account struct {
	Address         string    `json:"address"`
	LastLoginMethod Method    `json:"lastLoginMethod"`
	LoginCount      int64     `json:"loginCount"`
	FirstSeenAt     time.Time `json:"firstSeenAt"`
	LastLoginAt     time.Time `json:"lastLoginAt"`
}
