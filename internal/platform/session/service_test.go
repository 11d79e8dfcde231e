package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletscope/internal/infra/memory"
	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/internal/platform/wallet"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

const testSecret = "test-secret-key-minimum-32-characters-long-for-security"

// =============================================================================
// Mocks
// =============================================================================

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) LinkedWallets(ctx context.Context, token string) ([]string, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockAccountRecorder struct {
	mock.Mock
}

func (m *MockAccountRecorder) RecordLogin(ctx context.Context, address string, method session.Method, at time.Time) error {
	args := m.Called(ctx, address, method, at)
	return args.Error(0)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context, id string) (*session.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockStore) Save(ctx context.Context, s *session.Session, ttl time.Duration) error {
	return m.Called(ctx, s, ttl).Error(0)
}

func (m *MockStore) Clear(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// failingAuthenticator wraps a strategy whose disconnect always fails
type failingAuthenticator struct {
	session.Authenticator
}

func (f failingAuthenticator) Disconnect(ctx context.Context, address string) error {
	return errors.New("sdk unreachable")
}

// =============================================================================
// Fixtures
// =============================================================================

type fixture struct {
	svc      *session.Service
	store    *memory.SessionStore
	nonces   *memory.NonceStore
	verifier *MockVerifier
	accounts *MockAccountRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()

	f := &fixture{
		store:    memory.NewSessionStore(),
		nonces:   memory.NewNonceStore(),
		verifier: new(MockVerifier),
		accounts: new(MockAccountRecorder),
	}

	registry, err := session.NewRegistry(
		session.NewPrivyAuthenticator(f.verifier, log),
		session.NewSignatureAuthenticator(session.MethodWalletConnect, f.nonces, log),
		session.NewSignatureAuthenticator(session.MethodCoinbase, f.nonces, log),
	)
	require.NoError(t, err)

	f.accounts.On("RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f.svc = session.NewService(f.store, f.nonces, registry, session.NewTokenService(testSecret), f.accounts, session.Config{}, log)
	return f
}

// signatureLogin runs the challenge flow for a fresh key and returns the result
func signatureLogin(t *testing.T, f *fixture, method session.Method) *session.LoginResult {
	t.Helper()
	ctx := context.Background()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	ch, err := f.svc.Challenge(ctx, address)
	require.NoError(t, err)

	sig, err := crypto.Sign(wallet.PersonalMessageHash(ch.Message), key)
	require.NoError(t, err)
	sig[64] += 27

	res, err := f.svc.Login(ctx, method, session.Credentials{
		WalletAddress: address,
		Signature:     hexutil.Encode(sig),
		Nonce:         ch.Nonce,
	})
	require.NoError(t, err)
	return res
}

// =============================================================================
// Registry
// =============================================================================

func TestRegistry(t *testing.T) {
	log := logger.Discard()
	nonces := memory.NewNonceStore()

	_, err := session.NewRegistry(
		session.NewSignatureAuthenticator(session.MethodCoinbase, nonces, log),
		session.NewSignatureAuthenticator(session.MethodCoinbase, nonces, log),
	)
	assert.ErrorIs(t, err, session.ErrDuplicateAuthenticator)

	_, err = session.NewRegistry(session.NewSignatureAuthenticator("metamask", nonces, log))
	assert.ErrorIs(t, err, session.ErrUnsupportedMethod)

	r, err := session.NewRegistry(
		session.NewSignatureAuthenticator(session.MethodCoinbase, nonces, log),
		session.NewPrivyAuthenticator(nil, log),
	)
	require.NoError(t, err)
	assert.Equal(t, []session.Method{session.MethodPrivy, session.MethodCoinbase}, r.Methods())
	assert.Equal(t, []session.Method{session.MethodCoinbase}, r.Available())

	_, err = r.Get(session.MethodWalletConnect)
	assert.ErrorIs(t, err, session.ErrUnsupportedMethod)
}

// =============================================================================
// Challenge + signature login
// =============================================================================

func TestChallenge(t *testing.T) {
	f := newFixture(t)

	ch, err := f.svc.Challenge(context.Background(), "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)

	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", ch.WalletAddress)
	assert.Contains(t, ch.Message, ch.WalletAddress)
	assert.Contains(t, ch.Message, "Nonce: "+ch.Nonce)
	assert.NotEmpty(t, ch.Nonce)
	assert.WithinDuration(t, time.Now().Add(session.DefaultChallengeTTL), ch.ExpiresAt, 5*time.Second)

	_, err = f.svc.Challenge(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)
}

func TestService_Methods(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, session.Methods(), f.svc.Methods())

	log := logger.Discard()
	nonces := memory.NewNonceStore()
	registry, err := session.NewRegistry(
		session.NewPrivyAuthenticator(nil, log),
		session.NewSignatureAuthenticator(session.MethodWalletConnect, nonces, log),
	)
	require.NoError(t, err)
	svc := session.NewService(memory.NewSessionStore(), nonces, registry, session.NewTokenService(testSecret), nil, session.Config{}, log)
	assert.Equal(t, []session.Method{session.MethodWalletConnect}, svc.Methods())
}

func TestLogin_SignatureMethods(t *testing.T) {
	for _, method := range []session.Method{session.MethodWalletConnect, session.MethodCoinbase} {
		t.Run(string(method), func(t *testing.T) {
			f := newFixture(t)
			res := signatureLogin(t, f, method)

			assert.NotEmpty(t, res.Token)
			assert.Equal(t, method, res.Session.LoginMethod)
			assert.True(t, res.Session.Valid())

			current, err := f.svc.Current(context.Background(), res.Token)
			require.NoError(t, err)
			assert.Equal(t, res.Session.WalletAddress, current.WalletAddress)
			assert.Equal(t, res.Session.ID, current.ID)

			f.accounts.AssertCalled(t, "RecordLogin", mock.Anything, res.Session.WalletAddress, method, mock.Anything)
		})
	}
}

func TestLogin_ChallengeIsSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	ch, err := f.svc.Challenge(ctx, address)
	require.NoError(t, err)
	sig, err := crypto.Sign(wallet.PersonalMessageHash(ch.Message), key)
	require.NoError(t, err)
	creds := session.Credentials{WalletAddress: address, Signature: hexutil.Encode(sig), Nonce: ch.Nonce}

	_, err = f.svc.Login(ctx, session.MethodCoinbase, creds)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, session.MethodCoinbase, creds)
	assert.ErrorIs(t, err, session.ErrChallengeNotFound)
}

func TestLogin_SignatureFromAnotherKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	victim, _ := crypto.GenerateKey()
	attacker, _ := crypto.GenerateKey()
	address := crypto.PubkeyToAddress(victim.PublicKey).Hex()

	ch, err := f.svc.Challenge(ctx, address)
	require.NoError(t, err)
	sig, err := crypto.Sign(wallet.PersonalMessageHash(ch.Message), attacker)
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, session.MethodWalletConnect, session.Credentials{
		WalletAddress: address,
		Signature:     hexutil.Encode(sig),
		Nonce:         ch.Nonce,
	})
	assert.ErrorIs(t, err, wallet.ErrSignerMismatch)
	f.accounts.AssertNotCalled(t, "RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_WithoutChallenge(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), session.MethodWalletConnect, session.Credentials{
		WalletAddress: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Signature:     "  ",
	})
	assert.ErrorIs(t, err, session.ErrMissingCredentials)

	_, err = f.svc.Login(context.Background(), session.MethodWalletConnect, session.Credentials{
		WalletAddress: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Signature:     "0xdeadbeef",
	})
	assert.ErrorIs(t, err, session.ErrMissingCredentials)

	_, err = f.svc.Login(context.Background(), session.MethodWalletConnect, session.Credentials{
		WalletAddress: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		Signature:     "0xdeadbeef",
		Nonce:         "unknown",
	})
	assert.ErrorIs(t, err, session.ErrChallengeNotFound)
}

func TestLogin_NewChallengeKeepsPendingOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	pending, err := f.svc.Challenge(ctx, address)
	require.NoError(t, err)

	// anyone can ask for a challenge for any address
	other, err := f.svc.Challenge(ctx, address)
	require.NoError(t, err)
	assert.NotEqual(t, pending.Nonce, other.Nonce)

	// a failed attempt against the other challenge leaves the pending one intact
	_, err = f.svc.Login(ctx, session.MethodWalletConnect, session.Credentials{
		WalletAddress: address,
		Signature:     "0xdeadbeef",
		Nonce:         other.Nonce,
	})
	require.Error(t, err)

	sig, err := crypto.Sign(wallet.PersonalMessageHash(pending.Message), key)
	require.NoError(t, err)
	sig[64] += 27

	res, err := f.svc.Login(ctx, session.MethodWalletConnect, session.Credentials{
		WalletAddress: address,
		Signature:     hexutil.Encode(sig),
		Nonce:         pending.Nonce,
	})
	require.NoError(t, err)
	assert.Equal(t, address, res.Session.WalletAddress)
}

func TestLogin_NonceBoundToAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	ch, err := f.svc.Challenge(ctx, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)
	sig, err := crypto.Sign(wallet.PersonalMessageHash(ch.Message), key)
	require.NoError(t, err)
	sig[64] += 27

	_, err = f.svc.Login(ctx, session.MethodCoinbase, session.Credentials{
		WalletAddress: address,
		Signature:     hexutil.Encode(sig),
		Nonce:         ch.Nonce,
	})
	assert.ErrorIs(t, err, session.ErrChallengeNotFound)
}

func TestLogin_UnsupportedMethod(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), session.Method("metamask"), session.Credentials{})
	assert.ErrorIs(t, err, session.ErrUnsupportedMethod)
}

// =============================================================================
// Privy login
// =============================================================================

func TestLogin_Privy(t *testing.T) {
	linked := []string{
		"0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359",
		"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
	}

	t.Run("first linked wallet", func(t *testing.T) {
		f := newFixture(t)
		f.verifier.On("LinkedWallets", mock.Anything, "id-token").Return(linked, nil).Once()

		res, err := f.svc.Login(context.Background(), session.MethodPrivy, session.Credentials{Token: "id-token"})
		require.NoError(t, err)
		assert.Equal(t, "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", res.Session.WalletAddress)
		assert.Equal(t, session.MethodPrivy, res.Session.LoginMethod)
	})

	t.Run("requested linked wallet", func(t *testing.T) {
		f := newFixture(t)
		f.verifier.On("LinkedWallets", mock.Anything, "id-token").Return(linked, nil).Once()

		res, err := f.svc.Login(context.Background(), session.MethodPrivy, session.Credentials{
			Token:         "id-token",
			WalletAddress: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		})
		require.NoError(t, err)
		assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", res.Session.WalletAddress)
	})

	t.Run("requested wallet not linked", func(t *testing.T) {
		f := newFixture(t)
		f.verifier.On("LinkedWallets", mock.Anything, "id-token").Return(linked, nil).Once()

		_, err := f.svc.Login(context.Background(), session.MethodPrivy, session.Credentials{
			Token:         "id-token",
			WalletAddress: "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		})
		assert.ErrorIs(t, err, session.ErrWalletNotLinked)
	})

	t.Run("no linked wallets", func(t *testing.T) {
		f := newFixture(t)
		f.verifier.On("LinkedWallets", mock.Anything, "id-token").Return([]string{}, nil).Once()

		_, err := f.svc.Login(context.Background(), session.MethodPrivy, session.Credentials{Token: "id-token"})
		assert.ErrorIs(t, err, session.ErrNoLinkedWallet)
	})

	t.Run("missing token", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Login(context.Background(), session.MethodPrivy, session.Credentials{})
		assert.ErrorIs(t, err, session.ErrMissingCredentials)
	})

	t.Run("not configured", func(t *testing.T) {
		auth := session.NewPrivyAuthenticator(nil, logger.Discard())
		_, err := auth.Connect(context.Background(), session.Credentials{Token: "id-token"})
		assert.ErrorIs(t, err, session.ErrProviderNotConfigured)
	})
}

// =============================================================================
// Current + Logout
// =============================================================================

func TestCurrent_InvalidToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Current(context.Background(), "garbage")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestCurrent_IncompleteSessionIsCleared(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	tokens := session.NewTokenService(testSecret)
	registry, err := session.NewRegistry()
	require.NoError(t, err)

	svc := session.NewService(store, memory.NewNonceStore(), registry, tokens, nil, session.Config{}, logger.Discard())

	token, err := tokens.Issue(&session.Session{ID: "sid-partial", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	store.On("Load", ctx, "sid-partial").Return(&session.Session{LoginMethod: session.MethodPrivy}, nil).Once()
	store.On("Clear", ctx, "sid-partial").Return(nil).Once()

	_, err = svc.Current(ctx, token)
	assert.ErrorIs(t, err, session.ErrNoSession)
	store.AssertExpectations(t)
}

func TestLogout_ClearsForEveryMethod(t *testing.T) {
	for _, method := range []session.Method{session.MethodWalletConnect, session.MethodCoinbase, session.MethodPrivy} {
		t.Run(string(method), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			var res *session.LoginResult
			if method == session.MethodPrivy {
				f.verifier.On("LinkedWallets", mock.Anything, "tok").Return([]string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}, nil)
				var err error
				res, err = f.svc.Login(ctx, method, session.Credentials{Token: "tok"})
				require.NoError(t, err)
			} else {
				res = signatureLogin(t, f, method)
			}

			require.NoError(t, f.svc.Logout(ctx, res.Session))

			_, err := f.svc.Current(ctx, res.Token)
			assert.ErrorIs(t, err, session.ErrNoSession)
		})
	}
}

func TestLogout_ClearsWhenDisconnectFails(t *testing.T) {
	ctx := context.Background()
	log := logger.Discard()
	store := memory.NewSessionStore()
	nonces := memory.NewNonceStore()
	tokens := session.NewTokenService(testSecret)

	registry, err := session.NewRegistry(failingAuthenticator{
		Authenticator: session.NewSignatureAuthenticator(session.MethodCoinbase, nonces, log),
	})
	require.NoError(t, err)
	svc := session.NewService(store, nonces, registry, tokens, nil, session.Config{}, log)

	sess := &session.Session{ID: "sid", LoginMethod: session.MethodCoinbase, WalletAddress: "0xabc"}
	require.NoError(t, store.Save(ctx, sess, time.Hour))

	require.NoError(t, svc.Logout(ctx, sess))

	_, err = store.Load(ctx, "sid")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestLogout_NoSession(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.svc.Logout(context.Background(), nil), session.ErrNoSession)
}

func TestLogin_AccountLogFailureDoesNotFailLogin(t *testing.T) {
	log := logger.Discard()
	nonces := memory.NewNonceStore()
	accounts := new(MockAccountRecorder)
	accounts.On("RecordLogin", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))

	registry, err := session.NewRegistry(session.NewSignatureAuthenticator(session.MethodCoinbase, nonces, log))
	require.NoError(t, err)

	f := &fixture{nonces: nonces, accounts: accounts}
	f.svc = session.NewService(memory.NewSessionStore(), nonces, registry, session.NewTokenService(testSecret), accounts, session.Config{}, log)

	res := signatureLogin(t, f, session.MethodCoinbase)
	assert.NotEmpty(t, res.Token)
	accounts.AssertNumberOfCalls(t, "RecordLogin", 1)
}
