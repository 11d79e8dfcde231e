//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletscope/internal/infra/postgres"
	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/testutil/testdb"
)

var testDB *testdb.TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	testDB, err = testdb.NewTestDB(ctx)
	if err != nil {
		panic("failed to create test database: " + err.Error())
	}

	code := m.Run()

	testDB.Close(ctx)
	if code != 0 {
		panic("tests failed")
	}
}

func setupTest(t *testing.T) (*postgres.AccountRepository, context.Context) {
	ctx := context.Background()
	require.NoError(t, testDB.Reset(ctx))
	return postgres.NewAccountRepository(testDB.Pool), ctx
}

const testAddress = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestAccountRepository_FirstLogin(t *testing.T) {
	repo, ctx := setupTest(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.RecordLogin(ctx, testAddress, session.MethodWalletConnect, at))

	acc, err := repo.GetAccount(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, testAddress, acc.Address)
	assert.Equal(t, session.MethodWalletConnect, acc.LastLoginMethod)
	assert.EqualValues(t, 1, acc.LoginCount)
	assert.True(t, at.Equal(acc.FirstSeenAt))
	assert.True(t, at.Equal(acc.LastLoginAt))
}

func TestAccountRepository_RepeatLoginUpdates(t *testing.T) {
	repo, ctx := setupTest(t)
	first := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	require.NoError(t, repo.RecordLogin(ctx, testAddress, session.MethodWalletConnect, first))
	require.NoError(t, repo.RecordLogin(ctx, testAddress, session.MethodPrivy, second))

	acc, err := repo.GetAccount(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, session.MethodPrivy, acc.LastLoginMethod)
	assert.EqualValues(t, 2, acc.LoginCount)
	assert.True(t, first.Equal(acc.FirstSeenAt))
	assert.True(t, second.Equal(acc.LastLoginAt))
}

func TestAccountRepository_OutOfOrderLoginKeepsLatest(t *testing.T) {
	repo, ctx := setupTest(t)
	late := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	early := late.Add(-24 * time.Hour)

	require.NoError(t, repo.RecordLogin(ctx, testAddress, session.MethodCoinbase, late))
	require.NoError(t, repo.RecordLogin(ctx, testAddress, session.MethodPrivy, early))

	acc, err := repo.GetAccount(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, session.MethodCoinbase, acc.LastLoginMethod)
	assert.EqualValues(t, 2, acc.LoginCount)
	assert.True(t, early.Equal(acc.FirstSeenAt))
	assert.True(t, late.Equal(acc.LastLoginAt))
}

func TestAccountRepository_RejectsUnknownMethod(t *testing.T) {
	repo, ctx := setupTest(t)
	err := repo.RecordLogin(ctx, testAddress, session.Method("metamask"), time.Now())
	assert.Error(t, err)
}

func TestAccountRepository_NotFound(t *testing.T) {
	repo, ctx := setupTest(t)
	_, err := repo.GetAccount(ctx, testAddress)
	assert.ErrorIs(t, err, session.ErrAccountNotFound)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	ctx := context.Background()

	applied, err := postgres.Migrate(ctx, testDB.Pool)
	require.NoError(t, err)
	assert.Empty(t, applied)

	var count int
	require.NoError(t, testDB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 1, count)
}
