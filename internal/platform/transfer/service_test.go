package transfer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletscope/internal/platform/transfer"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetTransfers(ctx context.Context, address string) ([]transfer.Transfer, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transfer.Transfer), args.Error(1)
}

var _ transfer.Provider = (*MockProvider)(nil)

const testAddress = "0x1234...ABCD"

func TestFetch_ReturnsIndexerRecords(t *testing.T) {
	ctx := context.Background()
	records := []transfer.Transfer{
		{ID: "0x1", From: "0xa", To: "0xb", Value: "42", Timestamp: "1700000000"},
	}

	provider := new(MockProvider)
	provider.On("GetTransfers", ctx, testAddress).Return(records, nil).Once()

	svc := transfer.NewService(provider, logger.Discard())
	res := svc.Fetch(ctx, testAddress, transfer.FallbackSample)

	assert.Equal(t, transfer.SourceIndexer, res.Source)
	assert.NoError(t, res.Err)
	assert.Equal(t, records, res.Transfers)
	provider.AssertExpectations(t)
}

func TestFetch_ZeroTransfersFallsBackToSample(t *testing.T) {
	ctx := context.Background()
	provider := new(MockProvider)
	provider.On("GetTransfers", ctx, testAddress).Return([]transfer.Transfer{}, nil).Once()

	svc := transfer.NewService(provider, logger.Discard())
	res := svc.Fetch(ctx, testAddress, transfer.FallbackSample)

	require.True(t, res.IsFallback())
	assert.ErrorIs(t, res.Err, transfer.ErrNoTransfers)
	require.Len(t, res.Transfers, 2)
	assert.Equal(t, "0xabc123-1", res.Transfers[0].ID)
	assert.Equal(t, "0xdef456-2", res.Transfers[1].ID)
	assert.Equal(t, "0.5", res.Transfers[0].EtherDisplay())
	assert.Equal(t, "1.0", res.Transfers[1].EtherDisplay())
}

func TestFetch_ProviderErrorIsSwallowed(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	provider := new(MockProvider)
	provider.On("GetTransfers", ctx, testAddress).Return(nil, boom).Once()

	svc := transfer.NewService(provider, logger.Discard())

	res := svc.Fetch(ctx, testAddress, transfer.FallbackEmpty)
	assert.True(t, res.IsFallback())
	assert.ErrorIs(t, res.Err, boom)
	assert.NotNil(t, res.Transfers)
	assert.Empty(t, res.Transfers)
	provider.AssertNumberOfCalls(t, "GetTransfers", 1)
}

func TestFetch_NilProviderFallsBack(t *testing.T) {
	svc := transfer.NewService(nil, logger.Discard())

	res := svc.Fetch(context.Background(), testAddress, transfer.FallbackSample)
	assert.ErrorIs(t, res.Err, transfer.ErrNotConfigured)
	assert.Len(t, res.Transfers, 2)
}

func TestFetch_DropsMalformedRecords(t *testing.T) {
	ctx := context.Background()
	records := []transfer.Transfer{
		{ID: "0xgood", Value: "1", Timestamp: "1"},
		{ID: "0xneg", Value: "-1", Timestamp: "1"},
		{ID: "0xeth", Value: "1.5 ETH", Timestamp: "1"},
		{ID: "0xts", Value: "1", Timestamp: "yesterday"},
		{ID: "", Value: "1", Timestamp: "1"},
	}
	provider := new(MockProvider)
	provider.On("GetTransfers", ctx, testAddress).Return(records, nil)

	svc := transfer.NewService(provider, logger.Discard())
	res := svc.Fetch(ctx, testAddress, transfer.FallbackSample)

	require.Len(t, res.Transfers, 1)
	assert.Equal(t, "0xgood", res.Transfers[0].ID)
	assert.Equal(t, transfer.SourceIndexer, res.Source)
}

func TestFetch_AllMalformedFallsBack(t *testing.T) {
	ctx := context.Background()
	provider := new(MockProvider)
	provider.On("GetTransfers", ctx, testAddress).Return([]transfer.Transfer{{ID: "x", Value: "-5", Timestamp: "1"}}, nil)

	svc := transfer.NewService(provider, logger.Discard())
	res := svc.Fetch(ctx, testAddress, transfer.FallbackSample)

	assert.ErrorIs(t, res.Err, transfer.ErrNoTransfers)
	assert.Len(t, res.Transfers, 2)
}

func TestFetch_UnknownPolicyUsesSample(t *testing.T) {
	svc := transfer.NewService(nil, logger.Discard())
	res := svc.Fetch(context.Background(), testAddress, transfer.FallbackPolicy("bogus"))
	assert.Len(t, res.Transfers, 2)
}

func TestSampleTransfers_ReturnsCopies(t *testing.T) {
	a := transfer.SampleTransfers()
	a[0].ID = "mutated"
	assert.Equal(t, "0xabc123-1", transfer.SampleTransfers()[0].ID)
}
