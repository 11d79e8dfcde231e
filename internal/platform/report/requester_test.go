package report_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletscope/internal/platform/report"
	"github.com/kislikjeka/walletscope/internal/platform/transfer"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, req report.Request) (*report.Report, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

var _ report.Generator = (*MockGenerator)(nil)

func TestRequest_GeneratorSuccess(t *testing.T) {
	ctx := context.Background()
	transfers := transfer.SampleTransfers()

	gen := new(MockGenerator)
	gen.On("Generate", ctx, report.Request{WalletAddress: testWallet, Transactions: transfers}).
		Return(&report.Report{OverallHealthScore: 140, SecurityTips: []string{"tip"}}, nil).Once()

	res := report.NewRequester(gen, logger.Discard()).Request(ctx, testWallet, transfers)

	require.NoError(t, res.Err)
	assert.Equal(t, 100, res.Report.OverallHealthScore)
	assert.Equal(t, testWallet, res.Report.WalletAddress)
	assert.Equal(t, report.SourceGenerator, res.Report.Source)
	assert.NotNil(t, res.Report.AIInsights)
	gen.AssertExpectations(t)
}

func TestRequest_GeneratorErrorFallsBack(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("upstream timeout")

	gen := new(MockGenerator)
	gen.On("Generate", ctx, mock.Anything).Return(nil, boom).Once()

	res := report.NewRequester(gen, logger.Discard()).Request(ctx, testWallet, nil)

	assert.ErrorIs(t, res.Err, boom)
	assert.True(t, res.Report.IsFallback())
	assert.Equal(t, 75, res.Report.OverallHealthScore)
	assert.Len(t, res.Report.SuspiciousFindings, 2)
	assert.Len(t, res.Report.SecurityTips, 2)
	assert.Len(t, res.Report.AIInsights, 1)
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestRequest_NilReportFallsBack(t *testing.T) {
	ctx := context.Background()
	gen := new(MockGenerator)
	gen.On("Generate", ctx, mock.Anything).Return(nil, nil)

	res := report.NewRequester(gen, logger.Discard()).Request(ctx, testWallet, nil)
	assert.ErrorIs(t, res.Err, report.ErrEmptyResponse)
	assert.True(t, res.Report.IsFallback())
}

func TestRequest_NotConfigured(t *testing.T) {
	res := report.NewRequester(nil, logger.Discard()).Request(context.Background(), testWallet, nil)
	assert.ErrorIs(t, res.Err, report.ErrNotConfigured)
	assert.Equal(t, testWallet, res.Report.WalletAddress)
}
