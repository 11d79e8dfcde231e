package reportapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletscope/internal/infra/gateway/reportapi"
	"github.com/kislikjeka/walletscope/internal/platform/report"
	"github.com/kislikjeka/walletscope/internal/platform/transfer"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

const testWallet = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func testLogger() *logger.Logger {
	return logger.New("development", io.Discard)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *reportapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := reportapi.NewClient("http://unused", testLogger())
	client.SetBaseURL(server.URL)
	return client
}

func TestGenerate_PostsWalletAndTransactions(t *testing.T) {
	var received map[string]json.RawMessage

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"walletAddress":"` + testWallet + `","overallHealthScore":64,"suspiciousFindings":[{"text":"Phishing approval","level":"critical"}],"securityTips":["Revoke"],"aiInsights":[]}`))
	})

	rep, err := client.Generate(context.Background(), report.Request{
		WalletAddress: testWallet,
		Transactions:  transfer.SampleTransfers(),
	})
	require.NoError(t, err)

	assert.JSONEq(t, `"`+testWallet+`"`, string(received["walletAddress"]))
	var txs []transfer.Transfer
	require.NoError(t, json.Unmarshal(received["transactions"], &txs))
	assert.Len(t, txs, 2)

	assert.Equal(t, 64, rep.OverallHealthScore)
	require.Len(t, rep.SuspiciousFindings, 1)
	assert.Equal(t, report.SeverityCritical, rep.SuspiciousFindings[0].Level)
	assert.NotNil(t, rep.AIInsights)
}

func TestGenerate_OmitsEmptyTransactions(t *testing.T) {
	var received map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.Write([]byte(`{"overallHealthScore":80}`))
	})

	_, err := client.Generate(context.Background(), report.Request{WalletAddress: testWallet})
	require.NoError(t, err)
	_, present := received["transactions"]
	assert.False(t, present)
}

func TestGenerate_StatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("overloaded"))
	})

	_, err := client.Generate(context.Background(), report.Request{WalletAddress: testWallet})
	require.Error(t, err)
	assert.True(t, reportapi.IsStatusError(err))

	var se *reportapi.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, "overloaded", se.Body)
}

func TestGenerate_TextOnlyReportIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"report":"Everything looks fine."}`))
	})

	_, err := client.Generate(context.Background(), report.Request{WalletAddress: testWallet})
	assert.ErrorIs(t, err, report.ErrMissingScore)
}

func TestGenerate_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := reportapi.NewClient(url, testLogger())
	_, err := client.Generate(context.Background(), report.Request{WalletAddress: testWallet})
	require.Error(t, err)
	assert.False(t, reportapi.IsStatusError(err))
}
