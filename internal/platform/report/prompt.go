package report

import (
	"encoding/json"
	"fmt"
)

// SystemInstruction is sent with every completion request.
const SystemInstruction = `Analyze this wallet's transaction history and generate a financial security report. ` +
	`Assign security marks, detect suspicious activities, and provide AI-driven recommendations.

Answer with a single JSON object and nothing else, using this shape:
{
  "overallHealthScore": <integer 0-100, higher is safer>,
  "suspiciousFindings": [{"text": "<finding>", "level": "warning" | "critical"}],
  "securityTips": ["<actionable recommendation>"],
  "aiInsights": ["<observation about the wallet's behaviour>"],
  "summary": "<two or three sentence overview>"
}`

type promptData struct {
	Transfers []promptTransfer `json:"transfers"`
}

type promptTransfer struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	ValueEth  string `json:"valueEth"`
	Timestamp string `json:"timestamp"`
}

// UserPrompt renders the wallet and its transfers as the JSON document the model analyzes.
func UserPrompt(req Request) (string, error) {
	doc := struct {
		WalletAddress string     `json:"walletAddress"`
		Data          promptData `json:"data"`
	}{
		WalletAddress: req.WalletAddress,
		Data:          promptData{Transfers: make([]promptTransfer, 0, len(req.Transactions))},
	}

	for _, t := range req.Transactions {
		doc.Data.Transfers = append(doc.Data.Transfers, promptTransfer{
			ID:        t.ID,
			From:      t.From,
			To:        t.To,
			Value:     t.Value,
			ValueEth:  t.EtherDisplay(),
			Timestamp: t.Timestamp,
		})
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode prompt: %w", err)
	}
	return string(b), nil
}
