package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// wireReport is the accepted JSON shape. Score is a pointer so a missing field can be
// told apart from zero; Report carries free text produced by older generators.
type wireReport struct {
	WalletAddress      string    `json:"walletAddress"`
	OverallHealthScore *float64  `json:"overallHealthScore"`
	SuspiciousFindings []Finding `json:"suspiciousFindings"`
	SecurityTips       []string  `json:"securityTips"`
	AIInsights         []string  `json:"aiInsights"`
	Summary            string    `json:"summary"`
	Report             string    `json:"report"`
}

// Decode parses a generator answer into a normalized Report. The text may be wrapped
// in a markdown code fence. A body without overallHealthScore is malformed, including
// one that only carries {"report": "..."}.
func Decode(data []byte, walletAddress string) (*Report, error) {
	data = stripCodeFence(data)
	if len(data) == 0 {
		return nil, ErrEmptyResponse
	}

	var w wireReport
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	if w.OverallHealthScore == nil {
		return nil, ErrMissingScore
	}

	score := math.Max(MinHealthScore, math.Min(MaxHealthScore, *w.OverallHealthScore))

	r := &Report{
		WalletAddress:      w.WalletAddress,
		OverallHealthScore: int(math.Round(score)),
		SuspiciousFindings: w.SuspiciousFindings,
		SecurityTips:       w.SecurityTips,
		AIInsights:         w.AIInsights,
		Summary:            w.Summary,
		Source:             SourceGenerator,
	}
	if r.Summary == "" {
		r.Summary = w.Report
	}
	r.Normalize(walletAddress)
	return r, nil
}

func stripCodeFence(data []byte) []byte {
	data = bytes.TrimSpace(data)
	if !bytes.HasPrefix(data, []byte("```")) {
		return data
	}
	s := strings.TrimPrefix(string(data), "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}
