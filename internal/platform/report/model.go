package report

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/kislikjeka/walletscope/internal/platform/transfer"
)

// Severity grades a suspicious finding
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ParseSeverity maps a generator-provided level onto the closed set.
// Anything that is not recognizably critical is a warning.
func ParseSeverity(level string) Severity {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "critical", "high", "severe":
		return SeverityCritical
	default:
		return SeverityWarning
	}
}

// Source tells whether a report came from the generator or is the fixed fallback
type Source string

const (
	SourceGenerator Source = "generator"
	SourceFallback  Source = "fallback"
)

const (
	MinHealthScore = 0
	MaxHealthScore = 100
)

// Finding is one suspicious activity flagged by the generator
type Finding struct {
	Text  string   `json:"text"`
	Level Severity `json:"level"`
}

// UnmarshalJSON accepts both {"text","level"} objects and bare strings,
// the latter being treated as warnings.
func (f *Finding) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*f = Finding{Text: text, Level: SeverityWarning}
		return nil
	}

	var raw struct {
		Text    string `json:"text"`
		Level   string `json:"level"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	text := raw.Text
	if text == "" {
		text = raw.Message
	}
	*f = Finding{Text: text, Level: ParseSeverity(raw.Level)}
	return nil
}

// Report is the security report shown for a wallet
type Report struct {
	WalletAddress      string    `json:"walletAddress"`
	OverallHealthScore int       `json:"overallHealthScore"`
	SuspiciousFindings []Finding `json:"suspiciousFindings"`
	SecurityTips       []string  `json:"securityTips"`
	AIInsights         []string  `json:"aiInsights"`
	Summary            string    `json:"summary"`
	Source             Source    `json:"source"`
}

// Normalize enforces the report invariants in place: the score is clamped to
// [0, 100], sequences are non-nil, blank entries are dropped and levels are
// mapped onto the closed severity set. An empty wallet address is filled in.
func (r *Report) Normalize(walletAddress string) {
	if r.WalletAddress == "" {
		r.WalletAddress = walletAddress
	}

	switch {
	case r.OverallHealthScore < MinHealthScore:
		r.OverallHealthScore = MinHealthScore
	case r.OverallHealthScore > MaxHealthScore:
		r.OverallHealthScore = MaxHealthScore
	}

	findings := make([]Finding, 0, len(r.SuspiciousFindings))
	for _, f := range r.SuspiciousFindings {
		f.Text = strings.TrimSpace(f.Text)
		if f.Text == "" {
			continue
		}
		if f.Level != SeverityCritical {
			f.Level = SeverityWarning
		}
		findings = append(findings, f)
	}
	r.SuspiciousFindings = findings

	r.SecurityTips = compact(r.SecurityTips)
	r.AIInsights = compact(r.AIInsights)
	r.Summary = strings.TrimSpace(r.Summary)

	if r.Source == "" {
		r.Source = SourceGenerator
	}
}

// IsFallback returns true if the report is the fixed fallback
func (r *Report) IsFallback() bool {
	return r.Source == SourceFallback
}

// Request is what a Generator analyzes. Transactions may be empty.
type Request struct {
	WalletAddress string              `json:"walletAddress"`
	Transactions  []transfer.Transfer `json:"transactions,omitempty"`
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
