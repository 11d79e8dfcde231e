package report

// FallbackReport returns the fixed report shown whenever generation fails.
func FallbackReport(walletAddress string) *Report {
	return &Report{
		WalletAddress:      walletAddress,
		OverallHealthScore: 75,
		SuspiciousFindings: []Finding{
			{Text: "Unusual gas fees detected", Level: SeverityWarning},
			{Text: "Large transaction to unknown contract", Level: SeverityCritical},
		},
		SecurityTips: []string{
			"Consider using a hardware wallet",
			"Enable two-factor authentication",
		},
		AIInsights: []string{
			"Your wallet has interacted with a high-risk contract.",
		},
		Source: SourceFallback,
	}
}
