package transfer

// FallbackPolicy selects what a failed or empty fetch degrades to.
type FallbackPolicy string

const (
	// FallbackSample substitutes the two illustrative sample transfers.
	FallbackSample FallbackPolicy = "sample"
	// FallbackEmpty substitutes an empty sequence.
	FallbackEmpty FallbackPolicy = "empty"
)

// IsValid checks if the policy is one of the known values
func (p FallbackPolicy) IsValid() bool {
	return p == FallbackSample || p == FallbackEmpty
}

// SampleTransfers returns a fresh copy of the illustrative records shown when the
// indexer has nothing to offer: 0.5 ETH and 1.0 ETH.
func SampleTransfers() []Transfer {
	return []Transfer{
		{
			ID:        "0xabc123-1",
			From:      "0xAnotherWalletAddress",
			To:        "0xCoinbaseWalletAddress",
			Value:     "500000000000000000",
			Timestamp: "1675560000",
		},
		{
			ID:        "0xdef456-2",
			From:      "0xCoinbaseWalletAddress",
			To:        "0xYetAnotherAddress",
			Value:     "1000000000000000000",
			Timestamp: "1675550000",
		},
	}
}

// Fallback returns the records for policy. Unknown policies behave like FallbackSample.
func (p FallbackPolicy) Fallback() []Transfer {
	if p == FallbackEmpty {
		return []Transfer{}
	}
	return SampleTransfers()
}
