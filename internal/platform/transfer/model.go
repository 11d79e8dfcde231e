package transfer

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/kislikjeka/walletscope/pkg/money"
)

// Transfer is one on-chain value movement as reported by the indexing service.
// Value is in base units (wei) and Timestamp is unix seconds, both kept as the
// strings the indexer sends.
type Transfer struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	Timestamp string `json:"timestamp"`
}

// Validate checks the record invariants: an id, a non-negative integer value and an
// integer timestamp.
func (t Transfer) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if _, err := money.ParseBaseUnits(t.Value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if _, err := strconv.ParseInt(strings.TrimSpace(t.Timestamp), 10, 64); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimestamp, t.Timestamp)
	}
	return nil
}

// Wei returns the parsed value, or zero when the record is invalid.
func (t Transfer) Wei() *big.Int {
	v, err := money.ParseBaseUnits(t.Value)
	if err != nil {
		return big.NewInt(0)
	}
	return v
}

// EtherDisplay is the ether-denominated amount, e.g. "0.5".
func (t Transfer) EtherDisplay() string {
	return money.FormatEther(t.Wei())
}

// OccurredAt converts Timestamp to UTC time. Invalid timestamps yield the zero time.
func (t Transfer) OccurredAt() time.Time {
	secs, err := strconv.ParseInt(strings.TrimSpace(t.Timestamp), 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// Involves reports whether address is the sender or the recipient.
func (t Transfer) Involves(address string) bool {
	return strings.EqualFold(t.From, address) || strings.EqualFold(t.To, address)
}
