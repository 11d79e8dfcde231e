package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kislikjeka/walletscope/internal/platform/report"
	"github.com/kislikjeka/walletscope/internal/platform/session"
	"github.com/kislikjeka/walletscope/internal/platform/transfer"
)

// Status is the load state of one dashboard section
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusReady    Status = "ready"
	StatusFallback Status = "fallback"
)

// IsTerminal returns true once a section has resolved
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusFallback
}

// CanTransition checks the section lifecycle: idle -> loading -> ready | fallback
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusIdle:
		return to == StatusLoading
	case StatusLoading:
		return to.IsTerminal()
	}
	return false
}

// Messages shown for a section that fell back. Upstream causes are only logged.
const (
	MsgNoTransfers          = "no transfers found for this wallet"
	MsgTransfersUnavailable = "transfers unavailable"
	MsgReportUnavailable    = "error generating report"
)

// section tracks the lifecycle shared by every dashboard section
type section struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *section) transition(to Status) error {
	if !s.Status.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, to)
	}
	s.Status = to
	return nil
}

// resolve moves a loading section to ready, or to fallback with message
func (s *section) resolve(failed bool, message string) error {
	if failed {
		s.Error = message
		return s.transition(StatusFallback)
	}
	return s.transition(StatusReady)
}

// transfersMessage picks the public message for a transfer fallback
func transfersMessage(cause error) string {
	if errors.Is(cause, transfer.ErrNoTransfers) {
		return MsgNoTransfers
	}
	return MsgTransfersUnavailable
}

// Direction of a transfer relative to the dashboard wallet
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionSelf Direction = "self"
)

// TransferView is a transfer record with its display fields
type TransferView struct {
	transfer.Transfer
	ValueEth   string    `json:"valueEth"`
	OccurredAt time.Time `json:"occurredAt"`
	// Direction is empty when the wallet is neither side, as for sample records
	Direction Direction `json:"direction,omitempty"`
}

// NewTransferView derives the display fields of t as seen from owner
func NewTransferView(t transfer.Transfer, owner string) TransferView {
	return TransferView{
		Transfer:   t,
		ValueEth:   t.EtherDisplay(),
		OccurredAt: t.OccurredAt(),
		Direction:  directionOf(t, owner),
	}
}

func directionOf(t transfer.Transfer, owner string) Direction {
	if owner == "" || !t.Involves(owner) {
		return ""
	}
	sent := strings.EqualFold(t.From, owner)
	received := strings.EqualFold(t.To, owner)
	switch {
	case sent && received:
		return DirectionSelf
	case sent:
		return DirectionOut
	}
	return DirectionIn
}

// TransfersSection is the transfer list with its own status
type TransfersSection struct {
	section
	Source transfer.Source `json:"source,omitempty"`
	Items  []TransferView  `json:"items"`

	records []transfer.Transfer
}

// NewTransfersSection returns an idle section
func NewTransfersSection() *TransfersSection {
	return &TransfersSection{
		section: section{Status: StatusIdle},
		Items:   []TransferView{},
	}
}

// Records returns the underlying transfer records
func (s *TransfersSection) Records() []transfer.Transfer {
	return s.records
}

// FromIndexer reports whether the records are real indexer data
func (s *TransfersSection) FromIndexer() bool {
	return s.Source == transfer.SourceIndexer
}

// ReportSection is the security report with its own status
type ReportSection struct {
	section
	Report *report.Report `json:"report"`
}

// NewReportSection returns an idle section
func NewReportSection() *ReportSection {
	return &ReportSection{section: section{Status: StatusIdle}}
}

// Dashboard is everything the dashboard page shows for a session
type Dashboard struct {
	Session   *session.Session  `json:"session"`
	Transfers *TransfersSection `json:"transfers"`
	Report    *ReportSection    `json:"report"`
}
