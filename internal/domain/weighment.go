package domain

import (
	"math"
	"strings"
	"time"
)

type Status string

const (
	StatusAtGate          Status = "AT_GATE"
	StatusAuthorized      Status = "AUTHORIZED"
	StatusOnScale         Status = "ON_SCALE"
	StatusFirstWeightDone Status = "FIRST_WEIGHT_DONE"
)

// statusRank orders the main weighment progression. Transitions may only move forward.
var statusRank = map[Status]int{
	StatusAtGate:          0,
	StatusAuthorized:      1,
	StatusOnScale:         2,
	StatusFirstWeightDone: 3,
}

// Rank returns the position of s in the weighment progression, or -1 for unknown statuses.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// StatusesBefore returns every known status strictly earlier than target.
func StatusesBefore(target Status) []Status {
	var out []Status
	for _, s := range []Status{StatusAtGate, StatusAuthorized, StatusOnScale, StatusFirstWeightDone} {
		if s.Rank() < target.Rank() {
			out = append(out, s)
		}
	}
	return out
}

type TransactionKind string

const (
	KindLoading   TransactionKind = "LOADING"
	KindUnloading TransactionKind = "UNLOADING"
)

// NormalizeKind upper-cases a client supplied kind and defaults it to LOADING.
func NormalizeKind(kind string) TransactionKind {
	k := strings.ToUpper(strings.TrimSpace(kind))
	if k == "" {
		return KindLoading
	}
	return TransactionKind(k)
}

// Transaction is an in-flight weighment, from gate entry until the second weighment.
type Transaction struct {
	ID               int64           `json:"id"`
	VehicleNumber    string          `json:"vehicle_number"`
	PartyName        string          `json:"party_name"`
	Item             string          `json:"item"`
	Kind             TransactionKind `json:"kind"`
	Status           Status          `json:"status"`
	ExitAuthorized   bool            `json:"exit_authorized"`
	ExitAuthorizedAt *time.Time      `json:"exit_authorized_at,omitempty"`
	GrossWt          float64         `json:"gross_wt"`
	TareWt           float64         `json:"tare_wt"`
	Image1           *string         `json:"image1,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	AuthorizedAt     *time.Time      `json:"authorized_at,omitempty"`
}

// CompletedRecord is the finalized snapshot of a transaction. Only the print
// details (transporter and LR number) may change after finalization.
type CompletedRecord struct {
	ID              int64           `json:"id"`
	VehicleNumber   string          `json:"vehicle_number"`
	PartyName       string          `json:"party_name"`
	Item            string          `json:"item"`
	Kind            TransactionKind `json:"kind"`
	GrossWt         float64         `json:"gross_wt"`
	TareWt          float64         `json:"tare_wt"`
	NetWt           float64         `json:"net_wt"`
	Image1          *string         `json:"image1,omitempty"`
	Image2          *string         `json:"image2,omitempty"`
	Date            string          `json:"date"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     time.Time       `json:"completed_at"`
	TransporterName *string         `json:"transporter_name,omitempty"`
	LRNumber        *string         `json:"lr_number,omitempty"`
}

// Finalization carries the values captured at the second weighment. The ledger
// copies every other field from the in-flight transaction.
type Finalization struct {
	ID              int64
	GrossWt         float64
	TareWt          float64
	NetWt           float64
	Image2          *string
	Date            string
	CompletedAt     time.Time
	TransporterName *string
	LRNumber        *string
}

// NetWeight is the billable quantity: the absolute difference of gross and tare.
func NetWeight(gross, tare float64) float64 {
	return math.Abs(gross - tare)
}

// SearchResult holds at most one of Pending or Completed.
type SearchResult struct {
	Pending   *Transaction
	Completed *CompletedRecord
}

// Found reports whether the search matched anything.
func (r SearchResult) Found() bool {
	return r.Pending != nil || r.Completed != nil
}
