package reconcile

import (
	"fmt"
	"slices"
	"time"

	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/fields"
)

// Placeholders used when a GSX cell is absent.
const (
	MissingStatus = "N/A"
	MissingValue  = "-"
)

// MatchedRecord is one SA row joined to its GSX ticket. Records are shared
// between result sets and must not be modified.
type MatchedRecord struct {
	ID          string `json:"id" yaml:"id"`
	GSXTicketID string `json:"gsx_ticket_id" yaml:"gsx_ticket_id"`
	RMAOrderID  string `json:"rma_order_id" yaml:"rma_order_id"`
	SAStatus    string `json:"sa_status" yaml:"sa_status"`
	GSXStatus   string `json:"gsx_status" yaml:"gsx_status"`
	CreatedDate string `json:"created_date" yaml:"created_date"`
	IsAnomaly   bool   `json:"is_anomaly" yaml:"is_anomaly"`
}

// Set names accepted by Result.Set.
const (
	SetClosure = "closure"
	SetPickup  = "pickup"
	SetAll     = "all"
)

// SetNames lists the result sets in display order.
func SetNames() []string {
	return []string{SetClosure, SetPickup, SetAll}
}

// Outcome classifies a completed run.
type Outcome int

// Outcomes.
const (
	OutcomeNoMatches Outcome = iota
	OutcomeMatched
)

// String returns the outcome name.
func (o Outcome) String() string {
	if o == OutcomeMatched {
		return "matched"
	}
	return "no_matches"
}

// Stats counts what happened to the input rows.
type Stats struct {
	GSXRows       int           `json:"gsx_rows" yaml:"gsx_rows"`
	SARows        int           `json:"sa_rows" yaml:"sa_rows"`
	Indexed       int           `json:"indexed" yaml:"indexed"`
	DuplicateKeys int           `json:"duplicate_keys" yaml:"duplicate_keys"`
	Skipped       int           `json:"skipped" yaml:"skipped"`
	Unmatched     int           `json:"unmatched" yaml:"unmatched"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
}

// Result holds the three record sets of one run.
type Result struct {
	ClosureAnomalies []*MatchedRecord
	PickupAnomalies  []*MatchedRecord
	AllMatched       []*MatchedRecord
	MatchCount       int

	GSXFields fields.FieldMap
	SAFields  fields.FieldMap

	Stats Stats
}

// Outcome reports whether any SA row found its GSX ticket.
func (r *Result) Outcome() Outcome {
	if r == nil || r.MatchCount == 0 {
		return OutcomeNoMatches
	}
	return OutcomeMatched
}

// Set returns the named record set.
func (r *Result) Set(name string) ([]*MatchedRecord, error) {
	switch name {
	case SetClosure:
		return r.ClosureAnomalies, nil
	case SetPickup:
		return r.PickupAnomalies, nil
	case SetAll, "":
		return r.AllMatched, nil
	}
	return nil, &errors.ValidationError{
		Field:   "set",
		Value:   name,
		Message: fmt.Sprintf("must be one of %v", SetNames()),
	}
}

// Record returns the matched record with the given id.
func (r *Result) Record(id string) (*MatchedRecord, bool) {
	i := slices.IndexFunc(r.AllMatched, func(m *MatchedRecord) bool { return m.ID == id })
	if i < 0 {
		return nil, false
	}
	return r.AllMatched[i], true
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	if r.Outcome() == OutcomeNoMatches {
		return "No matching repair tickets found."
	}
	return fmt.Sprintf("Matched %d tickets: %d closure anomalies, %d pickup anomalies.",
		r.MatchCount, len(r.ClosureAnomalies), len(r.PickupAnomalies))
}
