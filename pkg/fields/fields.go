// Package fields binds the logical columns the reconciler needs to whatever
// literal headers a report actually carries.
//
// Exports are produced in more than one locale and vendors rename columns
// between releases, so each role lists candidate names in tiers: an exact
// tier first, then substring tiers. The first tier with a matching header
// decides the binding; inside a tier the leftmost matching header wins.
package fields

import (
	"slices"
	"strings"

	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/table"
)

// Role is a logical column.
type Role string

// Roles used by the reconciler.
const (
	PurchaseOrderKey Role = "purchase_order"
	TicketID         Role = "ticket_id"
	TicketStatus     Role = "ticket_status"
	CreationDate     Role = "creation_date"
)

// Roles returns every role in resolution order.
func Roles() []Role {
	return []Role{PurchaseOrderKey, TicketID, TicketStatus, CreationDate}
}

// Side names a report.
type Side string

// Report sides.
const (
	GSX Side = "gsx"
	SA  Side = "sa"
)

// Tier is one level of candidate names for a role. A header matches when it
// equals one of Equals or contains one of Contains, and contains none of
// Exclude.
type Tier struct {
	Equals   []string `yaml:"equals,omitempty" json:"equals,omitempty" mapstructure:"equals"`
	Contains []string `yaml:"contains,omitempty" json:"contains,omitempty" mapstructure:"contains"`
	Exclude  []string `yaml:"exclude,omitempty" json:"exclude,omitempty" mapstructure:"exclude"`
}

func (t Tier) matches(header string) bool {
	for _, x := range t.Exclude {
		if strings.Contains(header, x) {
			return false
		}
	}
	if slices.Contains(t.Equals, header) {
		return true
	}
	for _, c := range t.Contains {
		if strings.Contains(header, c) {
			return true
		}
	}
	return false
}

// Candidates is the ordered list of tiers for one role.
type Candidates []Tier

// CandidateTable holds the candidates for every role of one report side.
// A role missing from the table is never resolved.
type CandidateTable map[Role]Candidates

// DefaultGSX returns the candidate table for manufacturer repair exports.
func DefaultGSX() CandidateTable {
	return CandidateTable{
		PurchaseOrderKey: {
			{Equals: []string{"採購訂單"}},
			{Contains: []string{"採購", "Purchase", "PO"}},
		},
		TicketID: {
			{Equals: []string{"維修", "維修 ID"}},
			{Contains: []string{"Repair ID"}},
		},
		TicketStatus: {
			{Equals: []string{"維修狀態"}},
			{Contains: []string{"Repair Status", "Status"}},
		},
		CreationDate: {
			{Equals: []string{"建立日期"}},
			{Contains: []string{"Created", "Creation Date"}},
		},
	}
}

// DefaultSA returns the candidate table for service-desk exports. The
// service desk has no ticket id or creation date the reconciler uses.
func DefaultSA() CandidateTable {
	return CandidateTable{
		PurchaseOrderKey: {
			{Equals: []string{"單號", "Order No"}},
			{Contains: []string{"單號", "Order"}},
		},
		TicketStatus: {
			{Equals: []string{"狀態", "Status"}},
			{Contains: []string{"狀態"}, Exclude: []string{"保固"}},
			{Contains: []string{"Status"}},
		},
	}
}

// Default returns the default candidate table for side.
func Default(side Side) CandidateTable {
	if side == GSX {
		return DefaultGSX()
	}
	return DefaultSA()
}

// Merge returns a copy of t with the roles present in override replaced.
func (t CandidateTable) Merge(override CandidateTable) CandidateTable {
	out := make(CandidateTable, len(t)+len(override))
	for role, c := range t {
		out[role] = c
	}
	for role, c := range override {
		if len(c) > 0 {
			out[role] = c
		}
	}
	return out
}

// FieldMap binds roles to literal headers. It is read-only after Resolve.
type FieldMap map[Role]string

// Header returns the header bound to role.
func (m FieldMap) Header(role Role) (string, bool) {
	h, ok := m[role]
	return h, ok
}

// Value returns the cell of row under the header bound to role. It reports
// false when the role is unresolved or the row has no value for it.
func (m FieldMap) Value(row table.Row, role Role) (string, bool) {
	h, ok := m[role]
	if !ok {
		return "", false
	}
	v, ok := row[h]
	return v, ok
}

// Resolve binds every role in candidates to the first matching header.
func Resolve(headers []string, candidates CandidateTable) FieldMap {
	m := make(FieldMap, len(candidates))
	for _, role := range Roles() {
		if h, ok := resolveRole(headers, candidates[role]); ok {
			m[role] = h
		}
	}
	return m
}

func resolveRole(headers []string, tiers Candidates) (string, bool) {
	for _, tier := range tiers {
		for _, h := range headers {
			if tier.matches(h) {
				return h, true
			}
		}
	}
	return "", false
}

// RequireGSX fails when the GSX purchase order column is unresolved, the
// one binding without which no join is possible.
func RequireGSX(m FieldMap, headers []string) error {
	if _, ok := m[PurchaseOrderKey]; !ok {
		return errors.NewMissingColumnError(string(GSX), string(PurchaseOrderKey), headers)
	}
	return nil
}
