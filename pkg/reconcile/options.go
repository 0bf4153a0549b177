package reconcile

import (
	"github.com/google/uuid"

	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/fields"
)

// IDFunc produces a record identifier.
type IDFunc func() string

// options configures a reconciliation run.
type options struct {
	closure       Rule
	pickup        Rule
	newID         IDFunc
	gsxCandidates fields.CandidateTable
	saCandidates  fields.CandidateTable
}

func defaultOptions() *options {
	return &options{
		closure:       ClosureRule(),
		pickup:        PickupRule(),
		newID:         uuid.NewString,
		gsxCandidates: fields.DefaultGSX(),
		saCandidates:  fields.DefaultSA(),
	}
}

// Option is a function that configures a reconciliation run.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithClosureRule replaces the closure (rule A) vocabulary.
func WithClosureRule(rule Rule) Option {
	return func(o *options) error {
		if err := rule.validate("closure"); err != nil {
			return err
		}
		o.closure = rule
		return nil
	}
}

// WithPickupRule replaces the pickup (rule B) vocabulary.
func WithPickupRule(rule Rule) Option {
	return func(o *options) error {
		if err := rule.validate("pickup"); err != nil {
			return err
		}
		o.pickup = rule
		return nil
	}
}

// WithIDFunc sets the generator for record ids.
func WithIDFunc(fn IDFunc) Option {
	return func(o *options) error {
		if fn == nil {
			return &errors.ValidationError{
				Field:   "id_func",
				Message: "cannot be nil",
			}
		}
		o.newID = fn
		return nil
	}
}

// WithGSXCandidates overrides header candidates for the GSX report.
// Roles absent from table keep their defaults.
func WithGSXCandidates(table fields.CandidateTable) Option {
	return func(o *options) error {
		o.gsxCandidates = o.gsxCandidates.Merge(table)
		return nil
	}
}

// WithSACandidates overrides header candidates for the SA report.
// Roles absent from table keep their defaults.
func WithSACandidates(table fields.CandidateTable) Option {
	return func(o *options) error {
		o.saCandidates = o.saCandidates.Merge(table)
		return nil
	}
}
