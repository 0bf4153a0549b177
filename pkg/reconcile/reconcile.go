// Package reconcile joins an SA report to a GSX report on the normalized
// purchase order key and classifies every matched pair against the closure
// and pickup rules.
//
// The GSX side is indexed completely before any SA row is looked up. Duplicate
// GSX keys resolve last-write-wins and SA rows without a GSX ticket are
// dropped; both are visible only through Stats.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/fields"
	"github.com/agentstation/rmarecon/pkg/keys"
	"github.com/agentstation/rmarecon/pkg/logging"
	"github.com/agentstation/rmarecon/pkg/table"
)

// runContext holds shared state for one reconciliation.
type runContext struct {
	opts      *options
	logger    *zerolog.Logger
	gsxFields fields.FieldMap
	saFields  fields.FieldMap
	stats     Stats
	startTime time.Time
}

// Reconcile joins sa against gsx and returns the classified records.
// An unresolvable GSX purchase order column is the only data error; a run
// in which nothing matches succeeds with OutcomeNoMatches.
func Reconcile(ctx context.Context, gsx, sa *table.RawTable, opts ...Option) (*Result, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if gsx == nil {
		gsx = &table.RawTable{}
	}
	if sa == nil {
		sa = &table.RawTable{}
	}

	// Step 1: resolve columns
	rctx, err := initialize(ctx, o, gsx, sa)
	if err != nil {
		return nil, err
	}
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}

	// Step 2: index every GSX row before probing
	index := rctx.index(gsx)
	if err := checkCanceled(ctx); err != nil {
		return nil, err
	}

	// Step 3: look up SA rows and classify
	result := rctx.lookup(sa, index)

	result.Stats.Duration = time.Since(rctx.startTime)
	rctx.logger.Info().
		Int("matched", result.MatchCount).
		Int("closure", len(result.ClosureAnomalies)).
		Int("pickup", len(result.PickupAnomalies)).
		Int("unmatched", result.Stats.Unmatched).
		Int("skipped", result.Stats.Skipped).
		Dur("duration", result.Stats.Duration).
		Msg("Reconciliation complete")
	return result, nil
}

// ResolveColumns resolves both header rows against the configured column
// candidates without checking that any role was found.
func ResolveColumns(gsxHeaders, saHeaders []string, opts ...Option) (gsx, sa fields.FieldMap, err error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, nil, err
	}
	return fields.Resolve(gsxHeaders, o.gsxCandidates), fields.Resolve(saHeaders, o.saCandidates), nil
}

func initialize(ctx context.Context, o *options, gsx, sa *table.RawTable) (*runContext, error) {
	logger := logging.FromContext(ctx)

	gsxFields := fields.Resolve(gsx.Headers, o.gsxCandidates)
	if err := fields.RequireGSX(gsxFields, gsx.Headers); err != nil {
		logger.Error().
			Strs("headers", gsx.Headers).
			Msg("GSX purchase order column not found")
		return nil, err
	}
	saFields := fields.Resolve(sa.Headers, o.saCandidates)

	logRoles(logger, fields.GSX, gsxFields)
	logRoles(logger, fields.SA, saFields)

	return &runContext{
		opts:      o,
		logger:    logger,
		gsxFields: gsxFields,
		saFields:  saFields,
		stats: Stats{
			GSXRows: gsx.Len(),
			SARows:  sa.Len(),
		},
		startTime: time.Now(),
	}, nil
}

func logRoles(logger *zerolog.Logger, side fields.Side, m fields.FieldMap) {
	event := logger.Debug().Str("side", string(side))
	for _, role := range fields.Roles() {
		if h, ok := m.Header(role); ok {
			event = event.Str(string(role), h)
		}
	}
	event.Msg("Resolved columns")
}

func (rctx *runContext) index(gsx *table.RawTable) map[string]table.Row {
	index := make(map[string]table.Row, gsx.Len())
	for _, row := range gsx.Rows {
		raw, ok := rctx.gsxFields.Value(row, fields.PurchaseOrderKey)
		if !ok {
			continue
		}
		key := keys.Normalize(raw)
		if key == "" {
			continue
		}
		if _, dup := index[key]; dup {
			rctx.stats.DuplicateKeys++
			rctx.logger.Debug().
				Str("key", key).
				Str("purchase_order", raw).
				Msg("Duplicate GSX key, keeping later row")
		}
		index[key] = row
	}
	rctx.stats.Indexed = len(index)
	return index
}

func (rctx *runContext) lookup(sa *table.RawTable, index map[string]table.Row) *Result {
	result := &Result{
		ClosureAnomalies: []*MatchedRecord{},
		PickupAnomalies:  []*MatchedRecord{},
		AllMatched:       []*MatchedRecord{},
		GSXFields:        rctx.gsxFields,
		SAFields:         rctx.saFields,
	}

	for _, row := range sa.Rows {
		orderID, hasOrder := rctx.saFields.Value(row, fields.PurchaseOrderKey)
		saStatus, hasStatus := rctx.saFields.Value(row, fields.TicketStatus)
		key := keys.Normalize(orderID)
		if !hasOrder || !hasStatus || key == "" {
			rctx.stats.Skipped++
			continue
		}

		gsxRow, found := index[key]
		if !found {
			rctx.stats.Unmatched++
			continue
		}

		record := rctx.record(orderID, saStatus, gsxRow)
		closure := rctx.opts.closure.Fires(record.SAStatus, record.GSXStatus)
		pickup := rctx.opts.pickup.Fires(record.SAStatus, record.GSXStatus)
		record.IsAnomaly = closure || pickup

		result.AllMatched = append(result.AllMatched, record)
		if closure {
			result.ClosureAnomalies = append(result.ClosureAnomalies, record)
		}
		if pickup {
			result.PickupAnomalies = append(result.PickupAnomalies, record)
		}
	}

	result.MatchCount = len(result.AllMatched)
	result.Stats = rctx.stats
	return result
}

func (rctx *runContext) record(orderID, saStatus string, gsxRow table.Row) *MatchedRecord {
	return &MatchedRecord{
		ID:          rctx.opts.newID(),
		GSXTicketID: rctx.gsxValue(gsxRow, fields.TicketID, MissingValue),
		RMAOrderID:  orderID,
		SAStatus:    strings.TrimSpace(saStatus),
		GSXStatus:   rctx.gsxValue(gsxRow, fields.TicketStatus, MissingStatus),
		CreatedDate: rctx.gsxValue(gsxRow, fields.CreationDate, MissingValue),
	}
}

func (rctx *runContext) gsxValue(row table.Row, role fields.Role, fallback string) string {
	v, ok := rctx.gsxFields.Value(row, role)
	if !ok {
		return fallback
	}
	return strings.TrimSpace(v)
}

func checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}
	return nil
}
