package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrScope     = attribute.Key("scope")
	AttrErrorCode = attribute.Key("error_code")
)

// SubcontractingMetrics counts external production activity.
// A nil *SubcontractingMetrics records nothing.
type SubcontractingMetrics struct {
	worksheetsOpened *Counter
	productions      *Counter
	pickingsCreated  *Counter
	purchaseLines    *Counter
	engineErrors     *Counter
}

// NewSubcontractingMetrics registers the counters on meter
func NewSubcontractingMetrics(meter metric.Meter) (*SubcontractingMetrics, error) {
	m := &SubcontractingMetrics{}
	var err error
	if m.worksheetsOpened, err = NewCounter(meter, "subcontracting_worksheets_opened_total",
		"Number of external production worksheets opened", "{worksheet}"); err != nil {
		return nil, err
	}
	if m.productions, err = NewCounter(meter, "subcontracting_productions_total",
		"Number of orders or work orders sent to external partners", "{production}"); err != nil {
		return nil, err
	}
	if m.pickingsCreated, err = NewCounter(meter, "subcontracting_pickings_created_total",
		"Number of subcontracting transfers created", "{picking}"); err != nil {
		return nil, err
	}
	if m.purchaseLines, err = NewCounter(meter, "subcontracting_purchase_lines_total",
		"Number of purchase lines created for subcontracted work", "{line}"); err != nil {
		return nil, err
	}
	if m.engineErrors, err = NewCounter(meter, "subcontracting_errors_total",
		"Number of rejected external production runs", "{error}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordWorksheetOpened counts an opened worksheet
func (m *SubcontractingMetrics) RecordWorksheetOpened(ctx context.Context, scope string) {
	if m == nil {
		return
	}
	m.worksheetsOpened.Inc(ctx, AttrScope.String(scope))
}

// RecordProduction counts a committed run with its generated documents
func (m *SubcontractingMetrics) RecordProduction(ctx context.Context, scope string, pickings, purchaseLines int) {
	if m == nil {
		return
	}
	attr := AttrScope.String(scope)
	m.productions.Inc(ctx, attr)
	m.pickingsCreated.Add(ctx, int64(pickings), attr)
	m.purchaseLines.Add(ctx, int64(purchaseLines), attr)
}

// RecordEngineError counts a rejected run by error code
func (m *SubcontractingMetrics) RecordEngineError(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.engineErrors.Inc(ctx, AttrErrorCode.String(code))
}
