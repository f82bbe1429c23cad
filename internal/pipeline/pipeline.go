package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ecomlogix/dispatch-cli/internal/classify"
	"github.com/ecomlogix/dispatch-cli/internal/config"
	"github.com/ecomlogix/dispatch-cli/internal/model"
)

// Pipeline sequences the reconciliation stages: normalize and classify the
// batch, group it into route-runs, enrich each run with mismatch, return,
// and rate data, then partition by service tier. A single execution owns its
// whole working set; the input slice is never mutated.
type Pipeline struct {
	cfg     *config.Config
	status  *classify.StatusClassifier
	service *classify.ServiceClassifier
	rates   *RateEngine
}

// New builds a Pipeline from configuration. Classification tables and the
// rate card are validated here so a bad vocabulary fails at startup, not
// mid-batch.
func New(cfg *config.Config) (*Pipeline, error) {
	status, err := classify.NewStatusClassifier(cfg.Tables.Statuses)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: status tables")
	}
	service, err := classify.NewServiceClassifier(cfg.Tables.Services)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: service rules")
	}
	rates, err := NewRateEngine(cfg.Rates)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: rate card")
	}

	return &Pipeline{cfg: cfg, status: status, service: service, rates: rates}, nil
}

// requiredFields are the input fields the pipeline cannot run without. A
// field empty on every event means the upstream extract dropped the column.
var requiredFields = []struct {
	name    string
	present func(*model.ScanEvent) bool
}{
	{"item_id", func(e *model.ScanEvent) bool { return e.ItemID != "" }},
	{"status_code", func(e *model.ScanEvent) bool { return e.StatusCode != "" }},
	{"route_code", func(e *model.ScanEvent) bool { return e.RouteCode != "" }},
	{"driver_name", func(e *model.ScanEvent) bool { return e.DriverName != "" }},
	{"scan_timestamp", func(e *model.ScanEvent) bool { return !e.ScanTimestamp.IsZero() }},
	{"delivery_city", func(e *model.ScanEvent) bool { return e.DeliveryCity != "" }},
	{"ship_to_address", func(e *model.ScanEvent) bool { return e.ShipToAddress != "" }},
}

// validateSchema rejects batches missing a required field entirely.
// Individual blank values are a data-quality matter; a column blank on every
// row is a contract breach and aborts before any grouping happens.
func validateSchema(events []model.ScanEvent) error {
	for _, field := range requiredFields {
		found := false
		for i := range events {
			if field.present(&events[i]) {
				found = true
				break
			}
		}
		if !found {
			return &model.SchemaViolationError{Field: field.name}
		}
	}
	return nil
}

// Validate runs only the batch schema check.
func (p *Pipeline) Validate(events []model.ScanEvent) error {
	return validateSchema(events)
}

// Audit runs only the normalization and classification stages and reports
// the values that would degrade to the catch-all category or tier.
func (p *Pipeline) Audit(events []model.ScanEvent) QualityReport {
	return p.auditQuality(p.prepare(events))
}

// Process transforms a scan-event batch into route-run partitions. The batch
// is either fully processed or not started: no partial output escapes.
func (p *Pipeline) Process(ctx context.Context, events []model.ScanEvent) (*model.Partitions, error) {
	log := zap.L()

	if len(events) == 0 {
		log.Warn("pipeline: empty batch")
		return &model.Partitions{}, nil
	}

	if err := validateSchema(events); err != nil {
		return nil, eris.Wrap(err, "pipeline: validate batch")
	}

	prepared := p.prepare(events)

	quality := p.auditQuality(prepared)
	quality.log()

	idx := buildGroupIndex(prepared)
	keys := idx.dispatchKeys()

	// The dispatch/delivery join needs every event for a date before any
	// mismatch count is final, so the index is built before the per-run
	// workers start.
	mismatches := buildMismatchIndex(prepared)

	runs := make([]model.RouteRun, len(keys))

	g, _ := errgroup.WithContext(ctx)
	if p.cfg.Pipeline.Concurrency > 0 {
		g.SetLimit(p.cfg.Pipeline.Concurrency)
	} else {
		g.SetLimit(1)
	}

	for i, key := range keys {
		g.Go(func() error {
			run, err := p.aggregateRun(key, idx.groups[key])
			if err != nil {
				return err
			}

			run.MismatchCount, run.MismatchRoute = mismatches.attach(key.Date, key.Driver)
			run.ConfirmedReturnCount = confirmedReturns(idx.groups[key])
			run.Rate = p.rates.Rate(run.ServiceTier, run.DeliveryCity)
			run.PayableAmount = p.rates.Payable(run.DeliveredCount, run.MismatchCount, run.Rate)

			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: enrich runs")
	}

	parts := partition(runs)

	log.Info("pipeline: batch complete",
		zap.Int("events", len(events)),
		zap.Int("runs", len(runs)),
		zap.Int("next_day", len(parts.NextDay)),
		zap.Int("same_day", len(parts.SameDay)),
		zap.Int("montreal", len(parts.Montreal)),
		zap.Int("other_dropped", len(runs)-parts.Total()),
	)

	return parts, nil
}

// partition splits completed runs by service tier. Other-tier runs are
// computed but not emitted; they are outside the reporting scope.
func partition(runs []model.RouteRun) *model.Partitions {
	parts := &model.Partitions{}
	dropped := decimal.Zero

	for _, run := range runs {
		switch run.ServiceTier {
		case model.TierNextDay:
			parts.NextDay = append(parts.NextDay, run)
		case model.TierSameDay:
			parts.SameDay = append(parts.SameDay, run)
		case model.TierMontreal:
			parts.Montreal = append(parts.Montreal, run)
		default:
			dropped = dropped.Add(run.PayableAmount)
			zap.L().Debug("pipeline: dropping other-tier run",
				zap.String("date", run.Date),
				zap.String("driver", run.DriverName),
				zap.String("route", run.RouteCode),
			)
		}
	}

	if !dropped.IsZero() {
		// Other-tier rates are zero by default; a nonzero amount here means
		// the rate card has a tier the partitioner does not.
		zap.L().Warn("pipeline: dropped runs carried payable amount",
			zap.String("amount", dropped.StringFixed(2)),
		)
	}

	return parts
}
